package service

import (
	"errors"

	"github.com/nurpe/staffing-contracts/internal/workflow"
)

var (
	ErrNotFound         = workflow.ErrNotFound
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = workflow.ErrValidationFailed
	ErrNoApplications   = errors.New("no applications to export")
)

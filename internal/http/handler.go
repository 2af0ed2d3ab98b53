package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/staffing-contracts/internal/http/middleware"
	"github.com/nurpe/staffing-contracts/internal/model"
	"github.com/nurpe/staffing-contracts/internal/registry"
	"github.com/nurpe/staffing-contracts/internal/service"
	"github.com/nurpe/staffing-contracts/internal/workflow"
)

//go:generate mockgen -destination=mocks/mock_contract_service.go -package=mocks . ContractService

type ContractService interface {
	ContractType(id string) (registry.Resolution, error)
	CreateContract(ctx context.Context, p model.Principal, input service.CreateContractInput) (workflow.Outcome, error)
	GetContract(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Contract, error)
	ListContracts(ctx context.Context, p model.Principal) ([]model.Contract, error)
	UpdateContract(ctx context.Context, p model.Principal, id uuid.UUID, patch model.ContractPatch) (workflow.Outcome, error)
	TransitionContract(ctx context.Context, p model.Principal, id uuid.UUID, target model.ContractStatus, reason string) (workflow.Outcome, error)
	CancelContract(ctx context.Context, p model.Principal, id uuid.UUID, reason string) (workflow.Outcome, error)
	ContractCancellationFee(ctx context.Context, p model.Principal, id uuid.UUID) (bool, error)
	ContractSummaryPDF(ctx context.Context, p model.Principal, id uuid.UUID) (*service.FileResult, error)
	SubmitApplication(ctx context.Context, p model.Principal, contractID uuid.UUID) (workflow.Outcome, error)
	ListApplications(ctx context.Context, p model.Principal, contractID uuid.UUID) ([]model.Application, error)
	ExportApplicants(ctx context.Context, p model.Principal, institutionID uuid.UUID) (*service.FileResult, error)
	ProposeCandidate(ctx context.Context, p model.Principal, applicationID uuid.UUID, personRef string) (workflow.Outcome, error)
	AcceptCandidate(ctx context.Context, p model.Principal, applicationID, candidateID uuid.UUID) (workflow.Outcome, error)
	DecideApplication(ctx context.Context, p model.Principal, applicationID uuid.UUID, decision model.Decision) (workflow.Outcome, error)
	WithdrawApplication(ctx context.Context, p model.Principal, applicationID uuid.UUID, reason string) (workflow.Outcome, error)
	WithdrawalFee(ctx context.Context, p model.Principal, applicationID uuid.UUID) (bool, error)
	GetAgreement(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Agreement, error)
	EnterFees(ctx context.Context, p model.Principal, id uuid.UUID, amount float64) (workflow.Outcome, error)
	SignAgreement(ctx context.Context, p model.Principal, id uuid.UUID) (workflow.Outcome, error)
}

type Handler struct {
	contracts ContractService
	log       zerolog.Logger
}

func NewHandler(contracts ContractService, log zerolog.Logger) *Handler {
	return &Handler{contracts: contracts, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/contract-types/:id", h.getContractType)

	protected.GET("/contracts", h.listContracts)
	protected.POST("/contracts", h.createContract)
	protected.GET("/contracts/:id", h.getContract)
	protected.PATCH("/contracts/:id", h.updateContract)
	protected.POST("/contracts/:id/transition", h.transitionContract)
	protected.POST("/contracts/:id/cancel", h.cancelContract)
	protected.GET("/contracts/:id/cancellation-fee", h.contractCancellationFee)
	protected.GET("/contracts/:id/summary.pdf", h.contractSummaryPDF)
	protected.POST("/contracts/:id/applications", h.submitApplication)
	protected.GET("/contracts/:id/applications", h.listApplications)

	protected.GET("/applications/export", h.exportApplicants)
	protected.POST("/applications/:id/candidates", h.proposeCandidate)
	protected.POST("/applications/:id/candidates/:candidateId/accept", h.acceptCandidate)
	protected.POST("/applications/:id/decision", h.decideApplication)
	protected.POST("/applications/:id/withdraw", h.withdrawApplication)
	protected.GET("/applications/:id/withdrawal-fee", h.withdrawalFee)

	protected.GET("/agreements/:id", h.getAgreement)
	protected.POST("/agreements/:id/fees", h.enterFees)
	protected.POST("/agreements/:id/sign", h.signAgreement)
}

type contractTypeResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Industry        string            `json:"industry"`
	IndustryLabel   string            `json:"industry_label"`
	Duration        string            `json:"duration"`
	PresentationKey string            `json:"presentation_key"`
	FeesRequired    bool              `json:"fees_required"`
	RequiredFields  []string          `json:"required_fields"`
	Rules           map[string]string `json:"rules"`
}

func (h *Handler) getContractType(c *gin.Context) {
	res, err := h.contracts.ContractType(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	b := res.Behavior
	c.JSON(http.StatusOK, gin.H{"data": contractTypeResponse{
		ID:              b.ID(),
		Name:            b.Name(),
		Industry:        b.Industry(),
		IndustryLabel:   registry.IndustryLabel(b.Industry()),
		Duration:        string(b.Duration()),
		PresentationKey: res.PresentationKey,
		FeesRequired:    res.FeesRequired,
		RequiredFields:  res.RequiredFields,
		Rules:           res.ValidationSchema.Rules,
	}})
}

type createContractRequest struct {
	ContractTypeID  string         `json:"contract_type_id" binding:"required"`
	InstitutionID   string         `json:"institution_id"`
	Title           string         `json:"title"`
	StartDate       string         `json:"start_date" binding:"required"`
	EndDate         *string        `json:"end_date"`
	PositionsSought []string       `json:"positions_sought"`
	Fields          map[string]any `json:"fields"`
	Publish         bool           `json:"publish"`
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}
	institutionID := uuid.Nil
	if strings.TrimSpace(req.InstitutionID) != "" {
		if institutionID, err = uuid.Parse(strings.TrimSpace(req.InstitutionID)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid institution_id"})
			return
		}
	}

	out, err := h.contracts.CreateContract(c.Request.Context(), principal, service.CreateContractInput{
		ContractTypeID:  req.ContractTypeID,
		InstitutionID:   institutionID,
		Title:           req.Title,
		StartDate:       start,
		EndDate:         end,
		PositionsSought: req.PositionsSought,
		Fields:          req.Fields,
		Publish:         req.Publish,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": out})
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contracts, err := h.contracts.ListContracts(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": contracts})
}

func (h *Handler) getContract(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	contract, err := h.contracts.GetContract(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": contract})
}

type updateContractRequest struct {
	Title           *string        `json:"title"`
	StartDate       *string        `json:"start_date"`
	EndDate         *string        `json:"end_date"`
	PositionsSought []string       `json:"positions_sought"`
	Fields          map[string]any `json:"fields"`
}

func (h *Handler) updateContract(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	var req updateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	out, err := h.contracts.UpdateContract(c.Request.Context(), principal, id, model.ContractPatch{
		Title:           req.Title,
		StartDate:       start,
		EndDate:         end,
		PositionsSought: req.PositionsSought,
		Fields:          req.Fields,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

func (h *Handler) transitionContract(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target := model.ContractStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	out, err := h.contracts.TransitionContract(c.Request.Context(), principal, id, target, req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) cancelContract(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	var req reasonRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.contracts.CancelContract(c.Request.Context(), principal, id, req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *Handler) contractCancellationFee(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	fee, err := h.contracts.ContractCancellationFee(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"contract_id": id, "may_incur_fee": fee}})
}

func (h *Handler) contractSummaryPDF(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	result, err := h.contracts.ContractSummaryPDF(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, result)
}

func (h *Handler) submitApplication(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	out, err := h.contracts.SubmitApplication(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": out})
}

func (h *Handler) listApplications(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	apps, err := h.contracts.ListApplications(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": apps})
}

func (h *Handler) exportApplicants(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	institutionID := uuid.Nil
	if raw := strings.TrimSpace(c.Query("institution_id")); raw != "" {
		var err error
		if institutionID, err = uuid.Parse(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid institution_id"})
			return
		}
	}
	result, err := h.contracts.ExportApplicants(c.Request.Context(), principal, institutionID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, result)
}

type proposeCandidateRequest struct {
	PersonRef string `json:"person_ref" binding:"required"`
}

func (h *Handler) proposeCandidate(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	var req proposeCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.contracts.ProposeCandidate(c.Request.Context(), principal, id, req.PersonRef)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": out})
}

func (h *Handler) acceptCandidate(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	candidateID, err := uuid.Parse(c.Param("candidateId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid candidateId"})
		return
	}
	out, err := h.contracts.AcceptCandidate(c.Request.Context(), principal, id, candidateID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

type decisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=accept reject"`
}

func (h *Handler) decideApplication(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.contracts.DecideApplication(c.Request.Context(), principal, id, model.Decision(req.Decision))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *Handler) withdrawApplication(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	var req reasonRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.contracts.WithdrawApplication(c.Request.Context(), principal, id, req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *Handler) withdrawalFee(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	fee, err := h.contracts.WithdrawalFee(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"application_id": id, "may_incur_fee": fee}})
}

func (h *Handler) getAgreement(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	agreement, err := h.contracts.GetAgreement(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": agreement})
}

type feesRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

func (h *Handler) enterFees(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	var req feesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.contracts.EnterFees(c.Request.Context(), principal, id, req.Amount)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *Handler) signAgreement(c *gin.Context) {
	principal, id, ok := h.principalAndID(c, "id")
	if !ok {
		return
	}
	out, err := h.contracts.SignAgreement(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return model.Principal{}, false
	}
	return principal, true
}

func (h *Handler) principalAndID(c *gin.Context, param string) (model.Principal, uuid.UUID, bool) {
	principal, ok := h.principal(c)
	if !ok {
		return model.Principal{}, uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Param(param)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return model.Principal{}, uuid.Nil, false
	}
	return principal, id, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	kind := workflow.Kind(err)
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "kind": "PermissionDenied"})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNoApplications):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": kind})
	case errors.Is(err, workflow.ErrConcurrencyConflict):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "kind": kind, "retryable": true})
	case errors.Is(err, workflow.ErrContractLocked),
		errors.Is(err, workflow.ErrInvalidBookingState),
		errors.Is(err, workflow.ErrApplicationNotOpen),
		errors.Is(err, workflow.ErrAlreadyTerminal):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": kind})
	case errors.Is(err, workflow.ErrUnknownContractType), errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": kind})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func sendFile(c *gin.Context, result *service.FileResult) {
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(dst)
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := parseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

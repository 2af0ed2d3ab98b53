package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/staffing-contracts/internal/model"
)

func summary(key string) model.ContractSummary {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(96 * time.Hour)
	return model.ContractSummary{
		Contract: model.Contract{
			ID:              uuid.New(),
			Title:           "Hygienist, Montréal",
			Status:          model.ContractStatusBooked,
			StartDate:       start,
			EndDate:         &end,
			PositionsSought: []string{"dental_hygienist"},
			Fields: map[string]any{
				"facility_name":     "Clinique Sourire",
				"city":              "Montréal",
				"province":          "QC",
				"contract_location": "Plateau",
				"annual_salary":     float64(92000),
			},
		},
		TypeName:        "General Dentistry - Temporary Contract",
		IndustryLabel:   "Dental Care",
		PresentationKey: key,
		Applications:    map[model.ApplicationStatus]int{model.ApplicationStatusAccepted: 1, model.ApplicationStatusPending: 2},
		GeneratedAt:     start,
	}
}

func TestGenerateEachPresentation(t *testing.T) {
	g := NewGenerator()
	for _, key := range []string{PresentationTemporaryShift, PresentationPermanentPosition, PresentationSpecialtyMission} {
		t.Run(key, func(t *testing.T) {
			s := summary(key)
			signed := s.GeneratedAt
			fee := 1500.0
			s.Agreement = &model.Agreement{
				Status:         model.AgreementStatusPendingSignature,
				FeesRequired:   key == PresentationPermanentPosition,
				FeeAmount:      &fee,
				ClientSignedAt: &signed,
			}
			content, err := g.Generate(s)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
		})
	}
}

func TestGenerateRejectsUnknownPresentation(t *testing.T) {
	_, err := NewGenerator().Generate(summary("poster"))
	assert.ErrorContains(t, err, "poster")
}

func TestFieldFormatting(t *testing.T) {
	fields := map[string]any{"a": " x ", "b": float64(3), "c": 2.5, "d": true}
	assert.Equal(t, "x", field(fields, "a"))
	assert.Equal(t, "3", field(fields, "b"))
	assert.Equal(t, "2.50", field(fields, "c"))
	assert.Equal(t, "true", field(fields, "d"))
	assert.Equal(t, "", field(fields, "missing"))
	assert.Equal(t, "Annual Salary", humanize("annual_salary"))
}

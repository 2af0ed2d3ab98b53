package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	contractshttp "github.com/nurpe/staffing-contracts/internal/http"
	"github.com/nurpe/staffing-contracts/internal/http/middleware"
	"github.com/nurpe/staffing-contracts/internal/http/mocks"
	"github.com/nurpe/staffing-contracts/internal/model"
	"github.com/nurpe/staffing-contracts/internal/service"
	"github.com/nurpe/staffing-contracts/internal/workflow"
)

var institution = model.Principal{
	UserID: uuid.MustParse("6f1c3f0e-0d44-4c1e-9f3e-0a3e2f7c1b01"),
	OrgID:  uuid.MustParse("6f1c3f0e-0d44-4c1e-9f3e-0a3e2f7c1b02"),
	Role:   model.RoleInstitution,
}

func setup(t *testing.T, principal *model.Principal) (*gin.Engine, *mocks.MockContractService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockContractService(ctrl)

	auth := func(c *gin.Context) {
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		middleware.SetPrincipal(c, *principal)
		c.Next()
	}
	handler := contractshttp.NewHandler(svc, zerolog.New(io.Discard))
	router := contractshttp.NewRouter(handler, auth, "test", []string{"*"})
	return router, svc
}

func do(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthzIsPublic(t *testing.T) {
	router, _ := setup(t, nil)
	rec := do(router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/contracts", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateContract(t *testing.T) {
	router, svc := setup(t, &institution)
	contractID := uuid.New()

	svc.EXPECT().
		CreateContract(gomock.Any(), institution, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ model.Principal, input service.CreateContractInput) (workflow.Outcome, error) {
			assert.Equal(t, "nursing_temporary_contract", input.ContractTypeID)
			assert.Equal(t, 2026, input.StartDate.Year())
			require.NotNil(t, input.EndDate)
			assert.Equal(t, "Canada", input.Fields["country"])
			assert.True(t, input.Publish)
			return workflow.Outcome{Contract: &model.Contract{ID: contractID, Status: model.ContractStatusOpen}}, nil
		})

	rec := do(router, http.MethodPost, "/contracts", map[string]any{
		"contract_type_id": "nursing_temporary_contract",
		"start_date":       "2026-11-02",
		"end_date":         "2026-11-05T08:00:00Z",
		"fields":           map[string]any{"country": "Canada"},
		"publish":          true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, contractID.String(), data["contract"].(map[string]any)["id"])
}

func TestCreateContractRejectsBadInput(t *testing.T) {
	router, _ := setup(t, &institution)

	rec := do(router, http.MethodPost, "/contracts", map[string]any{"start_date": "2026-11-02"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/contracts", map[string]any{
		"contract_type_id": "nursing_temporary_contract",
		"start_date":       "next tuesday",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"not found", fmt.Errorf("contract x: %w", workflow.ErrNotFound), http.StatusNotFound, "ValidationFailed"},
		{"permission", service.ErrPermissionDenied, http.StatusForbidden, "PermissionDenied"},
		{"locked", workflow.ErrContractLocked, http.StatusConflict, "ContractLocked"},
		{"booking state", workflow.ErrInvalidBookingState, http.StatusConflict, "InvalidBookingState"},
		{"not open", workflow.ErrApplicationNotOpen, http.StatusConflict, "ApplicationNotOpen"},
		{"terminal", workflow.ErrAlreadyTerminal, http.StatusConflict, "AlreadyTerminal"},
		{"conflict", workflow.ErrConcurrencyConflict, http.StatusServiceUnavailable, "ConcurrencyConflict"},
		{"validation", workflow.ErrValidationFailed, http.StatusBadRequest, "ValidationFailed"},
		{"unknown type", workflow.ErrUnknownContractType, http.StatusBadRequest, "UnknownContractType"},
		{"internal", fmt.Errorf("boom"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, svc := setup(t, &institution)
			appID := uuid.New()
			svc.EXPECT().
				DecideApplication(gomock.Any(), institution, appID, model.DecisionAccept).
				Return(workflow.Outcome{}, tc.err)

			rec := do(router, http.MethodPost, "/applications/"+appID.String()+"/decision", map[string]any{"decision": "accept"})
			assert.Equal(t, tc.status, rec.Code)
			body := decode(t, rec)
			if tc.kind != "" {
				assert.Equal(t, tc.kind, body["kind"])
			}
			if tc.status == http.StatusServiceUnavailable {
				assert.Equal(t, true, body["retryable"])
			}
		})
	}
}

func TestDecisionValidatesPayload(t *testing.T) {
	router, _ := setup(t, &institution)
	rec := do(router, http.MethodPost, "/applications/"+uuid.NewString()+"/decision", map[string]any{"decision": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/applications/not-a-uuid/decision", map[string]any{"decision": "accept"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWithdrawAcceptsEmptyBody(t *testing.T) {
	applicant := model.Principal{UserID: uuid.New(), Role: model.RoleProfessional}
	router, svc := setup(t, &applicant)
	appID := uuid.New()

	svc.EXPECT().
		WithdrawApplication(gomock.Any(), applicant, appID, "").
		Return(workflow.Outcome{FeeFlag: true}, nil)

	rec := do(router, http.MethodPost, "/applications/"+appID.String()+"/withdraw", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, true, data["fee_flag"])
}

func TestAcceptCandidate(t *testing.T) {
	router, svc := setup(t, &institution)
	appID, candidateID := uuid.New(), uuid.New()

	svc.EXPECT().
		AcceptCandidate(gomock.Any(), institution, appID, candidateID).
		Return(workflow.Outcome{Events: []model.Event{{Type: model.EventContractBooked}}}, nil)

	rec := do(router, http.MethodPost, fmt.Sprintf("/applications/%s/candidates/%s/accept", appID, candidateID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodPost, fmt.Sprintf("/applications/%s/candidates/nope/accept", appID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnterFeesRequiresPositiveAmount(t *testing.T) {
	agency := model.Principal{UserID: uuid.New(), OrgID: uuid.New(), Role: model.RoleAgency}
	router, svc := setup(t, &agency)
	agreementID := uuid.New()

	rec := do(router, http.MethodPost, "/agreements/"+agreementID.String()+"/fees", map[string]any{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.EXPECT().
		EnterFees(gomock.Any(), agency, agreementID, 1250.5).
		Return(workflow.Outcome{Agreement: &model.Agreement{ID: agreementID, Status: model.AgreementStatusPendingSignature}}, nil)
	rec = do(router, http.MethodPost, "/agreements/"+agreementID.String()+"/fees", map[string]any{"amount": 1250.5})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExportApplicantsSendsWorkbook(t *testing.T) {
	router, svc := setup(t, &institution)

	svc.EXPECT().
		ExportApplicants(gomock.Any(), institution, uuid.Nil).
		Return(&service.FileResult{
			FileName:    "applicants.xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Content:     []byte("xlsx"),
		}, nil)

	rec := do(router, http.MethodGet, "/applications/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "applicants.xlsx")
	assert.Equal(t, "xlsx", rec.Body.String())

	rec = do(router, http.MethodGet, "/applications/export?institution_id=bad", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

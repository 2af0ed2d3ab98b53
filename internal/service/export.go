package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/staffing-contracts/internal/model"
	"github.com/nurpe/staffing-contracts/internal/registry"
)

type FileResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

// ExportApplicants renders the institution's applications as a workbook with
// one sheet per industry. Admins pass the institution explicitly.
func (s *ContractService) ExportApplicants(ctx context.Context, p model.Principal, institutionID uuid.UUID) (*FileResult, error) {
	switch {
	case p.IsInstitution():
		institutionID = p.ActorID()
	case p.IsAdmin():
		if institutionID == uuid.Nil {
			return nil, fmt.Errorf("%w: institution_id is required", ErrInvalidInput)
		}
	default:
		return nil, ErrPermissionDenied
	}

	rows, err := s.applicants.ListApplicantRows(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoApplications
	}

	report := model.ApplicantReport{
		InstitutionID: institutionID,
		GeneratedAt:   s.now().UTC(),
		Groups:        s.groupByIndustry(rows),
	}
	content, err := s.excel.Generate(report)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		FileName:    fmt.Sprintf("applicants-%s-%s.xlsx", institutionID, report.GeneratedAt.Format("20060102")),
		ContentType: xlsxContentType,
		Content:     content,
	}, nil
}

func (s *ContractService) groupByIndustry(rows []model.ApplicantRow) []model.IndustryGroup {
	byIndustry := map[string][]model.ApplicantRow{}
	for _, row := range rows {
		industry, err := s.registry.IndustryOf(row.ContractTypeID)
		if err != nil {
			s.log.Warn().Str("contract_type_id", row.ContractTypeID).Msg("export row with unregistered contract type")
			industry = "other"
		}
		row.Industry = industry
		byIndustry[industry] = append(byIndustry[industry], row)
	}

	industries := make([]string, 0, len(byIndustry))
	for industry := range byIndustry {
		industries = append(industries, industry)
	}
	industries = registry.SortIndustries(industries)

	groups := make([]model.IndustryGroup, 0, len(industries))
	for _, industry := range industries {
		groups = append(groups, model.IndustryGroup{
			Industry: industry,
			Label:    registry.IndustryLabel(industry),
			Rows:     byIndustry[industry],
		})
	}
	return groups
}

// ContractSummaryPDF renders the contract sheet in the layout its type's
// presentation key selects.
func (s *ContractService) ContractSummaryPDF(ctx context.Context, p model.Principal, id uuid.UUID) (*FileResult, error) {
	contract, err := s.GetContract(ctx, p, id)
	if err != nil {
		return nil, err
	}
	behavior, err := s.registry.Behavior(contract.ContractTypeID)
	if err != nil {
		return nil, err
	}
	apps, err := s.engine.Applications(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := model.ContractSummary{
		Contract:        *contract,
		TypeName:        behavior.Name(),
		IndustryLabel:   registry.IndustryLabel(behavior.Industry()),
		PresentationKey: behavior.PresentationKey(),
		FeesRequired:    behavior.FeesRequired(),
		RequiredFields:  behavior.Schema().RequiredFields(),
		Applications:    map[model.ApplicationStatus]int{},
		GeneratedAt:     s.now().UTC(),
	}
	for _, app := range apps {
		summary.Applications[app.Status]++
		if app.Status == model.ApplicationStatusAccepted && (p.IsAdmin() || p.IsInstitution() || app.ApplicantID == p.ActorID()) {
			if agreement, err := s.engine.AgreementByApplication(ctx, app.ID); err == nil {
				summary.Agreement = agreement
			}
		}
	}

	content, err := s.pdf.Generate(summary)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		FileName:    fmt.Sprintf("contract-%s.pdf", buildFileName(contract.Title, contract.ID)),
		ContentType: pdfContentType,
		Content:     content,
	}, nil
}

func buildFileName(title string, id uuid.UUID) string {
	name := sanitizeFileName(strings.ToLower(title))
	if name == "" {
		return id.String()
	}
	return name
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}

package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/staffing-contracts/internal/model"
)

const summarySheet = "Summary"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes a summary sheet followed by one sheet per industry group,
// in the order the groups are given.
func (g *Generator) Generate(report model.ApplicantReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, report)

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, group := range report.Groups {
		sheetName := buildSheetName(group.Label, group.Industry, usedNames)
		usedNames[sheetName] = struct{}{}

		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		g.writeGroup(file, sheetName, group)
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, report model.ApplicantReport) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}

	total := 0
	for _, group := range report.Groups {
		total += len(group.Rows)
	}

	set("A1", "Institution")
	set("B1", report.InstitutionID.String())
	set("A2", "Generated at")
	set("B2", formatDateTime(report.GeneratedAt))
	set("A3", "Applications")
	set("B3", total)

	tableRow := 5
	set(fmt.Sprintf("A%d", tableRow), "Industry")
	set(fmt.Sprintf("B%d", tableRow), "Applications")
	set(fmt.Sprintf("C%d", tableRow), "Accepted")
	set(fmt.Sprintf("D%d", tableRow), "Pending")

	for i, group := range report.Groups {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), group.Label)
		set(fmt.Sprintf("B%d", row), len(group.Rows))
		set(fmt.Sprintf("C%d", row), countStatus(group, model.ApplicationStatusAccepted))
		set(fmt.Sprintf("D%d", row), countStatus(group, model.ApplicationStatusPending))
	}

	_ = file.SetColWidth(summarySheet, "A", "A", 32)
	_ = file.SetColWidth(summarySheet, "B", "D", 16)
}

var detailHeaders = []string{
	"Contract",
	"Contract type",
	"Contract status",
	"Start date",
	"Application",
	"Applicant",
	"Application status",
	"Applied at",
	"Candidates",
	"Accepted candidate",
}

func (g *Generator) writeGroup(file *excelize.File, sheet string, group model.IndustryGroup) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Industry")
	set("B1", group.Label)
	set("A2", "Applications")
	set("B2", len(group.Rows))

	tableRow := 4
	for i, header := range detailHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, r := range group.Rows {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), r.ContractTitle)
		set(fmt.Sprintf("B%d", row), r.ContractTypeID)
		set(fmt.Sprintf("C%d", row), string(r.ContractStatus))
		set(fmt.Sprintf("D%d", row), formatDate(r.StartDate))
		set(fmt.Sprintf("E%d", row), r.ApplicationID.String())
		set(fmt.Sprintf("F%d", row), r.ApplicantID.String())
		set(fmt.Sprintf("G%d", row), string(r.ApplicationStatus))
		set(fmt.Sprintf("H%d", row), formatDateTime(r.AppliedAt))
		set(fmt.Sprintf("I%d", row), r.CandidateCount)
		set(fmt.Sprintf("J%d", row), r.AcceptedCandidate)
	}

	_ = file.SetColWidth(sheet, "A", "A", 32)
	_ = file.SetColWidth(sheet, "B", "B", 40)
	_ = file.SetColWidth(sheet, "C", "D", 16)
	_ = file.SetColWidth(sheet, "E", "F", 38)
	_ = file.SetColWidth(sheet, "G", "H", 20)
	_ = file.SetColWidth(sheet, "I", "J", 18)
}

func countStatus(group model.IndustryGroup, status model.ApplicationStatus) int {
	n := 0
	for _, r := range group.Rows {
		if r.ApplicationStatus == status {
			n++
		}
	}
	return n
}

func buildSheetName(label, industry string, used map[string]struct{}) string {
	base := strings.TrimSpace(label)
	if base == "" {
		base = industry
	}
	base = sanitizeSheetName(base)
	if len(base) > 31 {
		base = base[:31]
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		nameCandidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Sheet"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = strings.TrimSpace(replacer.Replace(value))
	if value == "" {
		return "Sheet"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

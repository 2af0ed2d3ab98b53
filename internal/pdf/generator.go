package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/staffing-contracts/internal/model"
)

const (
	PresentationTemporaryShift    = "temporary_shift"
	PresentationPermanentPosition = "permanent_position"
	PresentationSpecialtyMission  = "specialty_mission"
)

// Generator renders contract summary sheets with the core Helvetica font, so
// no font files ship with the binary.
type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

type layout struct {
	heading string
	fields  []string
}

var layouts = map[string]layout{
	PresentationTemporaryShift: {
		heading: "Temporary shift",
		fields:  []string{"contract_location", "work_schedule", "weekly_schedule", "compensation_mode", "minimum_experience", "required_experience"},
	},
	PresentationPermanentPosition: {
		heading: "Permanent position",
		fields:  []string{"annual_salary", "weekly_schedule", "minimum_experience", "required_experience", "job_description"},
	},
	PresentationSpecialtyMission: {
		heading: "Specialty mission",
		fields:  []string{"position_title", "required_specialty", "mission_objective"},
	},
}

func (g *Generator) Generate(summary model.ContractSummary) ([]byte, error) {
	lay, ok := layouts[summary.PresentationKey]
	if !ok {
		return nil, fmt.Errorf("unknown presentation key %q", summary.PresentationKey)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(summary.Contract.Title, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	contract := summary.Contract
	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr(contract.Title), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s - %s", lay.heading, summary.TypeName)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s | status: %s", summary.IndustryLabel, contract.Status)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section(pdf, g.fontName, "Facility")
	lines := []string{
		safeValue(field(contract.Fields, "facility_name")),
		joinNonEmpty(", ",
			field(contract.Fields, "street_address"),
			field(contract.Fields, "city"),
			field(contract.Fields, "province"),
			field(contract.Fields, "postal_code"),
		),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, tr(safeValue(line)), "", "L", false)
	}
	pdf.Ln(2)

	section(pdf, g.fontName, "Dates")
	switch summary.PresentationKey {
	case PresentationPermanentPosition:
		pdf.CellFormat(0, 6, fmt.Sprintf("Starts %s", formatDate(contract.StartDate)), "", 1, "L", false, 0, "")
	default:
		end := time.Time{}
		if contract.EndDate != nil {
			end = *contract.EndDate
		}
		pdf.CellFormat(0, 6, fmt.Sprintf("From %s to %s", formatDate(contract.StartDate), formatDate(end)), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Positions: %s", safeValue(strings.Join(contract.PositionsSought, ", ")))), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	section(pdf, g.fontName, lay.heading)
	colWidths := []float64{70, 110}
	drawTableRow(pdf, g.fontName, []string{"Field", "Value"}, colWidths, true)
	for _, name := range lay.fields {
		value := field(contract.Fields, name)
		if value == "" {
			continue
		}
		drawTableRow(pdf, g.fontName, []string{humanize(name), tr(value)}, colWidths, false)
	}
	pdf.Ln(4)

	section(pdf, g.fontName, "Applications")
	statuses := make([]string, 0, len(summary.Applications))
	for status := range summary.Applications {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	if len(statuses) == 0 {
		pdf.CellFormat(0, 6, "No applications yet", "", 1, "L", false, 0, "")
	}
	for _, status := range statuses {
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: %d", status, summary.Applications[model.ApplicationStatus(status)]), "", 1, "L", false, 0, "")
	}

	if summary.Agreement != nil {
		pdf.Ln(2)
		agreement := summary.Agreement
		section(pdf, g.fontName, "Agreement")
		pdf.CellFormat(0, 6, fmt.Sprintf("Status: %s", agreement.Status), "", 1, "L", false, 0, "")
		if agreement.FeesRequired {
			fee := "not entered"
			if agreement.FeeAmount != nil {
				fee = formatAmount(*agreement.FeeAmount)
			}
			pdf.CellFormat(0, 6, fmt.Sprintf("Placement fee: %s", fee), "", 1, "L", false, 0, "")
		}
		signatureBlock(pdf, g.fontName, "Client", agreement.ClientSignedAt)
		signatureBlock(pdf, g.fontName, "Agency", agreement.AgencySignedAt)
	}

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "I", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", summary.GeneratedAt.Format(time.RFC3339)), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, fontName, title string) {
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 8, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName, label string, signedAt *time.Time) {
	pdf.SetFont(fontName, "", 11)
	if signedAt == nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: ______________________ (not signed)", label), "", 1, "L", false, 0, "")
		return
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("%s: signed %s", label, formatDate(*signedAt)), "", 1, "L", false, 0, "")
}

func field(fields map[string]any, name string) string {
	value, ok := fields[name]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprint(v)
	}
}

func humanize(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

package registry

import (
	"slices"
	"strings"
)

const (
	IndustryDental          = "dental"
	IndustryPharmacy        = "pharmacy"
	IndustryNursing         = "nursing"
	IndustryGeneralPractice = "general_practice"
	IndustryGeneralMedicine = "general_medicine"
)

var industryPriority = map[string]int{
	IndustryDental:          1,
	IndustryPharmacy:        2,
	IndustryNursing:         3,
	IndustryGeneralPractice: 4,
	IndustryGeneralMedicine: 4,
}

const unrankedIndustry = 99

var industryLabels = map[string]string{
	IndustryDental:          "Dental Care",
	IndustryPharmacy:        "Pharmacy",
	IndustryNursing:         "Nursing and Home Care",
	IndustryGeneralPractice: "General Practice",
	IndustryGeneralMedicine: "General Medicine",
}

func IndustryRank(industry string) int {
	if rank, ok := industryPriority[industry]; ok {
		return rank
	}
	return unrankedIndustry
}

func IndustryLabel(industry string) string {
	if label, ok := industryLabels[industry]; ok {
		return label
	}
	return industry
}

// SortIndustries orders industries by fixed priority. Unrecognized industries
// go last, alphabetically; ties between equal ranks also fall back to name.
func SortIndustries(industries []string) []string {
	out := append([]string(nil), industries...)
	slices.SortStableFunc(out, func(a, b string) int {
		ra, rb := IndustryRank(a), IndustryRank(b)
		if ra != rb {
			return ra - rb
		}
		return strings.Compare(a, b)
	})
	return out
}

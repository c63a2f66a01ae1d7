// Package fees holds the fixed purpose-to-fee schedule for clearance requests.
//
// The fee is resolved server-side from the elected purpose rather than taken
// from the submission, so a tampered client cannot set its own amount.
package fees

// Amounts are in Philippine pesos.
const defaultAmount = 100

var schedule = map[string]int{
	"Local Employment":          100,
	"Abroad Employment":         200,
	"Business Permit":           150,
	"Firearms License":          300,
	"Travel / VISA Application": 200,
	"Scholarship":               50,
	"School Requirement":        50,
	"Other":                     defaultAmount,
}

// Amount returns the fee for the given purpose. Purposes outside the schedule
// (including the free-text detail behind "Other") are charged the default.
func Amount(purpose string) int {
	if fee, ok := schedule[purpose]; ok {
		return fee
	}
	return defaultAmount
}

// Purposes lists the scheduled purposes in a stable order for UI dropdowns.
func Purposes() []string {
	return []string{
		"Local Employment",
		"Abroad Employment",
		"Business Permit",
		"Firearms License",
		"Travel / VISA Application",
		"Scholarship",
		"School Requirement",
		"Other",
	}
}

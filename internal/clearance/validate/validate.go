// Package validate derives the required-field set for a certificate format
// and checks submissions against it.
//
// Validation collects every violation in a single pass, keyed by field name,
// so the office clerk sees all problems at once instead of fixing them one
// round-trip at a time. Business-rule violations never panic; the only
// caller-programming error in this area (an unknown format code) is raised by
// the format catalog before validation runs.
package validate

import (
	"fmt"
	"time"

	"fiscalia/internal/clearance/format"
	"fiscalia/internal/clearance/models"
	dErrors "fiscalia/pkg/domain-errors"
)

// Age bounds for a clearance subject, inclusive.
const (
	MinAge = 18
	MaxAge = 120
)

// FieldErrors maps a submission field name to its violation message.
type FieldErrors map[string]string

// RequiredFields returns the set of fields a submission must populate for the
// given format configuration. Fields outside this set are ignored by
// validation regardless of content; they are documented as ignored, not
// ambiguously optional.
func RequiredFields(cfg format.Config) []string {
	fields := []string{
		"first_name",
		"last_name",
		"age",
		"address",
		"purpose",
		"receipt_number",
		"date_issued",
		"validity_period",
	}
	if cfg.HasCriminalRecord {
		fields = append(fields,
			"case_numbers",
			"crime_description",
			"legal_statute",
			"date_of_commission",
			"date_information_filed",
			"case_status",
			"court_branch",
			"criminal_cases",
		)
	}
	return fields
}

// Validate checks a submission against the required-field set of the given
// format. It returns nil when the submission is acceptable, or a validation
// domain error carrying one message per invalid or missing field.
func Validate(sub *models.Submission, cfg format.Config) error {
	errs := FieldErrors{}

	requireString(errs, "first_name", sub.FirstName)
	requireString(errs, "last_name", sub.LastName)
	requireString(errs, "address", sub.Address)
	requireString(errs, "receipt_number", sub.ReceiptNumber)

	if sub.Age < MinAge || sub.Age > MaxAge {
		errs["age"] = fmt.Sprintf("age must be between %d and %d", MinAge, MaxAge)
	}

	if sub.Purpose == "" {
		errs["purpose"] = "purpose is required"
	} else if sub.Purpose == "Other" && sub.CustomPurpose == "" {
		errs["custom_purpose"] = "custom purpose is required when purpose is Other"
	}

	requireDate(errs, "date_issued", sub.DateIssued)

	switch sub.ValidityPeriod {
	case models.ValiditySixMonths, models.ValidityOneYear:
	case "":
		errs["validity_period"] = "validity period is required"
	default:
		errs["validity_period"] = `validity period must be "6 Months" or "1 Year"`
	}

	if cfg.HasCriminalRecord {
		validateCriminalRecord(errs, sub)
	}

	if len(errs) == 0 {
		return nil
	}
	return dErrors.NewWithFields(dErrors.CodeValidation, "clearance submission failed validation", errs)
}

// validateCriminalRecord checks the legacy single-case block and the
// multi-case entries. Both are required for record-bearing formats.
func validateCriminalRecord(errs FieldErrors, sub *models.Submission) {
	requireString(errs, "case_numbers", sub.CaseNumbers)
	requireString(errs, "crime_description", sub.CrimeDescription)
	requireString(errs, "legal_statute", sub.LegalStatute)
	requireString(errs, "case_status", sub.CaseStatus)
	requireString(errs, "court_branch", sub.CourtBranch)
	requireDate(errs, "date_of_commission", sub.DateOfCommission)
	requireDate(errs, "date_information_filed", sub.DateInformationFiled)

	if len(sub.CriminalCases) == 0 {
		errs["criminal_cases"] = "at least one criminal case entry is required"
		return
	}
	for i, entry := range sub.CriminalCases {
		if !entry.Complete() {
			errs[fmt.Sprintf("criminal_cases[%d]", i)] = "criminal case entry must be fully populated"
		}
	}
}

func requireString(errs FieldErrors, field, value string) {
	if value == "" {
		errs[field] = field + " is required"
	}
}

func requireDate(errs FieldErrors, field, value string) {
	if value == "" {
		errs[field] = field + " is required"
		return
	}
	if _, err := time.Parse(models.DateLayout, value); err != nil {
		errs[field] = field + " must be a date in YYYY-MM-DD format"
	}
}

package document

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"fiscalia/internal/clearance/models"
)

// FullName composes the certificate subject line from name parts:
// uppercased first name, middle initial with a trailing period, uppercased
// last name, then the uppercased suffix. Empty components are dropped and the
// remaining tokens are joined by single spaces.
//
// FullName("juan", "santos", "cruz", "jr") == "JUAN S. CRUZ JR"
func FullName(first, middle, last, suffix string) string {
	var tokens []string
	if first = strings.TrimSpace(first); first != "" {
		tokens = append(tokens, strings.ToUpper(first))
	}
	if middle = strings.TrimSpace(middle); middle != "" {
		r, _ := utf8.DecodeRuneInString(middle)
		tokens = append(tokens, strings.ToUpper(string(r))+".")
	}
	if last = strings.TrimSpace(last); last != "" {
		tokens = append(tokens, strings.ToUpper(last))
	}
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		tokens = append(tokens, strings.ToUpper(suffix))
	}
	return strings.Join(tokens, " ")
}

// OrdinalSuffix returns the English ordinal suffix for a day of the month.
// Days 4 through 20 inclusive take "th" (which correctly covers 11th, 12th,
// and 13th); otherwise the suffix follows the last digit.
func OrdinalSuffix(day int) string {
	if day >= 4 && day <= 20 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// ValidityExpiry computes the expiry date for a certificate issued on the
// given date: one calendar year for the "1 Year" period, six calendar months
// otherwise. The expiry is always derived; it is recomputed whenever the
// issuance date or period changes and is never user-editable.
func ValidityExpiry(dateIssued time.Time, period models.ValidityPeriod) time.Time {
	if period == models.ValidityOneYear {
		return dateIssued.AddDate(1, 0, 0)
	}
	return dateIssued.AddDate(0, 6, 0)
}

// EffectivePurpose returns the free-text purpose when the elected purpose is
// "Other", otherwise the elected purpose verbatim.
func EffectivePurpose(purpose, customPurpose string) string {
	if purpose == "Other" {
		return customPurpose
	}
	return purpose
}

// LongDate renders a date as "January 15, 2025" for the certificate footer.
func LongDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

// OrdinalDate renders a date as "15th day of January, 2025" for the
// attestation line.
func OrdinalDate(t time.Time) string {
	day := t.Day()
	return strconv.Itoa(day) + OrdinalSuffix(day) + " day of " + t.Format("January, 2006")
}

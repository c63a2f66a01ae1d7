package document

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"fiscalia/internal/clearance/format"
	"fiscalia/internal/clearance/models"
)

// TemplateData is the input every narrative template receives: the validated
// submission plus the values the assembler has already derived.
type TemplateData struct {
	Submission *models.Submission
	FullName   string
	ORNumber   string
	// Ordinal is the ordinal-suffix formatter for day-of-month values.
	Ordinal func(day int) string
}

// TemplateFn produces the narrative body markup that varies per certificate
// format. Everything around the body (letterhead, title, salutation,
// signature block, footer) is fixed boilerplate owned by the assembler.
type TemplateFn func(data TemplateData) string

// SelectTemplate routes a format configuration to its narrative template.
// Routing is total and deterministic over the closed config set; the priority
// order mirrors the mutual exclusivity of the six registered formats, first
// match wins.
func SelectTemplate(cfg format.Config) TemplateFn {
	switch {
	case cfg.IsDerogatoryVariant:
		return formatETemplate
	case cfg.IsBalsaffVariant:
		return formatFTemplate
	case cfg.HasCriminalRecord && cfg.IsFamilyRequest:
		return formatDTemplate
	case cfg.HasCriminalRecord:
		return formatBTemplate
	case cfg.IsFamilyRequest:
		return formatCTemplate
	default:
		return formatATemplate
	}
}

// subjectClause renders "JUAN S. CRUZ JR alias 'Totoy', 30 years old, single,
// Filipino, and a resident of ..." with whatever descriptors are present.
func subjectClause(data TemplateData) string {
	sub := data.Submission
	var b strings.Builder
	b.WriteString("<strong>" + html.EscapeString(data.FullName) + "</strong>")
	if sub.Alias != "" {
		b.WriteString(" alias &ldquo;" + html.EscapeString(sub.Alias) + "&rdquo;")
	}
	if sub.Age > 0 {
		b.WriteString(", " + strconv.Itoa(sub.Age) + " years old")
	}
	if sub.CivilStatus != "" {
		b.WriteString(", " + html.EscapeString(strings.ToLower(sub.CivilStatus)))
	}
	if sub.Nationality != "" {
		b.WriteString(", " + html.EscapeString(sub.Nationality))
	}
	b.WriteString(", and a resident of " + html.EscapeString(sub.Address))
	return b.String()
}

// purposeClause names the effective purpose of the request.
func purposeClause(data TemplateData) string {
	purpose := EffectivePurpose(data.Submission.Purpose, data.Submission.CustomPurpose)
	return "This certification is issued for the purpose of <strong>" +
		html.EscapeString(purpose) + "</strong>."
}

// requesterClause attributes a family/third-party request.
func requesterClause(data TemplateData) string {
	requester := data.Submission.IssuedUponRequestBy
	if requester == "" {
		return ""
	}
	return "<p>This certification is issued upon the request of <strong>" +
		html.EscapeString(requester) + "</strong>.</p>"
}

// caseList enumerates the criminal cases attached to the submission. Case
// number, crime, and status appear verbatim so the certificate can be checked
// against the docket.
func caseList(data TemplateData) string {
	var b strings.Builder
	b.WriteString(`<table class="case-table"><thead><tr>` +
		`<th>Case Number</th><th>Offense</th><th>Date Information Filed</th><th>Origin</th><th>Status</th>` +
		`</tr></thead><tbody>`)
	for _, entry := range data.Submission.CriminalCases {
		b.WriteString("<tr>")
		for _, cell := range []string{
			entry.CaseNumber,
			entry.CrimeDescription,
			entry.DateInformationFiled,
			entry.Origin,
			entry.Status,
		} {
			b.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

// legacyCaseClause renders the single-case block kept for backward
// compatibility with records docketed before multi-case support.
func legacyCaseClause(data TemplateData) string {
	sub := data.Submission
	return fmt.Sprintf(
		"<p>Per docket, Case No(s). <strong>%s</strong> for <strong>%s</strong>, in violation of %s, "+
			"committed on %s and with information filed on %s before %s, is of record with status: <strong>%s</strong>.</p>",
		html.EscapeString(sub.CaseNumbers),
		html.EscapeString(sub.CrimeDescription),
		html.EscapeString(sub.LegalStatute),
		html.EscapeString(sub.DateOfCommission),
		html.EscapeString(sub.DateInformationFiled),
		html.EscapeString(sub.CourtBranch),
		html.EscapeString(sub.CaseStatus),
	)
}

// Format A: no criminal record, requested by the subject.
func formatATemplate(data TemplateData) string {
	return "<p>THIS IS TO CERTIFY that according to the records of this Office, " +
		subjectClause(data) +
		", has <strong>NO PENDING CRIMINAL CASE</strong> filed before this Office as of the date of issuance.</p>" +
		"<p>" + purposeClause(data) + "</p>"
}

// Format B: with criminal record, requested by the subject.
func formatBTemplate(data TemplateData) string {
	return "<p>THIS IS TO CERTIFY that according to the records of this Office, " +
		subjectClause(data) +
		", is a respondent in the following criminal case(s) filed before this Office:</p>" +
		caseList(data) +
		legacyCaseClause(data) +
		"<p>" + purposeClause(data) + "</p>"
}

// Format C: no criminal record, requested by a family member.
func formatCTemplate(data TemplateData) string {
	return "<p>THIS IS TO CERTIFY that according to the records of this Office, " +
		subjectClause(data) +
		", has <strong>NO PENDING CRIMINAL CASE</strong> filed before this Office as of the date of issuance.</p>" +
		requesterClause(data) +
		"<p>" + purposeClause(data) + "</p>"
}

// Format D: with criminal record, requested by a family member.
func formatDTemplate(data TemplateData) string {
	return "<p>THIS IS TO CERTIFY that according to the records of this Office, " +
		subjectClause(data) +
		", is a respondent in the following criminal case(s) filed before this Office:</p>" +
		caseList(data) +
		legacyCaseClause(data) +
		requesterClause(data) +
		"<p>" + purposeClause(data) + "</p>"
}

// Format E: "no derogatory record" wording.
func formatETemplate(data TemplateData) string {
	return "<p>THIS IS TO CERTIFY that according to the records of this Office, " +
		subjectClause(data) +
		", has <strong>NO DEROGATORY RECORD</strong> on file with this Office as of the date of issuance.</p>" +
		"<p>" + purposeClause(data) + "</p>"
}

// Format F: BALSAFF firearm application. Case detail is enumerated regardless
// of conviction status.
func formatFTemplate(data TemplateData) string {
	return "<p>THIS IS TO CERTIFY that in connection with the application of " +
		subjectClause(data) +
		", under the <strong>BALSAFF</strong> firearm licensing program, the following case record appears before this Office:</p>" +
		caseList(data) +
		legacyCaseClause(data) +
		"<p>" + purposeClause(data) + "</p>"
}

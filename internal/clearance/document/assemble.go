// Package document assembles printable certificates of clearance.
//
// The split of responsibilities is deliberate: templates.go owns what varies
// per format (the narrative body), this file owns what is fixed per
// deployment (letterhead, title, salutation, signature block, footer) and the
// derived values both renderings share. Assembly is a pure function of
// validated input; it is never invoked until validation has passed and cannot
// partially fail.
package document

import (
	"fmt"
	"html"
	"strings"
	"time"

	"fiscalia/internal/clearance/fees"
	"fiscalia/internal/clearance/format"
	"fiscalia/internal/clearance/models"
	"fiscalia/internal/platform/config"
	dErrors "fiscalia/pkg/domain-errors"
)

// Document is the typed model a rendering target consumes. Both the on-screen
// preview and the print rendering are produced from the same model, so the
// two always agree on derived values.
type Document struct {
	FormatCode     format.Code
	FullName       string
	ORNumber       string
	PurposeText    string
	Fee            int
	DateIssued     time.Time
	ValidityExpiry time.Time
	ValidityPeriod models.ValidityPeriod

	BodyHTML string
}

// Assembler combines fixed office letterhead content with per-format
// narrative bodies into printable documents.
type Assembler struct {
	office config.Office
}

// NewAssembler creates an assembler for the given office deployment.
func NewAssembler(office config.Office) *Assembler {
	return &Assembler{office: office}
}

// Build derives the document model from a validated submission. The only
// possible failure is an unparseable issuance date, which validation has
// already excluded; it is kept as an explicit error rather than a panic.
func (a *Assembler) Build(sub *models.Submission, cfg format.Config, orNumber string) (*Document, error) {
	dateIssued, err := time.Parse(models.DateLayout, sub.DateIssued)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "date issued is not a valid date")
	}

	fullName := FullName(sub.FirstName, sub.MiddleName, sub.LastName, sub.Suffix)
	body := SelectTemplate(cfg)(TemplateData{
		Submission: sub,
		FullName:   fullName,
		ORNumber:   orNumber,
		Ordinal:    OrdinalSuffix,
	})

	return &Document{
		FormatCode:     cfg.Code,
		FullName:       fullName,
		ORNumber:       orNumber,
		PurposeText:    EffectivePurpose(sub.Purpose, sub.CustomPurpose),
		Fee:            fees.Amount(sub.Purpose),
		DateIssued:     dateIssued,
		ValidityExpiry: ValidityExpiry(dateIssued, sub.ValidityPeriod),
		ValidityPeriod: sub.ValidityPeriod,
		BodyHTML:       body,
	}, nil
}

// renderCertificate produces the certificate markup shared by both rendering
// targets: letterhead, title, salutation, narrative, attestation, signature
// block, and footer.
func (a *Assembler) renderCertificate(doc *Document) string {
	var b strings.Builder

	b.WriteString(`<header class="letterhead">`)
	b.WriteString(`<p class="republic">` + html.EscapeString(a.office.Republic) + `</p>`)
	b.WriteString(`<p class="department">` + html.EscapeString(a.office.Department) + `</p>`)
	b.WriteString(`<p class="office-name">` + html.EscapeString(a.office.Name) + `</p>`)
	b.WriteString(`<p class="office-address">` + html.EscapeString(a.office.Address) + `</p>`)
	b.WriteString(`</header>`)

	b.WriteString(`<h1 class="title">CERTIFICATION</h1>`)
	b.WriteString(`<p class="salutation">TO WHOM IT MAY CONCERN:</p>`)

	b.WriteString(`<section class="narrative">` + doc.BodyHTML + `</section>`)

	b.WriteString(fmt.Sprintf(
		`<p class="attestation">Issued this %s at the %s.</p>`,
		OrdinalDate(doc.DateIssued),
		html.EscapeString(a.office.Name),
	))

	b.WriteString(`<div class="signature-block">`)
	b.WriteString(`<p class="signatory">` + html.EscapeString(strings.ToUpper(a.office.Signatory)) + `</p>`)
	b.WriteString(`<p class="signatory-title">` + html.EscapeString(a.office.SignatoryTitle) + `</p>`)
	b.WriteString(`</div>`)

	b.WriteString(`<footer class="certificate-footer">`)
	b.WriteString(fmt.Sprintf(`<p>O.R. No.: %s</p>`, html.EscapeString(doc.ORNumber)))
	b.WriteString(fmt.Sprintf(`<p>O.R. Fee: PHP %d.00</p>`, doc.Fee))
	b.WriteString(`<p>Date Issued: ` + LongDate(doc.DateIssued) + `</p>`)
	b.WriteString(fmt.Sprintf(
		`<p class="disclaimer">This certification is valid for %s from the date of issuance, until %s. Any erasure or alteration invalidates this document.</p>`,
		html.EscapeString(string(doc.ValidityPeriod)),
		LongDate(doc.ValidityExpiry),
	))
	b.WriteString(`</footer>`)

	return b.String()
}

// Preview renders the document as a styled fragment for the live on-screen
// preview while a submission is being composed.
func (a *Assembler) Preview(doc *Document) string {
	return `<div class="certificate-preview">` + a.renderCertificate(doc) + `</div>`
}

// Print renders a self-contained HTML document with inline print CSS. It is
// printable without further data lookups; the PDF rasterizer is an external
// collaborator that consumes this output as-is.
func (a *Assembler) Print(doc *Document) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>Certificate of Clearance " + html.EscapeString(doc.ORNumber) + "</title>\n")
	b.WriteString("<style>\n" + printCSS + "</style>\n</head>\n<body>\n")
	b.WriteString(a.renderCertificate(doc))
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

const printCSS = `body { font-family: "Times New Roman", serif; font-size: 12pt; margin: 1in; color: #000; }
.letterhead { text-align: center; line-height: 1.2; }
.letterhead p { margin: 0; }
.office-name { font-weight: bold; text-transform: uppercase; }
.title { text-align: center; letter-spacing: 0.3em; margin: 2em 0 1em; font-size: 16pt; }
.salutation { font-weight: bold; margin-bottom: 1.5em; }
.narrative p { text-indent: 3em; text-align: justify; line-height: 1.6; }
.case-table { width: 100%; border-collapse: collapse; margin: 1em 0; font-size: 10pt; }
.case-table th, .case-table td { border: 1px solid #000; padding: 4px 6px; text-align: left; }
.attestation { text-indent: 3em; margin-top: 2em; }
.signature-block { margin-top: 4em; text-align: right; }
.signature-block p { margin: 0; }
.signatory { font-weight: bold; text-decoration: underline; }
.certificate-footer { margin-top: 3em; font-size: 10pt; }
.certificate-footer p { margin: 0; }
.disclaimer { margin-top: 1em; font-style: italic; }
@media print { body { margin: 0.5in 1in; } }
`

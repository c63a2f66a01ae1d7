package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscalia/internal/clearance/format"
	"fiscalia/internal/clearance/models"
	"fiscalia/internal/platform/config"
	dErrors "fiscalia/pkg/domain-errors"
)

func testOffice() config.Office {
	return config.Office{
		Republic:       "Republic of the Philippines",
		Department:     "Department of Justice",
		Name:           "Office of the City Prosecutor",
		Address:        "City Hall Complex, Manila",
		Signatory:      "Jose P. Santos",
		SignatoryTitle: "City Prosecutor",
	}
}

func buildSubmission() *models.Submission {
	return &models.Submission{
		FormatCode:     format.CodeA,
		FirstName:      "Juan",
		MiddleName:     "Santos",
		LastName:       "Cruz",
		Suffix:         "Jr",
		Age:            30,
		Address:        "123 Mabini St, Manila",
		Purpose:        "Abroad Employment",
		ReceiptNumber:  "RCPT-0001",
		DateIssued:     "2025-01-15",
		ValidityPeriod: models.ValiditySixMonths,
	}
}

func TestBuild_DerivesDocumentModel(t *testing.T) {
	assembler := NewAssembler(testOffice())
	cfg, err := format.Lookup(format.CodeA)
	require.NoError(t, err)

	doc, err := assembler.Build(buildSubmission(), cfg, "OR-2025-ABC1234567")
	require.NoError(t, err)

	assert.Equal(t, format.CodeA, doc.FormatCode)
	assert.Equal(t, "JUAN S. CRUZ JR", doc.FullName)
	assert.Equal(t, "OR-2025-ABC1234567", doc.ORNumber)
	assert.Equal(t, "Abroad Employment", doc.PurposeText)
	assert.Equal(t, 200, doc.Fee)
	assert.Equal(t, "2025-07-15", doc.ValidityExpiry.Format(models.DateLayout))
	assert.NotEmpty(t, doc.BodyHTML)
}

func TestBuild_RejectsUnparseableDate(t *testing.T) {
	assembler := NewAssembler(testOffice())
	cfg, err := format.Lookup(format.CodeA)
	require.NoError(t, err)

	sub := buildSubmission()
	sub.DateIssued = "not-a-date"
	_, err = assembler.Build(sub, cfg, "OR-2025-ABC1234567")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestPreview_WrapsCertificateFragment(t *testing.T) {
	assembler := NewAssembler(testOffice())
	cfg, err := format.Lookup(format.CodeA)
	require.NoError(t, err)
	doc, err := assembler.Build(buildSubmission(), cfg, "OR-2025-ABC1234567")
	require.NoError(t, err)

	preview := assembler.Preview(doc)
	assert.True(t, strings.HasPrefix(preview, `<div class="certificate-preview">`))
	assert.NotContains(t, preview, "<!DOCTYPE html>")
	assert.Contains(t, preview, "CERTIFICATION")
	assert.Contains(t, preview, "TO WHOM IT MAY CONCERN:")
}

func TestPrint_SelfContainedHTML(t *testing.T) {
	assembler := NewAssembler(testOffice())
	cfg, err := format.Lookup(format.CodeA)
	require.NoError(t, err)
	doc, err := assembler.Build(buildSubmission(), cfg, "OR-2025-ABC1234567")
	require.NoError(t, err)

	page := assembler.Print(doc)
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "@media print")
	assert.Contains(t, page, "Office of the City Prosecutor")
	assert.Contains(t, page, "JOSE P. SANTOS")
	assert.Contains(t, page, "City Prosecutor")
}

func TestRenderCertificate_FooterDetail(t *testing.T) {
	assembler := NewAssembler(testOffice())
	cfg, err := format.Lookup(format.CodeA)
	require.NoError(t, err)
	doc, err := assembler.Build(buildSubmission(), cfg, "OR-2025-ABC1234567")
	require.NoError(t, err)

	page := assembler.Print(doc)
	assert.Contains(t, page, "O.R. No.: OR-2025-ABC1234567")
	assert.Contains(t, page, "O.R. Fee: PHP 200.00")
	assert.Contains(t, page, "Date Issued: January 15, 2025")
	assert.Contains(t, page, "valid for 6 Months from the date of issuance, until July 15, 2025")
	assert.Contains(t, page, "Issued this 15th day of January, 2025")
}

func TestPreviewAndPrint_AgreeOnDerivedValues(t *testing.T) {
	assembler := NewAssembler(testOffice())
	cfg, err := format.Lookup(format.CodeA)
	require.NoError(t, err)
	doc, err := assembler.Build(buildSubmission(), cfg, "OR-2025-ABC1234567")
	require.NoError(t, err)

	preview := assembler.Preview(doc)
	page := assembler.Print(doc)
	for _, fragment := range []string{
		"JUAN S. CRUZ JR",
		"OR-2025-ABC1234567",
		"PHP 200.00",
		"July 15, 2025",
	} {
		assert.Contains(t, preview, fragment)
		assert.Contains(t, page, fragment)
	}
}

func TestRenderCertificate_EscapesOfficeContent(t *testing.T) {
	office := testOffice()
	office.Address = `City Hall <b>Complex</b> & Annex`
	assembler := NewAssembler(office)
	cfg, err := format.Lookup(format.CodeA)
	require.NoError(t, err)
	doc, err := assembler.Build(buildSubmission(), cfg, "OR-2025-ABC1234567")
	require.NoError(t, err)

	page := assembler.Print(doc)
	assert.NotContains(t, page, "<b>Complex</b>")
	assert.Contains(t, page, "&lt;b&gt;Complex&lt;/b&gt; &amp; Annex")
}

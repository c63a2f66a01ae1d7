package handler

import (
	"strings"

	"fiscalia/internal/clearance/format"
	"fiscalia/internal/clearance/models"
	dErrors "fiscalia/pkg/domain-errors"
)

// CriminalCaseRequest is one criminal case entry on the wire.
type CriminalCaseRequest struct {
	CaseNumber           string `json:"case_number"`
	CrimeDescription     string `json:"crime_description"`
	DateInformationFiled string `json:"date_information_filed"`
	Origin               string `json:"origin"`
	Status               string `json:"status"`
}

// SubmissionRequest is the wire shape shared by create, update, and preview.
// Field-level business validation happens in the service against the elected
// format; this layer only normalizes input and rejects structurally empty
// requests.
type SubmissionRequest struct {
	FormatType string `json:"format_type"`

	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name"`
	LastName    string `json:"last_name"`
	Suffix      string `json:"suffix"`
	Alias       string `json:"alias"`
	Age         int    `json:"age"`
	CivilStatus string `json:"civil_status"`
	Nationality string `json:"nationality"`
	Address     string `json:"address"`

	Purpose             string `json:"purpose"`
	CustomPurpose       string `json:"custom_purpose"`
	IssuedUponRequestBy string `json:"issued_upon_request_by"`
	ReceiptNumber       string `json:"receipt_number"`

	DateIssued     string `json:"date_issued"`
	ValidityPeriod string `json:"validity_period"`

	CaseNumbers          string `json:"case_numbers"`
	CrimeDescription     string `json:"crime_description"`
	LegalStatute         string `json:"legal_statute"`
	DateOfCommission     string `json:"date_of_commission"`
	DateInformationFiled string `json:"date_information_filed"`
	CourtBranch          string `json:"court_branch"`
	CaseStatus           string `json:"case_status"`

	CriminalCases []CriminalCaseRequest `json:"criminal_cases"`
}

// Normalize trims whitespace and canonicalizes the format code.
func (r *SubmissionRequest) Normalize() {
	r.FormatType = strings.ToUpper(strings.TrimSpace(r.FormatType))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.MiddleName = strings.TrimSpace(r.MiddleName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Suffix = strings.TrimSpace(r.Suffix)
	r.Alias = strings.TrimSpace(r.Alias)
	r.CivilStatus = strings.TrimSpace(r.CivilStatus)
	r.Nationality = strings.TrimSpace(r.Nationality)
	r.Address = strings.TrimSpace(r.Address)
	r.Purpose = strings.TrimSpace(r.Purpose)
	r.CustomPurpose = strings.TrimSpace(r.CustomPurpose)
	r.IssuedUponRequestBy = strings.TrimSpace(r.IssuedUponRequestBy)
	r.ReceiptNumber = strings.TrimSpace(r.ReceiptNumber)
	r.DateIssued = strings.TrimSpace(r.DateIssued)
	r.ValidityPeriod = strings.TrimSpace(r.ValidityPeriod)
}

// Validate rejects requests that cannot be routed at all. Everything beyond
// the format code is validated by the service against that format's rules.
func (r *SubmissionRequest) Validate() error {
	if r.FormatType == "" {
		return dErrors.New(dErrors.CodeBadRequest, "format_type is required")
	}
	return nil
}

// ToSubmission maps the wire request to the domain submission.
func (r *SubmissionRequest) ToSubmission() *models.Submission {
	cases := make([]models.CriminalCaseEntry, 0, len(r.CriminalCases))
	for _, c := range r.CriminalCases {
		cases = append(cases, models.CriminalCaseEntry{
			CaseNumber:           c.CaseNumber,
			CrimeDescription:     c.CrimeDescription,
			DateInformationFiled: c.DateInformationFiled,
			Origin:               c.Origin,
			Status:               c.Status,
		})
	}
	if len(cases) == 0 {
		cases = nil
	}
	return &models.Submission{
		FormatCode:           format.Code(r.FormatType),
		FirstName:            r.FirstName,
		MiddleName:           r.MiddleName,
		LastName:             r.LastName,
		Suffix:               r.Suffix,
		Alias:                r.Alias,
		Age:                  r.Age,
		CivilStatus:          r.CivilStatus,
		Nationality:          r.Nationality,
		Address:              r.Address,
		Purpose:              r.Purpose,
		CustomPurpose:        r.CustomPurpose,
		IssuedUponRequestBy:  r.IssuedUponRequestBy,
		ReceiptNumber:        r.ReceiptNumber,
		DateIssued:           r.DateIssued,
		ValidityPeriod:       models.ValidityPeriod(r.ValidityPeriod),
		CaseNumbers:          r.CaseNumbers,
		CrimeDescription:     r.CrimeDescription,
		LegalStatute:         r.LegalStatute,
		DateOfCommission:     r.DateOfCommission,
		DateInformationFiled: r.DateInformationFiled,
		CourtBranch:          r.CourtBranch,
		CaseStatus:           r.CaseStatus,
		CriminalCases:        cases,
	}
}

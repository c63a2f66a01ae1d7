package models

import (
	"time"

	"fiscalia/internal/clearance/format"
	id "fiscalia/pkg/domain"
)

// DateLayout is the wire format for all date fields on a submission.
const DateLayout = "2006-01-02"

// ValidityPeriod is the elected validity window of a certificate.
type ValidityPeriod string

const (
	ValiditySixMonths ValidityPeriod = "6 Months"
	ValidityOneYear   ValidityPeriod = "1 Year"
)

// Status labels where a record stands relative to its validity window.
type Status string

const (
	StatusValid   Status = "Valid"
	StatusExpired Status = "Expired"
)

// StatusFor derives the lifecycle status from the validity expiry date.
// Status is always derived, never stored independently of the expiry.
func StatusFor(validityExpiry time.Time, now time.Time) Status {
	if now.After(validityExpiry) {
		return StatusExpired
	}
	return StatusValid
}

// CriminalCaseEntry is one criminal case referenced by a clearance whose
// subject has a record. Entries are composed client-side with the submission
// and become immutable once the clearance is finalized, except through a full
// update.
type CriminalCaseEntry struct {
	CaseNumber           string `json:"case_number"`
	CrimeDescription     string `json:"crime_description"`
	DateInformationFiled string `json:"date_information_filed"`
	Origin               string `json:"origin"`
	Status               string `json:"status"`
}

// Complete reports whether every field of the entry is populated.
func (e CriminalCaseEntry) Complete() bool {
	return e.CaseNumber != "" &&
		e.CrimeDescription != "" &&
		e.DateInformationFiled != "" &&
		e.Origin != "" &&
		e.Status != ""
}

// Submission is the transient, client-composed clearance request. It is the
// superset of fields needed across every certificate format; which fields are
// required is derived from the elected format's configuration, and fields a
// format does not use are ignored rather than rejected.
type Submission struct {
	FormatCode format.Code `json:"format_type"`

	// Identity of the subject.
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name"`
	LastName    string `json:"last_name"`
	Suffix      string `json:"suffix"`
	Alias       string `json:"alias"`
	Age         int    `json:"age"`
	CivilStatus string `json:"civil_status"`
	Nationality string `json:"nationality"`
	Address     string `json:"address"`

	// Request metadata.
	Purpose             string `json:"purpose"`
	CustomPurpose       string `json:"custom_purpose"`
	IssuedUponRequestBy string `json:"issued_upon_request_by"`
	ReceiptNumber       string `json:"receipt_number"`

	// Issuance metadata. ValidityExpiry is always derived from DateIssued
	// and ValidityPeriod, never user-editable.
	DateIssued     string         `json:"date_issued"`
	ValidityPeriod ValidityPeriod `json:"validity_period"`

	// Legacy single-case block, retained for backward compatibility with
	// records docketed before multi-case support.
	CaseNumbers          string `json:"case_numbers"`
	CrimeDescription     string `json:"crime_description"`
	LegalStatute         string `json:"legal_statute"`
	DateOfCommission     string `json:"date_of_commission"`
	DateInformationFiled string `json:"date_information_filed"`
	CourtBranch          string `json:"court_branch"`
	CaseStatus           string `json:"case_status"`

	CriminalCases []CriminalCaseEntry `json:"criminal_cases"`
}

// Issuer is a user who has issued at least one clearance.
type Issuer struct {
	ID   id.UserID `json:"id"`
	Name string    `json:"name"`
}

// Record is a finalized, persisted submission.
type Record struct {
	ID       id.ClearanceID `json:"id"`
	ORNumber string         `json:"or_number"`

	Submission

	// PurposeFee is resolved server-side from the purpose schedule.
	PurposeFee     int       `json:"purpose_fee"`
	ValidityExpiry time.Time `json:"validity_expiry"`

	IssuedByUserID id.UserID `json:"issued_by_user_id"`
	IssuedByName   string    `json:"issued_by_name"`
	UpdatedByName  string    `json:"updated_by_name,omitempty"`

	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatsOverview aggregates counts for the admin dashboard.
type StatsOverview struct {
	Total    int                 `json:"total"`
	Valid    int                 `json:"valid"`
	Expired  int                 `json:"expired"`
	ByFormat map[format.Code]int `json:"by_format"`
}

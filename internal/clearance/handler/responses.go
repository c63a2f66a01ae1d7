package handler

import (
	"time"

	"fiscalia/internal/clearance/format"
	"fiscalia/internal/clearance/models"
)

// RecordResponse is the wire shape of a persisted clearance record.
type RecordResponse struct {
	ID       string `json:"id"`
	ORNumber string `json:"or_number"`

	models.Submission

	PurposeFee     int       `json:"purpose_fee"`
	ValidityExpiry time.Time `json:"validity_expiry"`
	IssuedByUserID string    `json:"issued_by_user_id"`
	IssuedByName   string    `json:"issued_by_name"`
	UpdatedByName  string    `json:"updated_by_name,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ListResponse wraps the record listing.
type ListResponse struct {
	Clearances []*RecordResponse `json:"clearances"`
	Total      int               `json:"total"`
}

// PreviewResponse carries the rendered preview fragment.
type PreviewResponse struct {
	FormatType string `json:"format_type"`
	HTML       string `json:"html"`
}

// IssuersResponse wraps the distinct issuer listing.
type IssuersResponse struct {
	Issuers []models.Issuer `json:"issuers"`
}

// FormatResponse describes one certificate format for client-side routing.
type FormatResponse struct {
	Code              string `json:"code"`
	Label             string `json:"label"`
	HasCriminalRecord bool   `json:"has_criminal_record"`
	IsFamilyRequest   bool   `json:"is_family_request"`
	RequiredFields    []string `json:"required_fields"`
}

// FormatsResponse lists the certificate format catalog.
type FormatsResponse struct {
	Formats []FormatResponse `json:"formats"`
}

// PurposeResponse pairs a purpose with its scheduled fee.
type PurposeResponse struct {
	Purpose string `json:"purpose"`
	Fee     int    `json:"fee"`
}

// PurposesResponse lists the fee schedule.
type PurposesResponse struct {
	Purposes []PurposeResponse `json:"purposes"`
}

func toRecordResponse(record *models.Record) *RecordResponse {
	return &RecordResponse{
		ID:             record.ID.String(),
		ORNumber:       record.ORNumber,
		Submission:     record.Submission,
		PurposeFee:     record.PurposeFee,
		ValidityExpiry: record.ValidityExpiry,
		IssuedByUserID: record.IssuedByUserID.String(),
		IssuedByName:   record.IssuedByName,
		UpdatedByName:  record.UpdatedByName,
		Status:         string(record.Status),
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

func toFormatResponse(cfg format.Config, requiredFields []string) FormatResponse {
	return FormatResponse{
		Code:              string(cfg.Code),
		Label:             cfg.Label,
		HasCriminalRecord: cfg.HasCriminalRecord,
		IsFamilyRequest:   cfg.IsFamilyRequest,
		RequiredFields:    requiredFields,
	}
}

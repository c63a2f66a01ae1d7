package service

import (
	"context"
	"time"

	"fiscalia/internal/clearance/format"
	"fiscalia/internal/clearance/models"
	id "fiscalia/pkg/domain"
)

// Store defines the persistence interface for clearance records.
// Error Contract:
// - FindByID, Update, and Delete return sentinel.ErrNotFound when no record exists
// - Insert returns sentinel.ErrAlreadyUsed when the O.R. number is taken
// - Other failures are returned wrapped
type Store interface {
	Insert(ctx context.Context, record *models.Record) error
	Update(ctx context.Context, record *models.Record) error
	FindByID(ctx context.Context, clearanceID id.ClearanceID) (*models.Record, error)
	Delete(ctx context.Context, clearanceID id.ClearanceID) error
	List(ctx context.Context) ([]*models.Record, error)
	ListIssuers(ctx context.Context) ([]models.Issuer, error)
	ORNumberExists(ctx context.Context, orNumber string) (bool, error)
	Count(ctx context.Context) (int, error)
	CountValid(ctx context.Context, asOf time.Time) (int, error)
	CountByFormat(ctx context.Context) (map[format.Code]int, error)
}

// Actor identifies who performs a lifecycle operation, for the audit trail.
// The HTTP layer fills this from the verified token and request metadata.
type Actor struct {
	UserID    id.UserID
	Name      string
	Device    string
	RequestID string
}

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fiscalia/internal/clearance/format"
	"fiscalia/internal/clearance/models"
	"fiscalia/internal/sentinel"
	id "fiscalia/pkg/domain"
)

// ErrNotFound is returned when a clearance record is not found.
var ErrNotFound = sentinel.ErrNotFound

// InMemory stores clearance records in memory for tests and the demo
// environment. The O.R. number index mirrors the database unique constraint.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]*models.Record
	orIdx   map[string]string
}

// NewInMemory creates an in-memory clearance store.
func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[string]*models.Record),
		orIdx:   make(map[string]string),
	}
}

// Insert atomically persists the record if its O.R. number is not already taken.
func (s *InMemory) Insert(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orIdx[record.ORNumber]; exists {
		return fmt.Errorf("O.R. number must be unique: %w", sentinel.ErrAlreadyUsed)
	}
	key := record.ID.String()
	s.records[key] = record
	s.orIdx[record.ORNumber] = key
	return nil
}

// Update replaces an existing record. The O.R. number never changes on update.
func (s *InMemory) Update(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := record.ID.String()
	if _, exists := s.records[key]; !exists {
		return ErrNotFound
	}
	s.records[key] = record
	return nil
}

// FindByID retrieves a record by its UUID.
func (s *InMemory) FindByID(_ context.Context, clearanceID id.ClearanceID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.records[clearanceID.String()]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

// Delete removes a record.
func (s *InMemory) Delete(_ context.Context, clearanceID id.ClearanceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := clearanceID.String()
	record, ok := s.records[key]
	if !ok {
		return ErrNotFound
	}
	delete(s.orIdx, record.ORNumber)
	delete(s.records, key)
	return nil
}

// List returns all records, newest first.
func (s *InMemory) List(_ context.Context) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListIssuers returns the distinct users who have issued clearances.
func (s *InMemory) ListIssuers(_ context.Context) ([]models.Issuer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[id.UserID]string)
	for _, r := range s.records {
		if _, ok := seen[r.IssuedByUserID]; !ok {
			seen[r.IssuedByUserID] = r.IssuedByName
		}
	}
	issuers := make([]models.Issuer, 0, len(seen))
	for userID, name := range seen {
		issuers = append(issuers, models.Issuer{ID: userID, Name: name})
	}
	sort.Slice(issuers, func(i, j int) bool {
		return issuers[i].Name < issuers[j].Name
	})
	return issuers, nil
}

// ORNumberExists reports whether an O.R. number is already taken.
func (s *InMemory) ORNumberExists(_ context.Context, orNumber string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.orIdx[orNumber]
	return exists, nil
}

// Count returns the total number of records.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// CountValid returns the number of records whose validity window covers asOf.
func (s *InMemory) CountValid(_ context.Context, asOf time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, r := range s.records {
		if !asOf.After(r.ValidityExpiry) {
			count++
		}
	}
	return count, nil
}

// CountByFormat returns record counts grouped by certificate format.
func (s *InMemory) CountByFormat(_ context.Context) (map[format.Code]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[format.Code]int)
	for _, r := range s.records {
		counts[r.FormatCode]++
	}
	return counts, nil
}

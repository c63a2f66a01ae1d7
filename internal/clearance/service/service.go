// Package service owns the clearance record lifecycle: creation with O.R.
// number assignment, full update, audited deletion, and the read paths the
// office dashboard consumes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fiscalia/internal/audit"
	"fiscalia/internal/clearance/document"
	"fiscalia/internal/clearance/fees"
	"fiscalia/internal/clearance/format"
	"fiscalia/internal/clearance/metrics"
	"fiscalia/internal/clearance/models"
	"fiscalia/internal/clearance/ornumber"
	"fiscalia/internal/clearance/validate"
	"fiscalia/internal/platform/tracer"
	id "fiscalia/pkg/domain"
	dErrors "fiscalia/pkg/domain-errors"
	"fiscalia/internal/sentinel"
)

// insertRetries bounds how many times a create retries against the store's
// unique constraint when two requests race to the same O.R. number.
const insertRetries = 3

// previewORNumber stands in for the O.R. number on previews, which render
// before a number is assigned.
const previewORNumber = "PENDING"

// Service implements the clearance record lifecycle.
type Service struct {
	store     Store
	assembler *document.Assembler
	orGen     *ornumber.Generator
	auditor   *audit.Publisher
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the lifecycle service. The audit publisher is required:
// every mutation must leave a trail.
func NewService(store Store, assembler *document.Assembler, orGen *ornumber.Generator, auditor *audit.Publisher, opts ...Option) *Service {
	svc := &Service{
		store:     store,
		assembler: assembler,
		orGen:     orGen,
		auditor:   auditor,
		tracer:    tracer.NewNoop(),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Create validates the submission, assigns a unique O.R. number, and persists
// the record. The store's unique constraint is the final arbiter under
// concurrent creates; a collision regenerates and retries.
func (s *Service) Create(ctx context.Context, sub *models.Submission, actor Actor) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanClearanceCreate,
		tracer.String(tracer.AttrFormatCode, string(sub.FormatCode)),
	)
	var err error
	defer func() { span.End(err) }()

	cfg, err := format.Lookup(sub.FormatCode)
	if err != nil {
		return nil, err
	}
	if err = validate.Validate(sub, cfg); err != nil {
		s.incrementValidationFailure()
		return nil, err
	}

	now := s.now().UTC()
	dateIssued, parseErr := time.Parse(models.DateLayout, sub.DateIssued)
	if parseErr != nil {
		err = dErrors.Wrap(parseErr, dErrors.CodeInvalidInput, "date issued is not a valid date")
		return nil, err
	}
	expiry := document.ValidityExpiry(dateIssued, sub.ValidityPeriod)

	record := &models.Record{
		ID:             id.ClearanceID(uuid.New()),
		Submission:     *sub,
		PurposeFee:     s.feeFor(sub.Purpose),
		ValidityExpiry: expiry,
		IssuedByUserID: actor.UserID,
		IssuedByName:   actor.Name,
		Status:         models.StatusFor(expiry, now),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for attempt := 1; ; attempt++ {
		_, orSpan := s.tracer.Start(ctx, tracer.SpanORNumberGenerate)
		record.ORNumber, err = s.orGen.GenerateUnique(ctx, s.store.ORNumberExists)
		orSpan.End(err)
		if err != nil {
			return nil, err
		}

		insertErr := s.store.Insert(ctx, record)
		if insertErr == nil {
			break
		}
		if errors.Is(insertErr, sentinel.ErrAlreadyUsed) && attempt < insertRetries {
			s.logger.WarnContext(ctx, "O.R. number collided on insert, regenerating",
				"or_number", record.ORNumber,
				"attempt", attempt,
			)
			continue
		}
		if errors.Is(insertErr, sentinel.ErrAlreadyUsed) {
			err = dErrors.Wrap(insertErr, dErrors.CodeConflict, "could not assign a unique O.R. number")
			return nil, err
		}
		err = dErrors.Wrap(insertErr, dErrors.CodeInternal, "failed to save clearance record")
		return nil, err
	}

	span.SetAttributes(
		tracer.String(tracer.AttrClearanceID, record.ID.String()),
		tracer.String(tracer.AttrORNumber, record.ORNumber),
	)
	s.emitAudit(ctx, audit.ActionClearanceCreated, record, actor, "")
	s.incrementIssued(record.FormatCode)
	s.logger.InfoContext(ctx, "clearance issued",
		"clearance_id", record.ID,
		"or_number", record.ORNumber,
		"format", record.FormatCode,
	)
	return record, nil
}

// Update replaces every submission field of an existing record. The record's
// identity, O.R. number, issuance attribution, and creation time never change.
func (s *Service) Update(ctx context.Context, clearanceID id.ClearanceID, sub *models.Submission, actor Actor) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanClearanceUpdate,
		tracer.String(tracer.AttrClearanceID, clearanceID.String()),
	)
	var err error
	defer func() { span.End(err) }()

	cfg, err := format.Lookup(sub.FormatCode)
	if err != nil {
		return nil, err
	}
	if err = validate.Validate(sub, cfg); err != nil {
		s.incrementValidationFailure()
		return nil, err
	}

	existing, findErr := s.store.FindByID(ctx, clearanceID)
	if findErr != nil {
		err = s.translateLookupErr(findErr)
		return nil, err
	}

	now := s.now().UTC()
	dateIssued, parseErr := time.Parse(models.DateLayout, sub.DateIssued)
	if parseErr != nil {
		err = dErrors.Wrap(parseErr, dErrors.CodeInvalidInput, "date issued is not a valid date")
		return nil, err
	}
	expiry := document.ValidityExpiry(dateIssued, sub.ValidityPeriod)

	updated := &models.Record{
		ID:             existing.ID,
		ORNumber:       existing.ORNumber,
		Submission:     *sub,
		PurposeFee:     s.feeFor(sub.Purpose),
		ValidityExpiry: expiry,
		IssuedByUserID: existing.IssuedByUserID,
		IssuedByName:   existing.IssuedByName,
		UpdatedByName:  actor.Name,
		Status:         models.StatusFor(expiry, now),
		CreatedAt:      existing.CreatedAt,
		UpdatedAt:      now,
	}
	if updateErr := s.store.Update(ctx, updated); updateErr != nil {
		err = s.translateLookupErr(updateErr)
		return nil, err
	}

	s.emitAudit(ctx, audit.ActionClearanceUpdated, updated, actor, "")
	s.logger.InfoContext(ctx, "clearance updated",
		"clearance_id", updated.ID,
		"or_number", updated.ORNumber,
		"format", updated.FormatCode,
	)
	return updated, nil
}

// Delete removes a record. The actor must be identifiable: an unaudited delete
// would leave a hole in the trail, so an anonymous actor is rejected outright.
func (s *Service) Delete(ctx context.Context, clearanceID id.ClearanceID, actor Actor) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanClearanceDelete,
		tracer.String(tracer.AttrClearanceID, clearanceID.String()),
	)
	var err error
	defer func() { span.End(err) }()

	if actor.UserID.IsNil() || actor.Name == "" {
		err = dErrors.New(dErrors.CodeInvariantViolation, "delete requires an identified actor")
		return err
	}

	record, findErr := s.store.FindByID(ctx, clearanceID)
	if findErr != nil {
		err = s.translateLookupErr(findErr)
		return err
	}
	if deleteErr := s.store.Delete(ctx, clearanceID); deleteErr != nil {
		err = s.translateLookupErr(deleteErr)
		return err
	}

	s.emitAudit(ctx, audit.ActionClearanceDeleted, record, actor, "record removed by "+actor.Name)
	s.incrementDeleted()
	s.logger.InfoContext(ctx, "clearance deleted",
		"clearance_id", clearanceID,
		"or_number", record.ORNumber,
		"actor", actor.Name,
	)
	return nil
}

// Get retrieves a record with its lifecycle status derived as of now.
func (s *Service) Get(ctx context.Context, clearanceID id.ClearanceID) (*models.Record, error) {
	record, err := s.store.FindByID(ctx, clearanceID)
	if err != nil {
		return nil, s.translateLookupErr(err)
	}
	record.Status = models.StatusFor(record.ValidityExpiry, s.now().UTC())
	return record, nil
}

// List returns every record, newest first, with derived statuses.
func (s *Service) List(ctx context.Context) ([]*models.Record, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list clearance records")
	}
	now := s.now().UTC()
	for _, record := range records {
		record.Status = models.StatusFor(record.ValidityExpiry, now)
	}
	return records, nil
}

// ListIssuers returns the distinct users who have issued clearances.
func (s *Service) ListIssuers(ctx context.Context) ([]models.Issuer, error) {
	issuers, err := s.store.ListIssuers(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list issuers")
	}
	return issuers, nil
}

// Preview renders the on-screen certificate fragment for a draft submission.
// An unknown format degrades to format A so composition stays live, but the
// draft must otherwise validate against the resolved format.
func (s *Service) Preview(ctx context.Context, sub *models.Submission) (string, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanClearancePreview,
		tracer.String(tracer.AttrFormatCode, string(sub.FormatCode)),
	)
	var err error
	defer func() { span.End(err) }()

	cfg := format.LookupOrDefault(ctx, sub.FormatCode, s.logger)
	if err = validate.Validate(sub, cfg); err != nil {
		s.incrementValidationFailure()
		return "", err
	}

	start := s.now()
	doc, buildErr := s.assembler.Build(sub, cfg, previewORNumber)
	if buildErr != nil {
		err = buildErr
		return "", err
	}
	s.observeAssembly(start)
	return s.assembler.Preview(doc), nil
}

// DocumentHTML renders the printable certificate for a persisted record.
func (s *Service) DocumentHTML(ctx context.Context, clearanceID id.ClearanceID) (string, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanClearanceDocument,
		tracer.String(tracer.AttrClearanceID, clearanceID.String()),
	)
	var err error
	defer func() { span.End(err) }()

	record, findErr := s.store.FindByID(ctx, clearanceID)
	if findErr != nil {
		err = s.translateLookupErr(findErr)
		return "", err
	}
	cfg, cfgErr := format.Lookup(record.FormatCode)
	if cfgErr != nil {
		// A persisted record carries a validated format; anything else is
		// corrupted data, not caller error.
		err = dErrors.Wrap(cfgErr, dErrors.CodeInternal, "persisted record carries unknown format")
		return "", err
	}

	start := s.now()
	doc, buildErr := s.assembler.Build(&record.Submission, cfg, record.ORNumber)
	if buildErr != nil {
		err = buildErr
		return "", err
	}
	s.observeAssembly(start)
	span.SetAttributes(tracer.String(tracer.AttrORNumber, record.ORNumber))
	return s.assembler.Print(doc), nil
}

// feeFor resolves the fee server-side from the purpose schedule. Client-sent
// fee values are never trusted.
func (s *Service) feeFor(purpose string) int {
	return fees.Amount(purpose)
}

func (s *Service) translateLookupErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "clearance record not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "clearance store failure")
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, record *models.Record, actor Actor, detail string) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:      action,
		ClearanceID: record.ID,
		ORNumber:    record.ORNumber,
		ActorID:     actor.UserID,
		ActorName:   actor.Name,
		ActorDevice: actor.Device,
		RequestID:   actor.RequestID,
		Detail:      detail,
	})
}

func (s *Service) incrementIssued(code format.Code) {
	if s.metrics != nil {
		s.metrics.IncrementIssued(string(code))
	}
}

func (s *Service) incrementDeleted() {
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
}

func (s *Service) incrementValidationFailure() {
	if s.metrics != nil {
		s.metrics.IncrementValidationFailure()
	}
}

func (s *Service) observeAssembly(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveAssembly(start)
	}
}

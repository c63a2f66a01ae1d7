package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscalia/internal/audit"
	"fiscalia/internal/clearance/document"
	"fiscalia/internal/clearance/format"
	"fiscalia/internal/clearance/models"
	"fiscalia/internal/clearance/ornumber"
	"fiscalia/internal/clearance/store"
	"fiscalia/internal/platform/config"
	id "fiscalia/pkg/domain"
	dErrors "fiscalia/pkg/domain-errors"
	"fiscalia/pkg/testutil"
)

var fixedNow = time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.InMemory, *audit.InMemoryStore) {
	t.Helper()
	recordStore := store.NewInMemory()
	auditStore := audit.NewInMemoryStore()
	svc := NewService(
		recordStore,
		document.NewAssembler(config.Office{
			Republic:       "Republic of the Philippines",
			Department:     "Department of Justice",
			Name:           "Office of the City Prosecutor",
			Address:        "City Hall Complex",
			Signatory:      "Jose P. Santos",
			SignatoryTitle: "City Prosecutor",
		}),
		ornumber.New("OR").WithClock(func() time.Time { return fixedNow }),
		audit.NewPublisher(auditStore),
		WithClock(func() time.Time { return fixedNow }),
	)
	return svc, recordStore, auditStore
}

func testActor() Actor {
	return Actor{
		UserID:    id.UserID(uuid.New()),
		Name:      "Clerk One",
		Device:    "Chrome 120 / Windows",
		RequestID: "req-1",
	}
}

func submission(code format.Code) *models.Submission {
	sub := &models.Submission{
		FormatCode:     code,
		FirstName:      "Juan",
		MiddleName:     "Santos",
		LastName:       "Cruz",
		Age:            30,
		Address:        "123 Mabini St, Manila",
		Purpose:        "Local Employment",
		ReceiptNumber:  "RCPT-0001",
		DateIssued:     "2025-01-15",
		ValidityPeriod: models.ValiditySixMonths,
	}
	if code == format.CodeB || code == format.CodeD || code == format.CodeF {
		sub.CaseNumbers = "CC-2020-001"
		sub.CrimeDescription = "Theft"
		sub.LegalStatute = "RPC Art. 308"
		sub.DateOfCommission = "2020-03-01"
		sub.DateInformationFiled = "2020-04-01"
		sub.CourtBranch = "RTC Branch 12"
		sub.CaseStatus = "Pending"
		sub.CriminalCases = []models.CriminalCaseEntry{{
			CaseNumber:           "CC-2020-001",
			CrimeDescription:     "Theft",
			DateInformationFiled: "2020-04-01",
			Origin:               "Manila",
			Status:               "Pending",
		}}
	}
	return sub
}

func TestCreate_IssuesRecordWithORNumber(t *testing.T) {
	svc, _, auditStore := newTestService(t)
	ctx := context.Background()
	actor := testActor()

	record, err := svc.Create(ctx, submission(format.CodeA), actor)
	require.NoError(t, err)

	assert.False(t, record.ID.IsNil())
	assert.Regexp(t, `^OR-2025-[0-9A-Z]{10}$`, record.ORNumber)
	assert.Equal(t, 100, record.PurposeFee)
	assert.Equal(t, "2025-07-15", record.ValidityExpiry.Format(models.DateLayout))
	assert.Equal(t, models.StatusValid, record.Status)
	assert.Equal(t, actor.UserID, record.IssuedByUserID)
	assert.Equal(t, "Clerk One", record.IssuedByName)

	events, err := auditStore.ListByClearance(ctx, record.ID.String())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionClearanceCreated, events[0].Action)
	assert.Equal(t, record.ORNumber, events[0].ORNumber)
	assert.Equal(t, actor.UserID, events[0].ActorID)
}

func TestCreate_UnknownFormatHardRejected(t *testing.T) {
	svc, recordStore, _ := newTestService(t)
	sub := submission(format.CodeA)
	sub.FormatCode = "Z"

	_, err := svc.Create(context.Background(), sub, testActor())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownFormat))

	count, err := recordStore.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreate_ValidationFailureCarriesFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	sub := submission(format.CodeB)
	sub.CriminalCases = nil
	sub.CaseNumbers = ""

	_, err := svc.Create(context.Background(), sub, testActor())
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	fields := dErrors.FieldsOf(err)
	assert.Contains(t, fields, "criminal_cases")
	assert.Contains(t, fields, "case_numbers")
}

func TestCreate_ConcurrentCreatesGetDistinctORNumbers(t *testing.T) {
	svc, recordStore, _ := newTestService(t)
	ctx := context.Background()
	actor := testActor()

	const creates = 30
	result := testutil.RunConcurrent(creates, func(int) error {
		_, err := svc.Create(ctx, submission(format.CodeA), actor)
		return err
	})
	assert.Equal(t, int32(creates), result.Successes)

	records, err := recordStore.List(ctx)
	require.NoError(t, err)
	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		seen[record.ORNumber] = struct{}{}
	}
	assert.Len(t, seen, creates)
}

func TestUpdate_PreservesIdentityAndORNumber(t *testing.T) {
	svc, _, auditStore := newTestService(t)
	ctx := context.Background()
	creator := testActor()

	record, err := svc.Create(ctx, submission(format.CodeA), creator)
	require.NoError(t, err)

	editor := testActor()
	editor.Name = "Admin Two"
	edited := submission(format.CodeA)
	edited.Purpose = "Abroad Employment"
	edited.ValidityPeriod = models.ValidityOneYear

	updated, err := svc.Update(ctx, record.ID, edited, editor)
	require.NoError(t, err)

	assert.Equal(t, record.ID, updated.ID)
	assert.Equal(t, record.ORNumber, updated.ORNumber)
	assert.Equal(t, record.CreatedAt, updated.CreatedAt)
	assert.Equal(t, creator.UserID, updated.IssuedByUserID)
	assert.Equal(t, "Clerk One", updated.IssuedByName)
	assert.Equal(t, "Admin Two", updated.UpdatedByName)
	assert.Equal(t, 200, updated.PurposeFee)
	assert.Equal(t, "2026-01-15", updated.ValidityExpiry.Format(models.DateLayout))

	events, err := auditStore.ListByClearance(ctx, record.ID.String())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, audit.ActionClearanceUpdated, events[1].Action)
}

func TestUpdate_CanChangeFormat(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, submission(format.CodeA), testActor())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, record.ID, submission(format.CodeB), testActor())
	require.NoError(t, err)
	assert.Equal(t, format.CodeB, updated.FormatCode)
	require.Len(t, updated.CriminalCases, 1)
}

func TestUpdate_MissingRecord(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Update(context.Background(), id.ClearanceID(uuid.New()), submission(format.CodeA), testActor())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestDelete_RequiresIdentifiedActor(t *testing.T) {
	svc, recordStore, _ := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, submission(format.CodeA), testActor())
	require.NoError(t, err)

	err = svc.Delete(ctx, record.ID, Actor{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	// The record must survive an unaudited delete attempt.
	_, err = recordStore.FindByID(ctx, record.ID)
	assert.NoError(t, err)
}

func TestDelete_AuditsTheActor(t *testing.T) {
	svc, recordStore, auditStore := newTestService(t)
	ctx := context.Background()
	actor := testActor()

	record, err := svc.Create(ctx, submission(format.CodeA), actor)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, record.ID, actor))

	_, err = recordStore.FindByID(ctx, record.ID)
	require.Error(t, err)

	events, err := auditStore.ListByClearance(ctx, record.ID.String())
	require.NoError(t, err)
	require.Len(t, events, 2)
	deleted := events[1]
	assert.Equal(t, audit.ActionClearanceDeleted, deleted.Action)
	assert.Equal(t, actor.UserID, deleted.ActorID)
	assert.Equal(t, "Clerk One", deleted.ActorName)
	assert.Equal(t, record.ORNumber, deleted.ORNumber)
}

func TestDelete_MissingRecord(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.Delete(context.Background(), id.ClearanceID(uuid.New()), testActor())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestGet_DerivesStatusAtReadTime(t *testing.T) {
	svc, recordStore, _ := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, submission(format.CodeA), testActor())
	require.NoError(t, err)

	// Age the record past its validity window.
	record.ValidityExpiry = fixedNow.AddDate(0, 0, -1)
	require.NoError(t, recordStore.Update(ctx, record))

	fetched, err := svc.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, fetched.Status)
}

func TestPreview_DegradesUnknownFormatToA(t *testing.T) {
	svc, _, _ := newTestService(t)
	sub := submission(format.CodeA)
	sub.FormatCode = "Z"

	html, err := svc.Preview(context.Background(), sub)
	require.NoError(t, err)
	assert.Contains(t, html, "NO PENDING CRIMINAL CASE")
	assert.Contains(t, html, "certificate-preview")
	assert.Contains(t, html, previewORNumber)
}

func TestPreview_ValidatesAgainstResolvedFormat(t *testing.T) {
	svc, _, _ := newTestService(t)
	sub := submission(format.CodeB)
	sub.CriminalCases = nil

	_, err := svc.Preview(context.Background(), sub)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestDocumentHTML_RendersPersistedRecord(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, submission(format.CodeB), testActor())
	require.NoError(t, err)

	html, err := svc.DocumentHTML(ctx, record.ID)
	require.NoError(t, err)
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, record.ORNumber)
	assert.Contains(t, html, "CC-2020-001")
}

func TestDocumentHTML_MissingRecord(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.DocumentHTML(context.Background(), id.ClearanceID(uuid.New()))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestStats_Overview(t *testing.T) {
	svc, recordStore, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, submission(format.CodeA), testActor())
		require.NoError(t, err)
	}
	expired, err := svc.Create(ctx, submission(format.CodeB), testActor())
	require.NoError(t, err)
	expired.ValidityExpiry = fixedNow.AddDate(0, 0, -1)
	require.NoError(t, recordStore.Update(ctx, expired))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Valid)
	assert.Equal(t, 1, stats.Expired)
	assert.Equal(t, 3, stats.ByFormat[format.CodeA])
	assert.Equal(t, 1, stats.ByFormat[format.CodeB])
}

func TestListIssuers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i, name := range []string{"Zenaida Reyes", "Andres Lim"} {
		actor := testActor()
		actor.Name = name
		sub := submission(format.CodeA)
		sub.ReceiptNumber = fmt.Sprintf("RCPT-%04d", i)
		_, err := svc.Create(ctx, sub, actor)
		require.NoError(t, err)
	}

	issuers, err := svc.ListIssuers(ctx)
	require.NoError(t, err)
	require.Len(t, issuers, 2)
	assert.Equal(t, "Andres Lim", issuers[0].Name)
}

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "fiscalia/pkg/domain"
)

func TestEmit_StampsAndStores(t *testing.T) {
	store := NewInMemoryStore()
	fixed := time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
	publisher := NewPublisher(store, WithClock(func() time.Time { return fixed }))

	clearanceID := id.ClearanceID(uuid.New())
	publisher.Emit(context.Background(), Event{
		Action:      ActionClearanceCreated,
		ClearanceID: clearanceID,
		ORNumber:    "OR-2025-0000000001",
		ActorID:     id.UserID(uuid.New()),
		ActorName:   "Clerk One",
	})

	events, err := store.ListByClearance(context.Background(), clearanceID.String())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Equal(t, ActionClearanceCreated, events[0].Action)
	assert.Equal(t, "OR-2025-0000000001", events[0].ORNumber)
}

func TestEmit_PreservesExplicitTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store)

	clearanceID := id.ClearanceID(uuid.New())
	explicit := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	publisher.Emit(context.Background(), Event{
		Action:      ActionClearanceDeleted,
		ClearanceID: clearanceID,
		Timestamp:   explicit,
	})

	events, err := store.ListByClearance(context.Background(), clearanceID.String())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, explicit, events[0].Timestamp)
}

func TestEmit_NilStoreDoesNotPanic(t *testing.T) {
	publisher := NewPublisher(nil)
	assert.NotPanics(t, func() {
		publisher.Emit(context.Background(), Event{Action: ActionClearanceUpdated})
	})
}

func TestSummarizeUserAgent(t *testing.T) {
	chrome := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	summary := SummarizeUserAgent(chrome)
	assert.Contains(t, summary, "chrome 120")
	assert.Contains(t, summary, "desktop")
	// The raw header must never leak into the summary.
	assert.NotContains(t, summary, "Mozilla/5.0")
}

func TestSummarizeUserAgent_Empty(t *testing.T) {
	assert.Equal(t, "", SummarizeUserAgent(""))
}

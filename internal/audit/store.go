package audit

import "context"

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByClearance(ctx context.Context, clearanceID string) ([]Event, error)
}

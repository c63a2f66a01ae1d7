package audit

import (
	"time"

	id "fiscalia/pkg/domain"
)

// Event records one clearance lifecycle action with the actor who performed
// it. Deletes must always carry an identifiable actor; creates and updates
// are recorded with the same shape for a complete trail.
type Event struct {
	Timestamp   time.Time      `json:"timestamp"`
	Action      Action         `json:"action"`
	ClearanceID id.ClearanceID `json:"clearance_id"`
	ORNumber    string         `json:"or_number,omitempty"`
	ActorID     id.UserID      `json:"actor_id"`
	ActorName   string         `json:"actor_name"`
	ActorDevice string         `json:"actor_device,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
	Detail      string         `json:"detail,omitempty"`
}

// Action labels an audited clearance operation.
type Action string

const (
	ActionClearanceCreated Action = "clearance_created"
	ActionClearanceUpdated Action = "clearance_updated"
	ActionClearanceDeleted Action = "clearance_deleted"
)

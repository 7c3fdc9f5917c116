package events

import (
	"time"

	"github.com/dopaj/field-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketClosed        EventType = "ticket_closed"
	EventUserDeleted         EventType = "user_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Folio        string `json:"folio"`
	EngineerID   string `json:"engineer_id"`
	EngineerName string `json:"engineer_name"`
	ClientName   string `json:"client_name"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	EngineerID   string `json:"engineer_id"`
	EngineerName string `json:"engineer_name"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Folio         string `json:"folio"`
	EvidenceCount int    `json:"evidence_count"`
	Geotagged     bool   `json:"geotagged"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	DeletedUserID string `json:"deleted_user_id"`
}

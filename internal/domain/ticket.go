package domain

import "time"

// TicketStatus enumerates the lifecycle states of a service order.
// The wire values are the labels technicians see on printed reports.
type TicketStatus string

const (
	StatusPendingAttention TicketStatus = "Pendiente Atención"
	StatusPendingParts     TicketStatus = "Pendiente Refacción"
	StatusPendingUser      TicketStatus = "Pendiente Usuario"
	StatusClosed           TicketStatus = "Cerrado"
)

// AllStatuses returns every enumerated status in display order.
func AllStatuses() []TicketStatus {
	return []TicketStatus{
		StatusPendingAttention,
		StatusPendingParts,
		StatusPendingUser,
		StatusClosed,
	}
}

// Valid reports whether the status is one of the enumerated values.
func (s TicketStatus) Valid() bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// GeoPoint is an advisory closure geotag.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

// EvidencePhoto holds raw image bytes captured during execution.
type EvidencePhoto struct {
	FileName   string
	MimeType   string
	Data       []byte
	UploadedAt time.Time
}

// Ticket is the aggregate for a printer service order. Folio is the
// human-assigned order identifier, distinct from the internal ID.
type Ticket struct {
	ID          string
	Folio       string
	ReportFolio string

	SerialNumber      string
	Model             string
	ClientName        string
	ResponsiblePerson string
	Phone             string
	Description       string

	EngineerID   string
	EngineerName string
	AssignedAt   time.Time
	AttendedAt   *time.Time
	Status       TicketStatus

	// Captured by the engineer during execution.
	FailureLocated  string
	SolutionApplied string
	Observations    string

	ServiceSheetURL string
	EvidencePhotos  []EvidencePhoto
	ReportEvidence  *EvidencePhoto

	ClosureLocation *GeoPoint

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Closed reports whether the ticket has reached its terminal state.
func (t *Ticket) Closed() bool {
	return t.Status == StatusClosed
}

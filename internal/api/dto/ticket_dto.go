package dto

import (
	"time"

	"github.com/dopaj/field-service/internal/domain"
)

// CreateTicketRequest payload. Field names line up with the document
// extraction keys so an assist result can be posted back unchanged.
type CreateTicketRequest struct {
	Folio             string `json:"folio"`
	ReportFolio       string `json:"reportFolio"`
	SerialNumber      string `json:"serialNumber"`
	Model             string `json:"model"`
	ClientName        string `json:"clientName"`
	ResponsiblePerson string `json:"responsiblePerson"`
	Phone             string `json:"phone"`
	Description       string `json:"description"`
	EngineerID        string `json:"engineerId"`
	ServiceSheetURL   string `json:"serviceSheetUrl"`
}

// ProgressRequest payload for execution-screen edits.
type ProgressRequest struct {
	Status          domain.TicketStatus `json:"status"`
	FailureLocated  string              `json:"failureLocated"`
	SolutionApplied string              `json:"solutionApplied"`
	Observations    string              `json:"observations"`
}

// CloseRequest payload for the closure workflow.
type CloseRequest struct {
	FailureLocated  string `json:"failureLocated"`
	SolutionApplied string `json:"solutionApplied"`
	Observations    string `json:"observations"`
}

// AssignRequest payload.
type AssignRequest struct {
	EngineerID string `json:"engineerId"`
}

// PhotoResponse is evidence metadata; bytes go through the download
// endpoints.
type PhotoResponse struct {
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int       `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// GeoPointResponse is the advisory closure geotag.
type GeoPointResponse struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketSummary response for listings.
type TicketSummary struct {
	ID           string              `json:"id"`
	Folio        string              `json:"folio"`
	ClientName   string              `json:"client_name"`
	Model        string              `json:"model"`
	Description  string              `json:"description"`
	EngineerID   string              `json:"engineer_id"`
	EngineerName string              `json:"engineer_name"`
	Status       domain.TicketStatus `json:"status"`
	AssignedAt   time.Time           `json:"assigned_at"`
	AttendedAt   *time.Time          `json:"attended_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// TicketDetail response for the execution screen.
type TicketDetail struct {
	ID                string              `json:"id"`
	Folio             string              `json:"folio"`
	ReportFolio       string              `json:"report_folio"`
	SerialNumber      string              `json:"serial_number"`
	Model             string              `json:"model"`
	ClientName        string              `json:"client_name"`
	ResponsiblePerson string              `json:"responsible_person"`
	Phone             string              `json:"phone"`
	Description       string              `json:"description"`
	EngineerID        string              `json:"engineer_id"`
	EngineerName      string              `json:"engineer_name"`
	Status            domain.TicketStatus `json:"status"`
	AssignedAt        time.Time           `json:"assigned_at"`
	AttendedAt        *time.Time          `json:"attended_at,omitempty"`
	FailureLocated    string              `json:"failure_located"`
	SolutionApplied   string              `json:"solution_applied"`
	Observations      string              `json:"observations"`
	ServiceSheetURL   string              `json:"service_sheet_url"`
	EvidencePhotos    []PhotoResponse     `json:"evidence_photos"`
	ReportEvidence    *PhotoResponse      `json:"report_evidence,omitempty"`
	ClosureLocation   *GeoPointResponse   `json:"closure_location,omitempty"`
	Closed            bool                `json:"closed"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// DashboardStatsResponse mirrors the derived dashboard figures.
type DashboardStatsResponse struct {
	TotalTickets          int            `json:"total_tickets"`
	ClosedTickets         int            `json:"closed_tickets"`
	PendingTickets        int            `json:"pending_tickets"`
	ByStatus              map[string]int `json:"by_status"`
	ByEngineer            map[string]int `json:"by_engineer"`
	AvgAttentionTimeHours float64        `json:"avg_attention_time_hours"`
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dopaj/field-service/internal/domain"
	"github.com/dopaj/field-service/internal/events"
	"github.com/dopaj/field-service/internal/geo"
	"github.com/dopaj/field-service/internal/repository"
	apperrors "github.com/dopaj/field-service/pkg/util/errorutil"
)

// TicketService coordinates the service-order lifecycle: creation,
// role-scoped listing, execution and closure.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	locator    geo.Locator
	geoTimeout time.Duration
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Locator    geo.Locator
	GeoTimeout time.Duration
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		locator:    deps.Locator,
		geoTimeout: deps.GeoTimeout,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// TicketDraft describes ticket creation payload, typically pre-filled by
// the document extraction assist and corrected by hand.
type TicketDraft struct {
	Folio             string
	ReportFolio       string
	SerialNumber      string
	Model             string
	ClientName        string
	ResponsiblePerson string
	Phone             string
	Description       string
	EngineerID        string
	ServiceSheetURL   string
}

// ProgressInput carries execution-screen edits short of closure.
type ProgressInput struct {
	Status          domain.TicketStatus
	FailureLocated  string
	SolutionApplied string
	Observations    string
}

// ClosureInput carries the final execution report.
type ClosureInput struct {
	FailureLocated  string
	SolutionApplied string
	Observations    string
}

// Create registers a new service order. Folio and assigned engineer are
// mandatory; the first missing one names the validation error and
// nothing is appended to the store. Folios are unique.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, draft TicketDraft) (*domain.Ticket, error) {
	folio := strings.TrimSpace(draft.Folio)
	if folio == "" {
		return nil, apperrors.NewValidationError("folio", "folio is required")
	}
	if strings.TrimSpace(draft.EngineerID) == "" {
		return nil, apperrors.NewValidationError("engineerId", "assigned engineer is required")
	}

	if _, err := s.tickets.GetByFolio(ctx, folio); err == nil {
		return nil, apperrors.NewDuplicateFolio(folio)
	} else if !apperrors.IsNotFound(err) {
		return nil, apperrors.MapError(err)
	}

	engineer, err := s.users.GetByID(ctx, draft.EngineerID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("engineerId", "assigned engineer does not exist")
		}
		return nil, apperrors.MapError(err)
	}
	if engineer.Role != domain.RoleEngineer {
		return nil, apperrors.NewValidationError("engineerId", "assigned account is not an engineer")
	}

	now := time.Now()
	ticket := &domain.Ticket{
		ID:                uuid.NewString(),
		Folio:             folio,
		ReportFolio:       strings.TrimSpace(draft.ReportFolio),
		SerialNumber:      strings.TrimSpace(draft.SerialNumber),
		Model:             strings.TrimSpace(draft.Model),
		ClientName:        strings.TrimSpace(draft.ClientName),
		ResponsiblePerson: strings.TrimSpace(draft.ResponsiblePerson),
		Phone:             strings.TrimSpace(draft.Phone),
		Description:       strings.TrimSpace(draft.Description),
		EngineerID:        engineer.ID,
		// Display name denormalized at assignment time; later renames do
		// not rewrite existing tickets.
		EngineerName:    engineer.Name,
		AssignedAt:      now,
		Status:          domain.StatusPendingAttention,
		ServiceSheetURL: strings.TrimSpace(draft.ServiceSheetURL),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Folio:        ticket.Folio,
			EngineerID:   ticket.EngineerID,
			EngineerName: ticket.EngineerName,
			ClientName:   ticket.ClientName,
		},
	})
	return ticket, nil
}

// List returns tickets visible to the actor, optionally narrowed to one
// status. Engineers see only their own assignments; admins see all.
func (s *TicketService) List(ctx context.Context, actor *domain.User, status *domain.TicketStatus) ([]domain.Ticket, error) {
	if status != nil && !status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown status")
	}
	filter := repository.TicketFilter{Status: status}
	if actor.Role == domain.RoleEngineer {
		filter.EngineerID = &actor.ID
	}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get fetches one ticket, enforcing visibility.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !canView(actor, ticket) {
		return nil, apperrors.NewForbidden("ticket assigned to another engineer")
	}
	return ticket, nil
}

// UpdateProgress saves execution-screen edits. The status selector moves
// freely among the pending statuses; CLOSED is only reachable through
// Close, so asking for it here hits the same evidence guard.
func (s *TicketService) UpdateProgress(ctx context.Context, actor *domain.User, id string, input ProgressInput) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if ticket.Closed() {
		return nil, apperrors.NewAlreadyClosed(ticket.Folio)
	}
	if input.Status == domain.StatusClosed {
		return nil, apperrors.NewMissingRequiredEvidence()
	}
	if input.Status != "" && !input.Status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown status")
	}

	oldStatus := ticket.Status
	if input.Status != "" {
		ticket.Status = input.Status
	}
	ticket.FailureLocated = input.FailureLocated
	ticket.SolutionApplied = input.SolutionApplied
	ticket.Observations = input.Observations
	ticket.UpdatedAt = time.Now()

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.Status != oldStatus {
		s.publish(ctx, actor, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Payload:  events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: ticket.Status},
		})
	}
	return ticket, nil
}

// AttachEvidence appends one evidence photo.
func (s *TicketService) AttachEvidence(ctx context.Context, actor *domain.User, id string, photo domain.EvidencePhoto) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if ticket.Closed() {
		return nil, apperrors.NewAlreadyClosed(ticket.Folio)
	}
	if len(photo.Data) == 0 {
		return nil, apperrors.NewValidationError("photo", "photo bytes are required")
	}
	photo.UploadedAt = time.Now()
	ticket.EvidencePhotos = append(ticket.EvidencePhotos, photo)
	ticket.UpdatedAt = time.Now()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// AttachReportEvidence sets the single mandatory signed-report photo.
// Re-uploading replaces it; the last resolved upload wins.
func (s *TicketService) AttachReportEvidence(ctx context.Context, actor *domain.User, id string, photo domain.EvidencePhoto) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if ticket.Closed() {
		return nil, apperrors.NewAlreadyClosed(ticket.Folio)
	}
	if len(photo.Data) == 0 {
		return nil, apperrors.NewValidationError("reportEvidence", "photo bytes are required")
	}
	photo.UploadedAt = time.Now()
	ticket.ReportEvidence = &photo
	ticket.UpdatedAt = time.Now()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// Close finalizes the execution workflow. The signed-report evidence is
// mandatory; without it the status stays untouched. Geolocation is one
// best-effort attempt under a fixed timeout and never blocks closure.
// After closing, the ticket is read-only in this workflow.
func (s *TicketService) Close(ctx context.Context, actor *domain.User, id string, input ClosureInput) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if ticket.Closed() {
		return nil, apperrors.NewAlreadyClosed(ticket.Folio)
	}
	if ticket.ReportEvidence == nil {
		return nil, apperrors.NewMissingRequiredEvidence()
	}

	now := time.Now()
	oldStatus := ticket.Status
	ticket.Status = domain.StatusClosed
	ticket.AttendedAt = &now
	ticket.FailureLocated = input.FailureLocated
	ticket.SolutionApplied = input.SolutionApplied
	ticket.Observations = input.Observations
	ticket.ClosureLocation = s.locate(ctx)
	ticket.UpdatedAt = now

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload:  events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: ticket.Status},
	})
	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: ticket.ID,
		Payload: events.TicketClosedPayload{
			Folio:         ticket.Folio,
			EvidenceCount: len(ticket.EvidencePhotos),
			Geotagged:     ticket.ClosureLocation != nil,
		},
	})
	return ticket, nil
}

// Reassign moves a ticket to another engineer and refreshes the
// denormalized display name.
func (s *TicketService) Reassign(ctx context.Context, actor *domain.User, id, engineerID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.Closed() {
		return nil, apperrors.NewAlreadyClosed(ticket.Folio)
	}
	engineer, err := s.users.GetByID(ctx, engineerID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("engineerId", "assigned engineer does not exist")
		}
		return nil, apperrors.MapError(err)
	}
	if engineer.Role != domain.RoleEngineer {
		return nil, apperrors.NewValidationError("engineerId", "assigned account is not an engineer")
	}

	ticket.EngineerID = engineer.ID
	ticket.EngineerName = engineer.Name
	ticket.AssignedAt = time.Now()
	ticket.UpdatedAt = time.Now()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload:  events.TicketAssignedPayload{EngineerID: engineer.ID, EngineerName: engineer.Name},
	})
	return ticket, nil
}

// locate performs the single advisory geolocation attempt.
func (s *TicketService) locate(ctx context.Context) *domain.GeoPoint {
	if s.locator == nil {
		return nil
	}
	timeout := s.geoTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	geoCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	point, err := s.locator.Locate(geoCtx)
	if err != nil {
		s.logger.Warn("closure geolocation unavailable", zap.Error(err))
		return nil
	}
	return point
}

func canView(actor *domain.User, ticket *domain.Ticket) bool {
	if actor.Role == domain.RoleAdmin {
		return true
	}
	return ticket.EngineerID == actor.ID
}

func (s *TicketService) publish(ctx context.Context, actor *domain.User, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	if actor != nil {
		event.Actor = events.Actor{UserID: actor.ID, Role: actor.Role}
	}
	_ = s.dispatcher.Publish(ctx, event)
}

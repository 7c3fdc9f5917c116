package service

import (
	"context"

	"github.com/dopaj/field-service/internal/domain"
	"github.com/dopaj/field-service/internal/repository"
	apperrors "github.com/dopaj/field-service/pkg/util/errorutil"
)

// StatsService derives dashboard figures. Nothing is cached: the lists
// are small and recomputing on every read is the simplest correct
// design.
type StatsService struct {
	tickets repository.TicketRepository
}

// NewStatsService constructs the service.
func NewStatsService(tickets repository.TicketRepository) *StatsService {
	return &StatsService{tickets: tickets}
}

// Dashboard aggregates over the tickets visible to the actor.
func (s *StatsService) Dashboard(ctx context.Context, actor *domain.User) (*domain.DashboardStats, error) {
	filter := repository.TicketFilter{}
	if actor.Role == domain.RoleEngineer {
		filter.EngineerID = &actor.ID
	}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return Aggregate(tickets), nil
}

// Aggregate is a pure function of a ticket list. Every enumerated status
// appears in ByStatus, zero-valued when absent from the list.
func Aggregate(tickets []domain.Ticket) *domain.DashboardStats {
	stats := &domain.DashboardStats{
		TotalTickets: len(tickets),
		ByStatus:     make(map[domain.TicketStatus]int, len(domain.AllStatuses())),
		ByEngineer:   make(map[string]int),
	}
	for _, status := range domain.AllStatuses() {
		stats.ByStatus[status] = 0
	}

	var attentionHours float64
	var attended int
	for i := range tickets {
		t := &tickets[i]
		stats.ByStatus[t.Status]++
		stats.ByEngineer[t.EngineerName]++
		if t.Closed() {
			stats.ClosedTickets++
		}
		if t.AttendedAt != nil {
			attentionHours += t.AttendedAt.Sub(t.AssignedAt).Hours()
			attended++
		}
	}
	stats.PendingTickets = stats.TotalTickets - stats.ClosedTickets
	if attended > 0 {
		stats.AvgAttentionTimeHours = attentionHours / float64(attended)
	}
	return stats
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dopaj/field-service/internal/domain"
	"github.com/dopaj/field-service/internal/repository"
)

func TestAggregateEmptyList(t *testing.T) {
	stats := Aggregate(nil)

	assert.Equal(t, 0, stats.TotalTickets)
	assert.Equal(t, 0, stats.ClosedTickets)
	assert.Equal(t, 0, stats.PendingTickets)
	assert.Zero(t, stats.AvgAttentionTimeHours)
	for _, status := range domain.AllStatuses() {
		count, ok := stats.ByStatus[status]
		assert.True(t, ok, "status %q missing from breakdown", status)
		assert.Equal(t, 0, count)
	}
}

func TestAggregateCountsByStatusAndEngineer(t *testing.T) {
	tickets := []domain.Ticket{
		{Status: domain.StatusPendingAttention, EngineerName: "Juan Pérez"},
		{Status: domain.StatusClosed, EngineerName: "Juan Pérez"},
		{Status: domain.StatusClosed, EngineerName: "María Gómez"},
	}

	stats := Aggregate(tickets)

	assert.Equal(t, 3, stats.TotalTickets)
	assert.Equal(t, 2, stats.ClosedTickets)
	assert.Equal(t, 1, stats.PendingTickets)
	assert.Equal(t, 1, stats.ByStatus[domain.StatusPendingAttention])
	assert.Equal(t, 2, stats.ByStatus[domain.StatusClosed])
	assert.Equal(t, 0, stats.ByStatus[domain.StatusPendingParts])
	assert.Equal(t, 2, stats.ByEngineer["Juan Pérez"])
	assert.Equal(t, 1, stats.ByEngineer["María Gómez"])
}

func TestAggregateAverageAttentionHours(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	after24 := base.Add(24 * time.Hour)
	after48 := base.Add(48 * time.Hour)
	tickets := []domain.Ticket{
		{Status: domain.StatusClosed, AssignedAt: base, AttendedAt: &after24},
		{Status: domain.StatusClosed, AssignedAt: base, AttendedAt: &after48},
		{Status: domain.StatusPendingAttention, AssignedAt: base},
	}

	stats := Aggregate(tickets)

	assert.InDelta(t, 36.0, stats.AvgAttentionTimeHours, 0.001)
}

func TestDashboardScopesEngineerToOwnTickets(t *testing.T) {
	tickets := repository.NewMemoryTicketRepository()
	engineer := &domain.User{ID: uuid.NewString(), Role: domain.RoleEngineer, Name: "Juan Pérez"}
	admin := &domain.User{ID: uuid.NewString(), Role: domain.RoleAdmin}

	require.NoError(t, tickets.Create(context.Background(), &domain.Ticket{
		ID: uuid.NewString(), Folio: "FL-1", EngineerID: engineer.ID, EngineerName: engineer.Name, Status: domain.StatusPendingAttention,
	}))
	require.NoError(t, tickets.Create(context.Background(), &domain.Ticket{
		ID: uuid.NewString(), Folio: "FL-2", EngineerID: uuid.NewString(), EngineerName: "María Gómez", Status: domain.StatusClosed,
	}))

	svc := NewStatsService(tickets)

	mine, err := svc.Dashboard(context.Background(), engineer)
	require.NoError(t, err)
	assert.Equal(t, 1, mine.TotalTickets)
	assert.Equal(t, 0, mine.ClosedTickets)

	all, err := svc.Dashboard(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalTickets)
	assert.Equal(t, 1, all.ClosedTickets)
}

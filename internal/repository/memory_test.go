package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dopaj/field-service/internal/domain"
	apperrors "github.com/dopaj/field-service/pkg/util/errorutil"
)

func TestTicketFilterMatches(t *testing.T) {
	engineerID := uuid.NewString()
	status := domain.StatusPendingParts
	ticket := &domain.Ticket{EngineerID: engineerID, Status: status}

	assert.True(t, TicketFilter{}.Matches(ticket))
	assert.True(t, TicketFilter{EngineerID: &engineerID}.Matches(ticket))
	assert.True(t, TicketFilter{Status: &status}.Matches(ticket))
	assert.True(t, TicketFilter{EngineerID: &engineerID, Status: &status}.Matches(ticket))

	otherID := uuid.NewString()
	closed := domain.StatusClosed
	assert.False(t, TicketFilter{EngineerID: &otherID}.Matches(ticket))
	assert.False(t, TicketFilter{Status: &closed}.Matches(ticket))
	assert.False(t, TicketFilter{EngineerID: &engineerID, Status: &closed}.Matches(ticket))
}

func TestMemoryTicketListNewestFirst(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	base := time.Now()

	for i, folio := range []string{"FL-1", "FL-2", "FL-3"} {
		require.NoError(t, repo.Create(ctx, &domain.Ticket{
			ID:        uuid.NewString(),
			Folio:     folio,
			Status:    domain.StatusPendingAttention,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	listed, err := repo.List(ctx, TicketFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "FL-3", listed[0].Folio)
	assert.Equal(t, "FL-1", listed[2].Folio)
}

func TestMemoryTicketGetByFolio(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	ticket := &domain.Ticket{ID: uuid.NewString(), Folio: "FL040283", Status: domain.StatusPendingAttention}
	require.NoError(t, repo.Create(ctx, ticket))

	found, err := repo.GetByFolio(ctx, "FL040283")
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, found.ID)

	_, err = repo.GetByFolio(ctx, "FL000000")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemoryTicketUpdateUnknownID(t *testing.T) {
	repo := NewMemoryTicketRepository()

	err := repo.Update(context.Background(), &domain.Ticket{ID: uuid.NewString()})

	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemoryTicketStoreIsolation(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	ticket := &domain.Ticket{ID: uuid.NewString(), Folio: "FL-1", Status: domain.StatusPendingAttention}
	require.NoError(t, repo.Create(ctx, ticket))

	// Mutating the caller's copy must not leak into the store.
	ticket.Status = domain.StatusClosed

	stored, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingAttention, stored.Status)
}

func TestMemoryUserListSortedByName(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	for _, name := range []string{"maría Gómez", "Admin Principal", "Juan Pérez"} {
		require.NoError(t, repo.Create(ctx, &domain.User{ID: uuid.NewString(), Name: name, Email: name + "@dopaj.com"}))
	}

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "Admin Principal", listed[0].Name)
	assert.Equal(t, "Juan Pérez", listed[1].Name)
	assert.Equal(t, "maría Gómez", listed[2].Name)
}

func TestMemoryUserGetByEmail(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	user := &domain.User{ID: uuid.NewString(), Name: "Juan Pérez", Email: "juan.perez@dopaj.com"}
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.GetByEmail(ctx, "juan.perez@dopaj.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.GetByEmail(ctx, "nadie@dopaj.com")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemoryUserDeleteAndCount(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	user := &domain.User{ID: uuid.NewString(), Name: "Juan Pérez", Email: "juan.perez@dopaj.com"}
	require.NoError(t, repo.Create(ctx, user))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.Delete(ctx, user.ID))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	assert.True(t, apperrors.IsNotFound(repo.Delete(ctx, user.ID)))
}

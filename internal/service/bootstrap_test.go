package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dopaj/field-service/internal/config"
	"github.com/dopaj/field-service/internal/domain"
	"github.com/dopaj/field-service/internal/repository"
)

func newSeeder() (*Seeder, repository.UserRepository, repository.TicketRepository) {
	users := repository.NewMemoryUserRepository()
	tickets := repository.NewMemoryTicketRepository()
	cfg := config.AuthConfig{SeedPassword: "123", BcryptCost: bcrypt.MinCost}
	return NewSeeder(users, tickets, cfg, zap.NewNop()), users, tickets
}

func TestSeedPopulatesEmptyStore(t *testing.T) {
	seeder, users, tickets := newSeeder()
	ctx := context.Background()

	require.NoError(t, seeder.Seed(ctx))

	admin, err := users.GetByEmail(ctx, "admin@dopaj.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.True(t, admin.Protected)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("123")))

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	sample, err := tickets.GetByFolio(ctx, "FL040283")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingAttention, sample.Status)
	assert.NotEmpty(t, sample.EngineerID)
	assert.Equal(t, "Juan Pérez", sample.EngineerName)
}

func TestSeedIsIdempotent(t *testing.T) {
	seeder, users, _ := newSeeder()
	ctx := context.Background()

	require.NoError(t, seeder.Seed(ctx))
	require.NoError(t, seeder.Seed(ctx))

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

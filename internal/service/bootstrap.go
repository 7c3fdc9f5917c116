package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dopaj/field-service/internal/auth"
	"github.com/dopaj/field-service/internal/config"
	"github.com/dopaj/field-service/internal/domain"
	"github.com/dopaj/field-service/internal/repository"
)

// Seeder populates an empty directory with the primary admin and sample
// engineers, plus one sample ticket, so a fresh in-memory deployment is
// immediately usable.
type Seeder struct {
	users   repository.UserRepository
	tickets repository.TicketRepository
	cfg     config.AuthConfig
	logger  *zap.Logger
}

// NewSeeder constructs the seeder.
func NewSeeder(users repository.UserRepository, tickets repository.TicketRepository, cfg config.AuthConfig, logger *zap.Logger) *Seeder {
	return &Seeder{users: users, tickets: tickets, cfg: cfg, logger: logger}
}

// Seed runs once at startup and is a no-op when accounts already exist.
func (s *Seeder) Seed(ctx context.Context) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(s.cfg.SeedPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := &domain.User{
		ID:           uuid.NewString(),
		Email:        "admin@dopaj.com",
		Name:         "Admin Principal",
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
		Protected:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	engineers := []*domain.User{
		{
			ID:           uuid.NewString(),
			Email:        "juan.perez@dopaj.com",
			Name:         "Juan Pérez",
			Role:         domain.RoleEngineer,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           uuid.NewString(),
			Email:        "maria.gomez@dopaj.com",
			Name:         "María Gómez",
			Role:         domain.RoleEngineer,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}
	for _, engineer := range engineers {
		if err := s.users.Create(ctx, engineer); err != nil {
			return err
		}
	}

	sample := &domain.Ticket{
		ID:                uuid.NewString(),
		Folio:             "FL040283",
		ReportFolio:       "FL040283",
		SerialNumber:      "33005460",
		Model:             "MXB376WH",
		ClientName:        "CFE2024 - Servicios de Atención a Clientes",
		ResponsiblePerson: "Cruz Gabriela Naranjo Román",
		Phone:             "3143310017",
		Description:       "Falla en tarjeta de red. 3143310017 / Ext. 21217",
		EngineerID:        engineers[0].ID,
		EngineerName:      engineers[0].Name,
		AssignedAt:        now.Add(-24 * time.Hour),
		Status:            domain.StatusPendingAttention,
		ServiceSheetURL:   "https://www.w3.org/WAI/ER/tests/xhtml/testfiles/resources/pdf/dummy.pdf",
		CreatedAt:         now.Add(-24 * time.Hour),
		UpdatedAt:         now.Add(-24 * time.Hour),
	}
	if err := s.tickets.Create(ctx, sample); err != nil {
		return err
	}

	s.logger.Info("seeded directory and sample ticket",
		zap.Int("accounts", 1+len(engineers)),
		zap.String("admin", admin.Email))
	return nil
}

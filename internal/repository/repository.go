package repository

import (
	"context"

	"github.com/dopaj/field-service/internal/domain"
)

// TicketFilter narrows listings. Both predicates compose with AND: a nil
// field means "no restriction". Role visibility is expressed by setting
// EngineerID for engineers and leaving it nil for admins.
type TicketFilter struct {
	EngineerID *string
	Status     *domain.TicketStatus
}

// Matches reports whether the ticket satisfies every set predicate.
func (f TicketFilter) Matches(t *domain.Ticket) bool {
	if f.EngineerID != nil && t.EngineerID != *f.EngineerID {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	return true
}

// TicketRepository encapsulates ticket persistence. The store exclusively
// owns ticket records; updates replace the record in full.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByFolio(ctx context.Context, folio string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

// UserRepository encapsulates directory persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dopaj/field-service/internal/auth"
	"github.com/dopaj/field-service/internal/domain"
	"github.com/dopaj/field-service/internal/events"
	"github.com/dopaj/field-service/internal/repository"
	apperrors "github.com/dopaj/field-service/pkg/util/errorutil"
)

// DirectoryService manages the account directory. Admin-only surface.
type DirectoryService struct {
	users      repository.UserRepository
	bcryptCost int
	dispatcher events.Dispatcher
}

// NewDirectoryService constructs the service.
func NewDirectoryService(users repository.UserRepository, bcryptCost int, dispatcher events.Dispatcher) *DirectoryService {
	return &DirectoryService{users: users, bcryptCost: bcryptCost, dispatcher: dispatcher}
}

// UserInput carries directory mutations. Password is plaintext on input
// and never stored as such.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// Add creates a directory account. Name, identifier and secret are all
// required; the first missing one names the validation error. Login
// identifiers are unique.
func (s *DirectoryService) Add(ctx context.Context, input UserInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	if email == "" {
		return nil, apperrors.NewValidationError("email", "login identifier is required")
	}
	if input.Password == "" {
		return nil, apperrors.NewValidationError("password", "password is required")
	}

	role := input.Role
	if role == "" {
		role = domain.RoleEngineer
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("role", "unknown role")
	}

	if err := s.ensureUniqueIdentifier(ctx, email, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Update replaces the account matching id. An empty password keeps the
// stored hash. The primary admin keeps its role so the directory can
// never lose its last admin.
func (s *DirectoryService) Update(ctx context.Context, id string, input UserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	if email == "" {
		return nil, apperrors.NewValidationError("email", "login identifier is required")
	}
	if err := s.ensureUniqueIdentifier(ctx, email, id); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = user.Role
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("role", "unknown role")
	}
	if user.Protected && role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("the primary admin role cannot be changed")
	}

	user.Name = name
	user.Email = email
	user.Role = role
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Delete removes an account by id. The seeded primary admin is protected
// to avoid total lockout.
func (s *DirectoryService) Delete(ctx context.Context, actor *domain.User, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if user.Protected {
		return apperrors.NewProtectedAccount()
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, actor, events.Event{
		Type:    events.EventUserDeleted,
		Payload: events.UserDeletedPayload{DeletedUserID: id},
	})
	return nil
}

// List returns every directory account.
func (s *DirectoryService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Engineers returns only engineer accounts, for the assignment picker.
func (s *DirectoryService) Engineers(ctx context.Context) ([]domain.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	engineers := make([]domain.User, 0, len(users))
	for _, user := range users {
		if user.Role == domain.RoleEngineer {
			engineers = append(engineers, user)
		}
	}
	return engineers, nil
}

func (s *DirectoryService) ensureUniqueIdentifier(ctx context.Context, email, selfID string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return apperrors.MapError(err)
	}
	if existing.ID == selfID {
		return nil
	}
	return apperrors.NewDuplicateIdentifier(email)
}

func (s *DirectoryService) publish(ctx context.Context, actor *domain.User, event events.Event) {
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

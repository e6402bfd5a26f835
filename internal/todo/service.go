package todo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/simpletodo/api/internal/logging"
	"github.com/simpletodo/api/internal/user"
)

// ErrNotOwner is returned when the todo exists but belongs to another user.
var ErrNotOwner = errors.New("you don't own this resource")

// Service applies the ownership discipline over todo CRUD: every id-based
// operation resolves the resource first and checks the owner second, so a
// probe on a nonexistent id reads "not found" and a probe on someone
// else's id reads "forbidden" — never the other way around.
type Service struct {
	repo   Repository
	logger *logging.Logger
}

func NewService(repo Repository, logger *logging.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create stores a new, not-done todo owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, content string) (*Todo, error) {
	created, err := s.repo.Create(ctx, ownerID, content)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return created, nil
}

// Get returns the todo if it exists and the caller owns it.
func (s *Service) Get(ctx context.Context, caller *user.User, id uuid.UUID) (*Todo, error) {
	return s.findOwned(ctx, caller, id)
}

// List returns the caller's todos. The query is pre-filtered by owner, so
// no per-item ownership check is needed.
func (s *Service) List(ctx context.Context, caller *user.User) ([]*Todo, error) {
	todos, err := s.repo.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// Update applies the patch to an owned todo and persists it. The handler
// guarantees the patch has at least one field.
func (s *Service) Update(ctx context.Context, caller *user.User, id uuid.UUID, patch UpdatePatch) (*Todo, error) {
	existing, err := s.findOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if patch.Content != nil {
		existing.Content = *patch.Content
	}
	if patch.IsDone != nil {
		existing.IsDone = *patch.IsDone
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return updated, nil
}

// Delete removes an owned todo.
func (s *Service) Delete(ctx context.Context, caller *user.User, id uuid.UUID) error {
	if _, err := s.findOwned(ctx, caller, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	return nil
}

// findOwned resolves the todo and asserts ownership, in that order.
// Existence is checked strictly before ownership.
func (s *Service) findOwned(ctx context.Context, caller *user.User, id uuid.UUID) (*Todo, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	if found.UserID != caller.ID {
		return nil, ErrNotOwner
	}

	return found, nil
}

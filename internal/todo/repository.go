package todo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/simpletodo/api/internal/database"
)

// ErrNotFound is returned when no todo exists with the requested id.
var ErrNotFound = errors.New("resource not found")

// Repository handles todo persistence. Timestamps always reflect the
// persistence event, never client-supplied values.
type Repository interface {
	Create(ctx context.Context, ownerID uuid.UUID, content string) (*Todo, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Todo, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Todo, error)
	Update(ctx context.Context, t *Todo) (*Todo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, ownerID uuid.UUID, content string) (*Todo, error) {
	now := time.Now()
	dbTodo := &database.Todo{
		Content:   content,
		IsDone:    false,
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.NewInsert().
		Model(dbTodo).
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return mapDBTodoToModel(dbTodo), nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Todo, error) {
	dbTodo := new(database.Todo)
	err := r.db.NewSelect().
		Model(dbTodo).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get todo by id: %w", err)
	}

	return mapDBTodoToModel(dbTodo), nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Todo, error) {
	var dbTodos []*database.Todo
	err := r.db.NewSelect().
		Model(&dbTodos).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	todos := make([]*Todo, 0, len(dbTodos))
	for _, dbTodo := range dbTodos {
		todos = append(todos, mapDBTodoToModel(dbTodo))
	}

	return todos, nil
}

// Update writes content and is_done; user_id and created_at are never
// touched, updated_at is stamped with the write.
func (r *postgresRepository) Update(ctx context.Context, t *Todo) (*Todo, error) {
	dbTodo := &database.Todo{
		ID:        t.ID,
		Content:   t.Content,
		IsDone:    t.IsDone,
		UserID:    t.UserID,
		CreatedAt: t.CreatedAt,
		UpdatedAt: time.Now(),
	}

	result, err := r.db.NewUpdate().
		Model(dbTodo).
		Column("content", "is_done", "updated_at").
		WherePK().
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapDBTodoToModel(dbTodo), nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Todo)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func mapDBTodoToModel(dbt *database.Todo) *Todo {
	return &Todo{
		ID:        dbt.ID,
		Content:   dbt.Content,
		IsDone:    dbt.IsDone,
		UserID:    dbt.UserID,
		CreatedAt: dbt.CreatedAt,
		UpdatedAt: dbt.UpdatedAt,
	}
}

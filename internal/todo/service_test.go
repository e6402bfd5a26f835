package todo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simpletodo/api/internal/logging"
	"github.com/simpletodo/api/internal/user"
)

// memRepo is an in-memory Repository with the same timestamp semantics as
// the Postgres implementation.
type memRepo struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*Todo
	clock func() time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		byID:  make(map[uuid.UUID]*Todo),
		clock: time.Now,
	}
}

func (r *memRepo) Create(ctx context.Context, ownerID uuid.UUID, content string) (*Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	t := &Todo{
		ID:        uuid.New(),
		Content:   content,
		IsDone:    false,
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byID[t.ID] = t
	copied := *t
	return &copied, nil
}

func (r *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *memRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var todos []*Todo
	for _, t := range r.byID {
		if t.UserID == userID {
			copied := *t
			todos = append(todos, &copied)
		}
	}
	return todos, nil
}

func (r *memRepo) Update(ctx context.Context, t *Todo) (*Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[t.ID]
	if !ok {
		return nil, ErrNotFound
	}
	existing.Content = t.Content
	existing.IsDone = t.IsDone
	existing.UpdatedAt = r.clock()
	copied := *existing
	return &copied, nil
}

func (r *memRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func newTestUser(name string) *user.User {
	return &user.User{ID: uuid.New(), UserName: name}
}

func newTestSetup() (*Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, logging.NewLogger(true)), repo
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	svc, _ := newTestSetup()
	owner := newTestUser("alice1")

	created, err := svc.Create(context.Background(), owner.ID, "buy milk")
	require.NoError(t, err)

	assert.Equal(t, "buy milk", created.Content)
	assert.False(t, created.IsDone)
	assert.Equal(t, owner.ID, created.UserID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
}

func TestService_Get_NotFoundBeforeNotOwner(t *testing.T) {
	t.Parallel()

	svc, _ := newTestSetup()
	owner := newTestUser("alice1")
	other := newTestUser("bobby1")

	created, err := svc.Create(context.Background(), owner.ID, "buy milk")
	require.NoError(t, err)

	// A nonexistent id reads "not found" for any caller, owner included.
	_, err = svc.Get(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(context.Background(), other, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	// Someone else's existing id reads "not owner", never "not found".
	_, err = svc.Get(context.Background(), other, created.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	got, err := svc.Get(context.Background(), owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestService_List_OnlyOwned(t *testing.T) {
	t.Parallel()

	svc, _ := newTestSetup()
	alice := newTestUser("alice1")
	bob := newTestUser("bobby1")

	_, err := svc.Create(context.Background(), alice.ID, "one")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), alice.ID, "two")
	require.NoError(t, err)

	aliceTodos, err := svc.List(context.Background(), alice)
	require.NoError(t, err)
	assert.Len(t, aliceTodos, 2)

	bobTodos, err := svc.List(context.Background(), bob)
	require.NoError(t, err)
	assert.Empty(t, bobTodos)
}

func TestService_Update(t *testing.T) {
	t.Parallel()

	svc, repo := newTestSetup()
	owner := newTestUser("alice1")

	created, err := svc.Create(context.Background(), owner.ID, "buy milk")
	require.NoError(t, err)

	// Advance the repo clock so the update timestamp is observable.
	base := created.CreatedAt
	repo.clock = func() time.Time { return base.Add(time.Minute) }

	isDone := true
	updated, err := svc.Update(context.Background(), owner, created.ID, UpdatePatch{IsDone: &isDone})
	require.NoError(t, err)

	assert.True(t, updated.IsDone)
	assert.Equal(t, "buy milk", updated.Content, "unset field stays unchanged")
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	content := "buy bread"
	updated, err = svc.Update(context.Background(), owner, created.ID, UpdatePatch{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "buy bread", updated.Content)
	assert.True(t, updated.IsDone, "unset field stays unchanged")
}

func TestService_Update_OwnershipProtocol(t *testing.T) {
	t.Parallel()

	svc, _ := newTestSetup()
	owner := newTestUser("alice1")
	other := newTestUser("bobby1")

	created, err := svc.Create(context.Background(), owner.ID, "buy milk")
	require.NoError(t, err)

	isDone := true
	_, err = svc.Update(context.Background(), other, created.ID, UpdatePatch{IsDone: &isDone})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.Update(context.Background(), other, uuid.New(), UpdatePatch{IsDone: &isDone})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	svc, _ := newTestSetup()
	owner := newTestUser("alice1")
	other := newTestUser("bobby1")

	created, err := svc.Create(context.Background(), owner.ID, "buy milk")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), other, created.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	err = svc.Delete(context.Background(), owner, created.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), owner, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(context.Background(), owner, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

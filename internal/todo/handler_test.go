package todo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simpletodo/api/internal/auth"
	"github.com/simpletodo/api/internal/logging"
	"github.com/simpletodo/api/internal/user"
)

// newTestRouter mounts the handler behind a middleware that injects the
// given caller, standing in for the auth middleware.
func newTestRouter(svc *Service, caller *user.User) http.Handler {
	h := NewHandler(svc, logging.NewLogger(true))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), auth.UserContextKey, caller)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/api/todos", h.Create)
	r.Get("/api/todos", h.List)
	r.Get("/api/todos/{id}", h.Get)
	r.Patch("/api/todos/{id}", h.Update)
	r.Delete("/api/todos/{id}", h.Delete)
	return r
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHandler_Create(t *testing.T) {
	t.Parallel()

	svc, _ := newTestSetup()
	owner := newTestUser("alice1")
	router := newTestRouter(svc, owner)

	rec := doJSON(t, router, http.MethodPost, "/api/todos", `{"content":"buy milk"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Todo TodoResponse `json:"todo"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Todo.ID)
	assert.Equal(t, "buy milk", body.Todo.Content)
	assert.False(t, body.Todo.IsDone)
	assert.NotZero(t, body.Todo.CreatedAt)
	assert.NotZero(t, body.Todo.UpdatedAt)
}

func TestHandler_Create_MissingContent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestSetup()
	router := newTestRouter(svc, newTestUser("alice1"))

	rec := doJSON(t, router, http.MethodPost, "/api/todos", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "body should contain content", errorMessage(t, rec))
}

func TestHandler_List_EmptyIsArray(t *testing.T) {
	t.Parallel()

	svc, _ := newTestSetup()
	router := newTestRouter(svc, newTestUser("alice1"))

	rec := doJSON(t, router, http.MethodGet, "/api/todos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"todos": []}`, rec.Body.String())
}

func TestHandler_Get_ErrorMapping(t *testing.T) {
	t.Parallel()

	svc, _ := newTestSetup()
	alice := newTestUser("alice1")
	bob := newTestUser("bobby1")

	created, err := svc.Create(context.Background(), alice.ID, "buy milk")
	require.NoError(t, err)

	aliceRouter := newTestRouter(svc, alice)
	bobRouter := newTestRouter(svc, bob)

	// Malformed and nonexistent ids are both 404.
	rec := doJSON(t, aliceRouter, http.MethodGet, "/api/todos/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "resource not found", errorMessage(t, rec))

	// Another user's existing todo is 401, never 404.
	rec = doJSON(t, bobRouter, http.MethodGet, "/api/todos/"+created.ID.String(), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "unauthorized")

	rec = doJSON(t, aliceRouter, http.MethodGet, "/api/todos/"+created.ID.String(), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_Update_BodyValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestSetup()
	alice := newTestUser("alice1")
	router := newTestRouter(svc, alice)

	created, err := svc.Create(context.Background(), alice.ID, "buy milk")
	require.NoError(t, err)
	path := "/api/todos/" + created.ID.String()

	rec := doJSON(t, router, http.MethodPatch, path, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "request body requires content or isDone", errorMessage(t, rec))

	rec = doJSON(t, router, http.MethodPatch, path, `{"isDone":true,"createdAt":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid body field: createdAt", errorMessage(t, rec))

	rec = doJSON(t, router, http.MethodPatch, path, `{"isDone":true,"b":1,"a":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid body field: a, b", errorMessage(t, rec))

	// A body with only unrecognized fields trips the "requires content or
	// isDone" check first.
	rec = doJSON(t, router, http.MethodPatch, path, `{"createdAt":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "request body requires content or isDone", errorMessage(t, rec))
}

func TestHandler_Update_ValidationBeforeExistence(t *testing.T) {
	t.Parallel()

	svc, _ := newTestSetup()
	router := newTestRouter(svc, newTestUser("alice1"))

	// Invalid body on a nonexistent id: validation answers first.
	rec := doJSON(t, router, http.MethodPatch, "/api/todos/not-a-uuid", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "request body requires content or isDone", errorMessage(t, rec))
}

func TestHandler_Update_Success(t *testing.T) {
	t.Parallel()

	svc, _ := newTestSetup()
	alice := newTestUser("alice1")
	router := newTestRouter(svc, alice)

	created, err := svc.Create(context.Background(), alice.ID, "buy milk")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPatch, "/api/todos/"+created.ID.String(), `{"isDone":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Todo TodoResponse `json:"todo"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Todo.IsDone)
	assert.Equal(t, "buy milk", body.Todo.Content)
}

func TestHandler_Delete(t *testing.T) {
	t.Parallel()

	svc, _ := newTestSetup()
	alice := newTestUser("alice1")
	router := newTestRouter(svc, alice)

	created, err := svc.Create(context.Background(), alice.ID, "buy milk")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodDelete, "/api/todos/"+created.ID.String(), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/todos/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package todo

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/simpletodo/api/internal/auth"
	"github.com/simpletodo/api/internal/httputil"
	"github.com/simpletodo/api/internal/logging"
	"github.com/simpletodo/api/internal/user"
)

// Handler contains HTTP handlers for the /api/todos endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// TodoResponse is the public view of a todo: string id, epoch-ms
// timestamps, no owner or internal fields. Mapping is explicit here so the
// storage model can change without leaking into the API.
type TodoResponse struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	IsDone    bool   `json:"isDone"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

func newTodoResponse(t *Todo) TodoResponse {
	return TodoResponse{
		ID:        t.ID.String(),
		Content:   t.Content,
		IsDone:    t.IsDone,
		CreatedAt: t.CreatedAt.UnixMilli(),
		UpdatedAt: t.UpdatedAt.UnixMilli(),
	}
}

// CreateRequest is the body for creating a todo
type CreateRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/todos
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if req.Content == "" {
		httputil.RespondErrorWithCode(w, "body should contain content", httputil.CodeMissingFields, http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), caller.ID, req.Content)
	if err != nil {
		logger.Error("failed to create todo", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create todo", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]TodoResponse{"todo": newTodoResponse(created)}, http.StatusCreated)
}

// List handles GET /api/todos
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	todos, err := h.service.List(r.Context(), caller)
	if err != nil {
		logger.Error("failed to list todos", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list todos", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	views := make([]TodoResponse, 0, len(todos))
	for _, t := range todos {
		views = append(views, newTodoResponse(t))
	}

	httputil.RespondJSON(w, map[string][]TodoResponse{"todos": views}, http.StatusOK)
}

// Get handles GET /api/todos/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	id, ok := h.todoID(w, r)
	if !ok {
		return
	}

	found, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	httputil.RespondJSON(w, map[string]TodoResponse{"todo": newTodoResponse(found)}, http.StatusOK)
}

// Update handles PATCH /api/todos/{id}. The body is validated before
// existence and ownership are checked: it must contain content or isDone,
// and nothing else.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	patch, ok := h.decodeUpdatePatch(w, r)
	if !ok {
		return
	}

	id, ok := h.todoID(w, r)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), caller, id, patch)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	httputil.RespondJSON(w, map[string]TodoResponse{"todo": newTodoResponse(updated)}, http.StatusOK)
}

// Delete handles DELETE /api/todos/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	id, ok := h.todoID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	httputil.RespondJSON(w, struct{}{}, http.StatusOK)
}

// decodeUpdatePatch validates the PATCH body. The no-recognized-field check
// runs before the unknown-field check, matching the create/update
// asymmetry of the documented behavior.
func (h *Handler) decodeUpdatePatch(w http.ResponseWriter, r *http.Request) (UpdatePatch, bool) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return UpdatePatch{}, false
	}

	rawContent, hasContent := body["content"]
	rawIsDone, hasIsDone := body["isDone"]

	if !hasContent && !hasIsDone {
		httputil.RespondErrorWithCode(w, "request body requires content or isDone", httputil.CodeValidationError, http.StatusBadRequest)
		return UpdatePatch{}, false
	}

	var extra []string
	for key := range body {
		if key != "content" && key != "isDone" {
			extra = append(extra, key)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		message := "invalid body field: " + strings.Join(extra, ", ")
		httputil.RespondErrorWithCode(w, message, httputil.CodeValidationError, http.StatusBadRequest)
		return UpdatePatch{}, false
	}

	var patch UpdatePatch
	if hasContent {
		var content string
		if err := json.Unmarshal(rawContent, &content); err != nil {
			httputil.RespondErrorWithCode(w, "content must be a string", httputil.CodeValidationError, http.StatusBadRequest)
			return UpdatePatch{}, false
		}
		patch.Content = &content
	}
	if hasIsDone {
		var isDone bool
		if err := json.Unmarshal(rawIsDone, &isDone); err != nil {
			httputil.RespondErrorWithCode(w, "isDone must be a boolean", httputil.CodeValidationError, http.StatusBadRequest)
			return UpdatePatch{}, false
		}
		patch.IsDone = &isDone
	}

	return patch, true
}

// caller pulls the authenticated user from the context. The middleware
// guarantees it is present on protected routes.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (*user.User, bool) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "unauthorized", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return nil, false
	}
	return caller, true
}

// todoID parses the id path parameter. A malformed id can never match a
// row, so it reads as not-found rather than a client error.
func (h *Handler) todoID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "resource not found", httputil.CodeNotFound, http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service failures to status codes. Ownership
// failures and absence are reported distinctly: 401 vs 404.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.GetLoggerFromContext(r.Context())

	switch {
	case errors.Is(err, ErrNotFound):
		httputil.RespondErrorWithCode(w, "resource not found", httputil.CodeNotFound, http.StatusNotFound)
	case errors.Is(err, ErrNotOwner):
		httputil.RespondErrorWithCode(w, "unauthorized: you don't own this resource", httputil.CodeNotOwner, http.StatusUnauthorized)
	default:
		logger.Error("todo operation failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/activities-signup/internal/model"
	"github.com/Shivanand-hulikatti/activities-signup/internal/repository"
	"github.com/Shivanand-hulikatti/activities-signup/internal/service"
)

// Error details returned in the "detail" field.
const (
	detailActivityNotFound = "Activity not found"
	detailAlreadySignedUp  = "Student is already signed up for this activity"
	detailNotRegistered    = "Student is not registered for this activity"
	detailActivityFull     = "Activity is full"
	detailEmailRequired    = "Query parameter 'email' is required"
	detailInvalidInput     = "Activity name and email must not be empty"
	detailMalformedPath    = "Malformed path parameter"
	detailInternal         = "Internal Server Error"
	detailNotFound         = "Not Found"
	detailMethodNotAllowed = "Method Not Allowed"
)

// ActivityHandler holds the HTTP handlers for the activities API.
type ActivityHandler struct {
	svc *service.ActivityService
}

// NewActivityHandler constructs an ActivityHandler.
func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, model.ErrorResponse{Detail: detail})
}

// pathParam returns the decoded value of a route parameter. chi matches on
// RawPath when the request has one, in which case the parameter is still
// percent-encoded.
func pathParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}

// writeServiceError maps service and registry errors to a status code.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, detailInvalidInput)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, detailActivityNotFound)
	case errors.Is(err, repository.ErrAlreadyRegistered):
		writeError(w, http.StatusBadRequest, detailAlreadySignedUp)
	case errors.Is(err, repository.ErrNotRegistered):
		writeError(w, http.StatusBadRequest, detailNotRegistered)
	case errors.Is(err, repository.ErrActivityFull):
		writeError(w, http.StatusBadRequest, detailActivityFull)
	default:
		writeError(w, http.StatusInternalServerError, detailInternal)
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// ListActivities handles GET /activities
// Returns every activity keyed by its name.
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.svc.ListActivities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list activities")
		return
	}

	writeJSON(w, http.StatusOK, activities)
}

// Signup handles POST /activities/{activity_name}/signup?email=
func (h *ActivityHandler) Signup(w http.ResponseWriter, r *http.Request) {
	activity, err := pathParam(r, "activity_name")
	if err != nil {
		writeError(w, http.StatusBadRequest, detailMalformedPath)
		return
	}

	query := r.URL.Query()
	if !query.Has("email") {
		writeError(w, http.StatusUnprocessableEntity, detailEmailRequired)
		return
	}

	msg, err := h.svc.Enroll(r.Context(), activity, query.Get("email"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: msg})
}

// Unregister handles DELETE /activities/{activity_name}/participants/{email}
func (h *ActivityHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	activity, err := pathParam(r, "activity_name")
	if err != nil {
		writeError(w, http.StatusBadRequest, detailMalformedPath)
		return
	}
	email, err := pathParam(r, "email")
	if err != nil {
		writeError(w, http.StatusBadRequest, detailMalformedPath)
		return
	}

	msg, err := h.svc.Withdraw(r.Context(), activity, email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: msg})
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound is the JSON fallback for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, detailNotFound)
}

// MethodNotAllowed is the JSON fallback for known routes hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, detailMethodNotAllowed)
}

package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"studycon/internal/delivery/http/helpers"
	"studycon/internal/delivery/http/middleware"
	"studycon/internal/domain"
)

type MatchingController struct {
	Logger  *slog.Logger
	Service domain.MatchingService
}

func NewMatchingController(logger *slog.Logger, svc domain.MatchingService) *MatchingController {
	return &MatchingController{
		Logger:  logger,
		Service: svc,
	}
}

// parseLimit reads the optional limit query parameter. Zero means the
// configured default.
func parseLimit(r *http.Request) int {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0
	}
	return v
}

// MatchResultsSuccessResponse is the success response envelope for single-scope matching runs (200).
type MatchResultsSuccessResponse struct {
	Data  []*domain.MatchResult `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// MatchRunSummarySuccessResponse is the success response envelope for bulk matching runs (200).
type MatchRunSummarySuccessResponse struct {
	Data  *domain.MatchRunSummary `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// MatchEvent godoc
// @Summary Run auto-matching for one event
// @Description Scores opted-in users against the event's interest tags and writes up to limit new auto-matched invitations, best score first. Idempotent: already-invited users are skipped. Disabled, private, tagless, or ended events yield an empty result.
// @Tags matching
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param limit query int false "Maximum invitations to create (default from config)"
// @Success 200 {object} controllers.MatchResultsSuccessResponse "data is the matches created in this run"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/matching/run [post]
func (c *MatchingController) MatchEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !validEventID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	_, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	results, err := c.Service.MatchEvent(r.Context(), eventID, parseLimit(r))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if results == nil {
		results = []*domain.MatchResult{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, results)
}

// RebuildEvent godoc
// @Summary Rebuild auto-matches for one event
// @Description Clears the event's auto-matched invitations and recomputes them from current interests and tags. Manual invitations are never touched.
// @Tags matching
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.MatchResultsSuccessResponse "data is the recomputed matches"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/matching/rebuild [post]
func (c *MatchingController) RebuildEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !validEventID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	_, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	results, err := c.Service.RebuildForEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if results == nil {
		results = []*domain.MatchResult{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, results)
}

// MatchMe godoc
// @Summary Run auto-matching for the current user
// @Description Matches the authenticated user against all auto-matchable events whose tags overlap their interests. Users who have not opted in get an empty result.
// @Tags matching
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MatchResultsSuccessResponse "data is the matches created in this run"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown user)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /matching/me/run [post]
func (c *MatchingController) MatchMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	results, err := c.Service.MatchUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if results == nil {
		results = []*domain.MatchResult{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, results)
}

// MatchAll godoc
// @Summary Run auto-matching for all events
// @Description Runs matching over every auto-matchable event. Per-event failures are reported in the summary and do not abort the run. Administrative.
// @Tags matching
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MatchRunSummarySuccessResponse "data contains the run summary"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /matching/run [post]
func (c *MatchingController) MatchAll(w http.ResponseWriter, r *http.Request) {
	_, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	summary, err := c.Service.MatchAllEvents(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}

// RebuildAll godoc
// @Summary Rebuild auto-matches for all events
// @Description Clears and recomputes auto-matched invitations for every auto-matchable event. Manual invitations are never touched. Administrative.
// @Tags matching
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MatchRunSummarySuccessResponse "data contains the run summary"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /matching/rebuild [post]
func (c *MatchingController) RebuildAll(w http.ResponseWriter, r *http.Request) {
	_, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	summary, err := c.Service.RebuildAll(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}

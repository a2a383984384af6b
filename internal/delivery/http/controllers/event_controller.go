package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"studycon/internal/delivery/http/helpers"
	"studycon/internal/delivery/http/middleware"
	"studycon/internal/domain"

	"github.com/google/uuid"
)

// validEventID reports whether s is a canonical UUID. Event IDs are
// server-generated UUIDs, so anything else is a client error.
func validEventID(s string) bool {
	return uuid.Validate(s) == nil
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	EventType           string    `json:"event_type"`
	InterestTags        []string  `json:"interest_tags"`
	AutoMatchingEnabled bool      `json:"auto_matching_enabled"`
	IsPublic            bool      `json:"is_public"`
	MaxParticipants     int       `json:"max_participants"`
	LocationLat         *float64  `json:"location_lat"`
	LocationLng         *float64  `json:"location_lng"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.MaxParticipants < 0 {
		errs = append(errs, "max_participants must be non-negative")
	}
	if c.StartTime.IsZero() {
		errs = append(errs, "start_time is required")
	}
	if c.EndTime.IsZero() {
		errs = append(errs, "end_time is required")
	}
	if !c.StartTime.IsZero() && !c.EndTime.IsZero() && !c.EndTime.After(c.StartTime) {
		errs = append(errs, "end_time must be after start_time")
	}
	if c.LocationLat != nil && (*c.LocationLat < -90 || *c.LocationLat > 90) {
		errs = append(errs, "location_lat must be between -90 and 90")
	}
	if c.LocationLng != nil && (*c.LocationLng < -180 || *c.LocationLng > 180) {
		errs = append(errs, "location_lng must be between -180 and 180")
	}
	return errs
}

// CreateEventSuccessResponse is the success response envelope for POST /events (201).
type CreateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger     *slog.Logger
	Service    domain.EventService
	Visibility domain.VisibilityService
}

func NewEventController(logger *slog.Logger, svc domain.EventService, vis domain.VisibilityService) *EventController {
	return &EventController{
		Logger:     logger,
		Service:    svc,
		Visibility: vis,
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create a new study event. The authenticated user becomes the host and an implicit attendee. Interest tags are normalized (lowercased, trimmed, de-duplicated) before storage.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event := domain.NewEvent(userID, req.Title, req.Description, req.EventType, req.InterestTags, req.StartTime, req.EndTime)
	event.AutoMatchingEnabled = req.AutoMatchingEnabled
	event.IsPublic = req.IsPublic
	event.MaxParticipants = req.MaxParticipants
	event.LocationLat = req.LocationLat
	event.LocationLng = req.LocationLng
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEventSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type GetEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetEventByID godoc
// @Summary Get an event by ID
// @Description Returns a single event. Requires authentication.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetEventSuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEventByID(w http.ResponseWriter, r *http.Request) {
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
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All fields optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Title               *string    `json:"title"`
	Description         *string    `json:"description"`
	EventType           *string    `json:"event_type"`
	InterestTags        []string   `json:"interest_tags"`
	AutoMatchingEnabled *bool      `json:"auto_matching_enabled"`
	IsPublic            *bool      `json:"is_public"`
	MaxParticipants     *int       `json:"max_participants"`
	LocationLat         *float64   `json:"location_lat"`
	LocationLng         *float64   `json:"location_lng"`
	StartTime           *time.Time `json:"start_time"`
	EndTime             *time.Time `json:"end_time"`
}

// Validate implements Validator. Optional bounds for lat (-90..90) and lng (-180..180).
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.MaxParticipants != nil && *u.MaxParticipants < 0 {
		errs = append(errs, "max_participants must be non-negative")
	}
	if u.LocationLat != nil && (*u.LocationLat < -90 || *u.LocationLat > 90) {
		errs = append(errs, "location_lat must be between -90 and 90")
	}
	if u.LocationLng != nil && (*u.LocationLng < -180 || *u.LocationLng > 180) {
		errs = append(errs, "location_lng must be between -180 and 180")
	}
	return errs
}

// UpdateEventSuccessResponse is the success response envelope for PATCH /events/{eventID} (200).
type UpdateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UpdateEvent godoc
// @Summary Update event details
// @Description Updates event fields. Only the host can update. Omitted fields are unchanged. Changing interest tags or the auto-matching flag triggers a rebuild of the event's auto-matched invitations. Requires authentication.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateEventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !validEventID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, callerID, domain.EventUpdate{
		Title:               req.Title,
		Description:         req.Description,
		EventType:           req.EventType,
		InterestTags:        req.InterestTags,
		AutoMatchingEnabled: req.AutoMatchingEnabled,
		IsPublic:            req.IsPublic,
		MaxParticipants:     req.MaxParticipants,
		LocationLat:         req.LocationLat,
		LocationLng:         req.LocationLng,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEventResponse is the data payload for DELETE /events/{eventID} (200).
type DeleteEventResponse struct {
	Status string `json:"status"`
}

// DeleteEventSuccessResponse is the success response envelope for DELETE /events/{eventID} (200).
type DeleteEventSuccessResponse struct {
	Data  DeleteEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Delete an event and all its associated data (invitations, attendees). Only the host can delete. Requires authentication.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.DeleteEventSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !validEventID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Status: "deleted"})
}

// InviteUserRequest is the request body for POST /events/{eventID}/invitations.
type InviteUserRequest struct {
	Username string `json:"username"`
}

// Validate implements Validator.
func (i InviteUserRequest) Validate() []string {
	if strings.TrimSpace(i.Username) == "" {
		return []string{"username is required"}
	}
	return nil
}

// InviteUserResponse is the data payload for POST /events/{eventID}/invitations.
type InviteUserResponse struct {
	Created bool `json:"created"`
}

// InviteUserSuccessResponse is the success response envelope for POST /events/{eventID}/invitations (200/201).
type InviteUserSuccessResponse struct {
	Data  InviteUserResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// InviteUser godoc
// @Summary Invite a user to an event
// @Description Writes a manual invitation for the named user and emails them a notice. Only the host can invite. Idempotent: inviting an already-invited user returns 200 with created=false and sends no second email.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body InviteUserRequest true "Username of the user to invite"
// @Success 201 {object} controllers.InviteUserSuccessResponse "data.created is true"
// @Success 200 {object} controllers.InviteUserSuccessResponse "data.created is false (already invited)"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (host cannot invite themselves)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event or user)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [post]
func (c *EventController) InviteUser(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !validEventID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	var req InviteUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	created, err := c.Service.InviteUser(r.Context(), eventID, callerID, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event or user not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	helpers.WriteJSONSuccess(w, status, InviteUserResponse{Created: created})
}

// RespondInvitationRequest is the request body for POST /events/{eventID}/invitations/response.
type RespondInvitationRequest struct {
	Accept *bool `json:"accept"`
}

// Validate implements Validator.
func (r RespondInvitationRequest) Validate() []string {
	if r.Accept == nil {
		return []string{"accept is required"}
	}
	return nil
}

// RespondInvitationResponse is the data payload for POST /events/{eventID}/invitations/response.
type RespondInvitationResponse struct {
	Status string `json:"status"`
}

// RespondInvitationSuccessResponse is the success response envelope for POST /events/{eventID}/invitations/response (200).
type RespondInvitationSuccessResponse struct {
	Data  RespondInvitationResponse `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// RespondToInvitation godoc
// @Summary Accept or decline an invitation
// @Description The authenticated user accepts or declines their invitation to the event. Accept adds them to attendees; decline removes the invitation. Accept fails with 409 when the event is full.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RespondInvitationRequest true "accept: true to join, false to decline"
// @Success 200 {object} controllers.RespondInvitationSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no invitation)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event full)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations/response [post]
func (c *EventController) RespondToInvitation(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !validEventID(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	var req RespondInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.RespondToInvitation(r.Context(), eventID, userID, *req.Accept); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "invitation not found")
			return
		}
		if errors.Is(err, domain.ErrConflict) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "event is full")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	status := "declined"
	if *req.Accept {
		status = "accepted"
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RespondInvitationResponse{Status: status})
}

// ListMyEventsSuccessResponse is the success response envelope for GET /events/me (200).
type ListMyEventsSuccessResponse struct {
	Data  *domain.EventBuckets `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListMyEvents godoc
// @Summary List events visible to the current user
// @Description Returns the user's events partitioned into buckets: hosting, attending, invited, auto_matched, and (with include_public=true) a public feed. An event appears in exactly one bucket; ended events are excluded.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param include_public query bool false "Include the public feed bucket (default false)"
// @Param page query int false "Public feed page number (default 1)"
// @Param page_size query int false "Public feed page size (default 20, max 100)"
// @Success 200 {object} controllers.ListMyEventsSuccessResponse "data contains the event buckets"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown user)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/me [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	includePublic := r.URL.Query().Get("include_public") == "true"
	params := helpers.ParsePagination(r)
	buckets, err := c.Visibility.EventsFor(r.Context(), userID, includePublic, params)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, buckets)
}

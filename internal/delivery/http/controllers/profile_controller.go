package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"studycon/internal/delivery/http/helpers"
	"studycon/internal/delivery/http/middleware"
	"studycon/internal/domain"
)

type ProfileController struct {
	Logger  *slog.Logger
	Service domain.ProfileService
}

func NewProfileController(logger *slog.Logger, svc domain.ProfileService) *ProfileController {
	return &ProfileController{
		Logger:  logger,
		Service: svc,
	}
}

// ProfileSuccessResponse is the success response envelope for profile endpoints (200).
type ProfileSuccessResponse struct {
	Data  *domain.Profile   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetMyProfile godoc
// @Summary Get the current user's profile
// @Description Returns the authenticated user's matching profile: interests, opt-in flag, preferred radius, skills, and location.
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ProfileSuccessResponse "data contains the profile"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profiles/me [get]
func (c *ProfileController) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	profile, err := c.Service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "profile not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}

// UpdateProfileRequest is the request body for PUT /profiles/me.
type UpdateProfileRequest struct {
	Interests         []string       `json:"interests"`
	AutoInviteOptIn   bool           `json:"auto_invite_opt_in"`
	PreferredRadiusKm float64        `json:"preferred_radius_km"`
	Skills            map[string]int `json:"skills"`
	LocationLat       *float64       `json:"location_lat"`
	LocationLng       *float64       `json:"location_lng"`
}

// Validate implements Validator.
func (u UpdateProfileRequest) Validate() []string {
	var errs []string
	if u.PreferredRadiusKm < 0 {
		errs = append(errs, "preferred_radius_km must be non-negative")
	}
	if u.LocationLat != nil && (*u.LocationLat < -90 || *u.LocationLat > 90) {
		errs = append(errs, "location_lat must be between -90 and 90")
	}
	if u.LocationLng != nil && (*u.LocationLng < -180 || *u.LocationLng > 180) {
		errs = append(errs, "location_lng must be between -180 and 180")
	}
	for name, level := range u.Skills {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, "skill names cannot be empty")
			break
		}
		if level < 1 || level > 5 {
			errs = append(errs, "skill levels must be between 1 and 5")
			break
		}
	}
	return errs
}

// UpdateMyProfile godoc
// @Summary Update the current user's profile
// @Description Replaces the authenticated user's matching profile. Interests are normalized (lowercased, trimmed, de-duplicated) before storage. When the user is opted in, a matching run for the user is triggered after the update.
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} controllers.ProfileSuccessResponse "data contains the updated profile"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profiles/me [put]
func (c *ProfileController) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	profile, err := c.Service.UpdateProfile(r.Context(), &domain.Profile{
		UserID:            userID,
		Interests:         req.Interests,
		AutoInviteOptIn:   req.AutoInviteOptIn,
		PreferredRadiusKm: req.PreferredRadiusKm,
		Skills:            req.Skills,
		LocationLat:       req.LocationLat,
		LocationLng:       req.LocationLng,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "profile not found")
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
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}

// SetOptInRequest is the request body for PATCH /profiles/{username}/auto-invite.
type SetOptInRequest struct {
	Enabled *bool `json:"enabled"`
}

// Validate implements Validator.
func (s SetOptInRequest) Validate() []string {
	if s.Enabled == nil {
		return []string{"enabled is required"}
	}
	return nil
}

// SetOptInResponse is the data payload for PATCH /profiles/{username}/auto-invite.
type SetOptInResponse struct {
	Status string `json:"status"`
}

// SetOptInSuccessResponse is the success response envelope for PATCH /profiles/{username}/auto-invite (200).
type SetOptInSuccessResponse struct {
	Data  SetOptInResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SetAutoInviteOptIn godoc
// @Summary Set a user's auto-invite opt-in flag
// @Description Flips the named user's auto_invite_opt_in flag. Opted-out users are never auto-matched. Administrative.
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param body body SetOptInRequest true "enabled: the new flag value"
// @Success 200 {object} controllers.SetOptInSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profiles/{username}/auto-invite [patch]
func (c *ProfileController) SetAutoInviteOptIn(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing username")
		return
	}
	var req SetOptInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	_, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.SetOptInByUsername(r.Context(), username, *req.Enabled); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SetOptInResponse{Status: "updated"})
}

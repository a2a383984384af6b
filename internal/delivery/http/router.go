package http

import (
	"net/http"

	"studycon/internal/delivery/http/controllers"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter initializes the HTTP router with all application routes.
// requireAuth wraps a handler with Bearer token validation.
func NewRouter(
	eventController *controllers.EventController,
	matchingController *controllers.MatchingController,
	profileController *controllers.ProfileController,
	requireAuth func(http.HandlerFunc) http.HandlerFunc,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("POST /events", requireAuth(eventController.CreateEvent))
	mux.HandleFunc("GET /events/me", requireAuth(eventController.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", requireAuth(eventController.GetEventByID))
	mux.HandleFunc("PATCH /events/{eventID}", requireAuth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(eventController.DeleteEvent))

	// Invitations
	mux.HandleFunc("POST /events/{eventID}/invitations", requireAuth(eventController.InviteUser))
	mux.HandleFunc("POST /events/{eventID}/invitations/response", requireAuth(eventController.RespondToInvitation))

	// Matching
	mux.HandleFunc("POST /events/{eventID}/matching/run", requireAuth(matchingController.MatchEvent))
	mux.HandleFunc("POST /events/{eventID}/matching/rebuild", requireAuth(matchingController.RebuildEvent))
	mux.HandleFunc("POST /matching/me/run", requireAuth(matchingController.MatchMe))
	mux.HandleFunc("POST /matching/run", requireAuth(matchingController.MatchAll))
	mux.HandleFunc("POST /matching/rebuild", requireAuth(matchingController.RebuildAll))

	// Profiles
	mux.HandleFunc("GET /profiles/me", requireAuth(profileController.GetMyProfile))
	mux.HandleFunc("PUT /profiles/me", requireAuth(profileController.UpdateMyProfile))
	mux.HandleFunc("PATCH /profiles/{username}/auto-invite", requireAuth(profileController.SetAutoInviteOptIn))

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

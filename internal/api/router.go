package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/technosupport/ts-shopguard/internal/events"
	"github.com/technosupport/ts-shopguard/internal/middleware"
	"github.com/technosupport/ts-shopguard/internal/notify"
	"github.com/technosupport/ts-shopguard/internal/recording"
	"github.com/technosupport/ts-shopguard/internal/surveillance"
	"github.com/technosupport/ts-shopguard/internal/users"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Users      *users.Service
	Controller *surveillance.Controller
	Events     events.Sink
	Recordings recording.Sink
	Blobs      recording.BlobStore
	Hub        *notify.Hub
	JWT        *middleware.JWTAuth
	RateLimit  *middleware.RateLimit
	// Frames is the dashboard snapshot ingest; nil disables the endpoint.
	Frames FramePusher
}

func NewRouter(d Deps) http.Handler {
	authH := NewAuthHandler(d.Users)
	profileH := &ProfileHandler{Users: d.Users, Controller: d.Controller}
	cameraH := NewCameraHandler(d.Controller, d.Users, d.Frames)
	eventsH := NewEventsHandler(d.Events)
	recordingsH := NewRecordingsHandler(d.Recordings, d.Blobs)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", d.RateLimit.LoginLimiter(authH.Login))

		r.Group(func(r chi.Router) {
			r.Use(d.JWT.Middleware)

			r.Post("/auth/logout", authH.Logout)
			r.Get("/profile", profileH.Get)
			r.Put("/profile/hours", profileH.UpdateHours)

			r.Post("/camera/start", cameraH.Start)
			r.Post("/camera/frame", cameraH.IngestFrame)
			r.Get("/camera/snapshot", cameraH.Snapshot)
			r.Post("/camera/stop", cameraH.Stop)
			r.Get("/camera/status", cameraH.Status)
			r.Put("/camera/sensitivity", cameraH.SetSensitivity)
			r.Post("/camera/respond", cameraH.Respond)

			r.Get("/events", eventsH.List)
			r.Get("/recordings", recordingsH.List)
			r.Delete("/recordings/{id}", recordingsH.Delete)

			r.Get("/ws", d.Hub.ServeWS)
		})
	})

	return r
}

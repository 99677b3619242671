package httpapp

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cesargomez89/streamhub/internal/app"
	"github.com/cesargomez89/streamhub/internal/domain"
	"github.com/cesargomez89/streamhub/internal/http/dto"
	"github.com/cesargomez89/streamhub/internal/logger"
)

type Handler struct {
	Session  *app.Session
	Logger   *logger.Logger
	upgrader websocket.Upgrader
}

func NewHandler(s *app.Session, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		Session: s,
		Logger:  log.WithComponent("http"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API is served to a local player UI on another origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(Metrics)

		r.Post("/login", h.Login)
		r.Get("/profile", h.Profile)

		r.Post("/sync", h.StartSync)
		r.Delete("/sync", h.CancelSync)
		r.Get("/sync/status", h.SyncStatus)
		r.Get("/sync/ws", h.SyncProgressWS)

		r.Get("/categories", h.Categories)
		r.Get("/categories/{id}/channels", h.Channels)
		r.Get("/categories/{id}/movies", h.Movies)
		r.Get("/categories/{id}/series", h.Series)

		r.Get("/stats", h.Stats)
		r.Post("/purge", h.Purge)
		r.Get("/play", h.Play)
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Warn("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Fields map[string]string `json:"fields,omitempty"`
	Error  string            `json:"error"`
}

func (h *Handler) writeValidation(w http.ResponseWriter, errs []dto.ValidationError) {
	h.writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:  dto.ToResponse(errs),
		Fields: dto.ToMap(errs),
	})
}

// writeError maps domain errors onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var (
		authErr *domain.AuthenticationError
		netErr  *domain.NetworkError
	)
	switch {
	case errors.Is(err, domain.ErrSyncInProgress):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNoProfile):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrInvalidProfile):
		status = http.StatusBadRequest
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
	case errors.As(err, &netErr):
		status = http.StatusBadGateway
	}

	if status >= 500 {
		h.Logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"time":         time.Now().UTC().Format(time.RFC3339),
		"sync_running": h.Session.Running(),
	})
}

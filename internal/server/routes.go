package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/store"
	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/webhook"
)

// Reporting is the read-only interaction surface consumed by the admin
// routes.
type Reporting interface {
	List(ctx context.Context, limit int) ([]*domain.InteractionRecord, error)
	Stats(ctx context.Context) (*domain.InteractionStats, error)
}

// MountWebhook registers the channel callback endpoints.
func (s *Server) MountWebhook(h *webhook.Handler) {
	s.Router.Get("/webhook", h.Verify)
	s.Router.Post("/webhook", h.Receive)
}

// MountAdmin registers the read-only reporting routes. Transport for the
// actual admin dashboard lives elsewhere; these are plain JSON reads.
func (s *Server) MountAdmin(rep Reporting, sessions store.SessionStore) {
	s.Router.Get("/admin/interactions", func(w http.ResponseWriter, r *http.Request) {
		records, err := rep.List(r.Context(), queryLimit(r, 100))
		if err != nil {
			s.jsonError(w, r, err)
			return
		}
		s.writeJSON(w, records)
	})

	s.Router.Get("/admin/stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := rep.Stats(r.Context())
		if err != nil {
			s.jsonError(w, r, err)
			return
		}
		s.writeJSON(w, stats)
	})

	s.Router.Get("/admin/sessions", func(w http.ResponseWriter, r *http.Request) {
		list, err := sessions.List(r.Context(), queryLimit(r, 50))
		if err != nil {
			s.jsonError(w, r, err)
			return
		}
		s.writeJSON(w, list)
	})
}

func queryLimit(r *http.Request, def int) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) jsonError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("admin query failed",
		slog.String("request_id", GetRequestID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// Package webhook receives the messaging channel's callbacks: the
// verification handshake and message-delivery notifications, which it
// normalizes into engine events.
package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

// handleTimeout bounds the detached per-message handling started for each
// webhook delivery.
const handleTimeout = 3 * time.Minute

// maxBodyBytes caps the webhook payload size.
const maxBodyBytes = 1 << 20

// Engine is the conversation engine consumed by the handler.
type Engine interface {
	Handle(ctx context.Context, sessionID string, event domain.InboundEvent) error
}

// Handler serves GET (verification) and POST (delivery) on the webhook
// path.
type Handler struct {
	engine      Engine
	verifyToken string
	logger      *slog.Logger
}

// Option configures the handler.
type Option func(*Handler)

// WithLogger sets the logger for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates a webhook handler.
func NewHandler(engine Engine, verifyToken string, opts ...Option) *Handler {
	h := &Handler{
		engine:      engine,
		verifyToken: verifyToken,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Verify answers the channel's subscription handshake.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken && challenge != "" {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(challenge))
		return
	}

	h.logger.Warn("webhook verification rejected", slog.String("mode", mode))
	http.Error(w, "verification failed", http.StatusForbidden)
}

// Receive accepts a message-delivery notification. It ACKs with 200 as
// soon as the payload parses; per-message handling runs detached so the
// channel does not redeliver while a generation is in flight.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read failed", http.StatusBadRequest)
		return
	}

	messages, err := Normalize(body)
	if err != nil {
		h.logger.Warn("unparseable webhook payload", slog.String("error", err.Error()))
		// Still 200: a 4xx would make the channel redeliver a payload we
		// will never understand.
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, msg := range messages {
		go h.handle(msg)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handle(msg InboundMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if err := h.engine.Handle(ctx, msg.SenderID, msg.Event); err != nil {
		h.logger.Error("inbound event handling failed",
			slog.String("sender_id", msg.SenderID),
			slog.String("type", string(msg.Event.Type)),
			slog.String("error", err.Error()),
		)
	}
}

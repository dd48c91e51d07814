// Package dispatch sends outbound messages, chunking oversized text to the
// channel limit and retrying transient failures with jittered backoff.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

const (
	// defaultMaxRetries is the per-segment retry budget for transient errors.
	defaultMaxRetries = 3
	// defaultBaseDelay is the base delay for exponential backoff.
	defaultBaseDelay = 500 * time.Millisecond
	// defaultMaxDelay caps the backoff delay.
	defaultMaxDelay = 8 * time.Second
)

// Poster is the outbound channel client consumed by the dispatcher.
type Poster interface {
	Post(ctx context.Context, recipient, segment string) error
}

// Option configures the dispatcher.
type Option func(*Dispatcher)

// WithMaxLen sets the per-segment byte limit.
func WithMaxLen(max int) Option {
	return func(d *Dispatcher) {
		d.maxLen = max
	}
}

// WithMaxRetries sets the per-segment retry budget.
func WithMaxRetries(maxRetries int) Option {
	return func(d *Dispatcher) {
		d.maxRetries = maxRetries
	}
}

// WithLogger sets the logger for the dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithSleep overrides the backoff sleep, for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(d *Dispatcher) {
		d.sleep = sleep
	}
}

// Dispatcher delivers outbound messages segment by segment. Segments are
// sent strictly in order and a later segment is never attempted after an
// earlier one fails, so the user never sees reordered output.
type Dispatcher struct {
	poster     Poster
	maxLen     int
	maxRetries int
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New creates a dispatcher on top of the given channel client.
func New(poster Poster, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		poster:     poster,
		maxLen:     4000,
		maxRetries: defaultMaxRetries,
		logger:     slog.Default(),
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send splits text and posts every segment, reporting success only when
// all segments were accepted by the channel.
func (d *Dispatcher) Send(ctx context.Context, recipient, text string) error {
	segments := Split(text, d.maxLen)

	for i, segment := range segments {
		if err := d.sendSegment(ctx, recipient, segment); err != nil {
			d.logger.Error("segment send failed, aborting remaining segments",
				slog.String("recipient", recipient),
				slog.Int("segment", i+1),
				slog.Int("total", len(segments)),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("send segment %d/%d: %w", i+1, len(segments), err)
		}
	}
	return nil
}

func (d *Dispatcher) sendSegment(ctx context.Context, recipient, segment string) error {
	var lastErr error

	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		lastErr = d.poster.Post(ctx, recipient, segment)
		if lastErr == nil {
			return nil
		}

		if !domain.IsRetryable(lastErr) {
			// Permanently rejected; surface immediately.
			return lastErr
		}

		if attempt == d.maxRetries {
			break
		}

		delay := backoff(attempt)
		d.logger.Warn("channel send failed, retrying",
			slog.String("recipient", recipient),
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", d.maxRetries),
			slog.Duration("backoff", delay),
		)

		if err := d.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

// backoff returns the delay for the given attempt: exponential growth with
// up to 25% random jitter, capped at defaultMaxDelay.
func backoff(attempt int) time.Duration {
	delay := float64(defaultBaseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(defaultMaxDelay) {
		delay = float64(defaultMaxDelay)
	}
	jitter := 1 + 0.25*rand.Float64()
	return time.Duration(delay * jitter)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

type scriptedPoster struct {
	posts   []string
	scripts []error // consumed per call; nil past the end
}

func (p *scriptedPoster) Post(ctx context.Context, recipient, segment string) error {
	call := len(p.posts)
	p.posts = append(p.posts, segment)
	if call < len(p.scripts) {
		return p.scripts[call]
	}
	return nil
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestDispatcher_RetriesTransientFailures(t *testing.T) {
	poster := &scriptedPoster{scripts: []error{
		domain.NewChannelError(domain.ErrorKindTransient, "gateway timeout"),
		domain.ErrRateLimited("slow down"),
		nil,
	}}
	d := New(poster, WithMaxRetries(3), WithSleep(noSleep))

	if err := d.Send(context.Background(), "user-1", "olá"); err != nil {
		t.Fatalf("Send() error = %v, want success after retries", err)
	}
	if len(poster.posts) != 3 {
		t.Errorf("posts = %d, want 3 (two failures then success)", len(poster.posts))
	}
}

func TestDispatcher_GivesUpAfterRetryBudget(t *testing.T) {
	transient := domain.NewChannelError(domain.ErrorKindTransient, "unreachable")
	poster := &scriptedPoster{scripts: []error{transient, transient, transient, transient}}
	d := New(poster, WithMaxRetries(2), WithSleep(noSleep))

	err := d.Send(context.Background(), "user-1", "olá")
	if err == nil {
		t.Fatal("Send() = nil, want error after exhausting retries")
	}
	// Initial attempt plus two retries.
	if len(poster.posts) != 3 {
		t.Errorf("posts = %d, want 3", len(poster.posts))
	}
}

func TestDispatcher_DoesNotRetryPermanentRejection(t *testing.T) {
	poster := &scriptedPoster{scripts: []error{
		domain.ErrInvalidRecipient("unknown number"),
	}}
	d := New(poster, WithMaxRetries(3), WithSleep(noSleep))

	err := d.Send(context.Background(), "user-1", "olá")
	if err == nil {
		t.Fatal("Send() = nil, want error")
	}
	if len(poster.posts) != 1 {
		t.Errorf("posts = %d, want 1 (no retries on permanent errors)", len(poster.posts))
	}

	var chErr *domain.ChannelError
	if !errors.As(err, &chErr) || chErr.Kind != domain.ErrorKindInvalidRecipient {
		t.Errorf("error = %v, want wrapped invalid-recipient channel error", err)
	}
}

func TestDispatcher_StopsOnFirstFailedSegment(t *testing.T) {
	permanent := domain.NewChannelError(domain.ErrorKindPermanent, "rejected")
	// Segment 1 succeeds, segment 2 fails permanently; segment 3 must not
	// be attempted.
	poster := &scriptedPoster{scripts: []error{nil, permanent}}
	d := New(poster, WithMaxLen(20), WithSleep(noSleep))

	text := strings.Repeat("palavra ", 10)
	err := d.Send(context.Background(), "user-1", text)
	if err == nil {
		t.Fatal("Send() = nil, want error")
	}
	if !strings.Contains(err.Error(), "segment 2/") {
		t.Errorf("error = %v, want segment position", err)
	}
	if len(poster.posts) != 2 {
		t.Errorf("posts = %d, want 2 (no segments after the failure)", len(poster.posts))
	}
}

func TestDispatcher_SegmentsReconstructMessage(t *testing.T) {
	poster := &scriptedPoster{}
	d := New(poster, WithMaxLen(30), WithSleep(noSleep))

	text := "primeira linha\nsegunda linha\n\nterceiro parágrafo da mensagem"
	if err := d.Send(context.Background(), "user-1", text); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(poster.posts) < 2 {
		t.Fatalf("posts = %d, want chunked delivery", len(poster.posts))
	}
	if got := strings.Join(poster.posts, ""); got != text {
		t.Errorf("joined segments = %q, want original text", got)
	}
}

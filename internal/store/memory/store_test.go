package memory

import (
	"context"
	"testing"
	"time"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

func TestStore_RoundTrip(t *testing.T) {
	s := New(time.Hour)
	ctx := context.Background()

	sess := domain.NewSession("user-1", time.Now())
	sess.State = domain.StateAwaitingContext
	sess.SetField("name", "Maria")
	sess.LastUpdatedAt = time.Now()

	if err := s.Save(ctx, sess); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.State != domain.StateAwaitingContext {
		t.Errorf("State = %q, want %q", got.State, domain.StateAwaitingContext)
	}
	if got.Field("name") != "Maria" {
		t.Errorf("name = %q, want Maria", got.Field("name"))
	}

	// The stored session must not alias the caller's copy.
	got.SetField("name", "changed")
	again, _ := s.Get(ctx, "user-1")
	if again.Field("name") != "Maria" {
		t.Error("Get returned aliased state")
	}
}

func TestStore_UnknownIDYieldsFreshSession(t *testing.T) {
	s := New(time.Hour)

	got, err := s.Get(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.State != domain.StateFresh {
		t.Errorf("State = %q, want fresh", got.State)
	}
	if got.ID != "never-seen" {
		t.Errorf("ID = %q", got.ID)
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := New(time.Hour, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	sess := domain.NewSession("user-1", now)
	sess.State = domain.StateDelivered
	sess.LastUpdatedAt = now
	if err := s.Save(ctx, sess); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	now = now.Add(59 * time.Minute)
	got, _ := s.Get(ctx, "user-1")
	if got.State != domain.StateDelivered {
		t.Error("session expired before its TTL")
	}

	now = now.Add(2 * time.Minute)
	got, _ = s.Get(ctx, "user-1")
	if got.State != domain.StateFresh {
		t.Errorf("expired session returned state %q, want fresh", got.State)
	}
}

func TestStore_LastWriteByTimestampWins(t *testing.T) {
	s := New(time.Hour)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	newer := domain.NewSession("user-1", base)
	newer.State = domain.StateDelivered
	newer.LastUpdatedAt = base.Add(time.Minute)
	if err := s.Save(ctx, newer); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// A duplicate delivery replaying an older snapshot must not regress.
	older := domain.NewSession("user-1", base)
	older.State = domain.StateAwaitingName
	older.LastUpdatedAt = base
	if err := s.Save(ctx, older); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, _ := s.Get(ctx, "user-1")
	if got.State != domain.StateDelivered {
		t.Errorf("State = %q, older write overwrote newer", got.State)
	}
}

func TestStore_ListOrdersByRecency(t *testing.T) {
	s := New(time.Hour)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		sess := domain.NewSession(id, base)
		sess.LastUpdatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.Save(ctx, sess); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	got, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "c" || got[1].ID != "b" {
		t.Errorf("order = [%s %s], want [c b]", got[0].ID, got[1].ID)
	}
}

package generator

import (
	"strings"
	"testing"
	"time"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

func TestInputFromSession_PreservesInterviewOrder(t *testing.T) {
	sess := domain.NewSession("user-1", time.Now())
	sess.SetField("name", "Maria")
	sess.SetField("business", "doces artesanais")
	sess.SetField("challenge", "atrair clientes")

	in := InputFromSession(sess, false)

	if in.SessionID != "user-1" {
		t.Errorf("SessionID = %q", in.SessionID)
	}
	if in.Simplified {
		t.Error("Simplified = true, want false")
	}

	wantOrder := []string{"name", "business", "challenge"}
	if len(in.Fields) != len(wantOrder) {
		t.Fatalf("fields = %d, want %d", len(in.Fields), len(wantOrder))
	}
	for i, want := range wantOrder {
		if in.Fields[i].Name != want {
			t.Errorf("Fields[%d].Name = %q, want %q", i, in.Fields[i].Name, want)
		}
	}
	if in.Fields[0].Value != "Maria" {
		t.Errorf("name value = %q", in.Fields[0].Value)
	}
}

func TestFallbackArtifact_AlwaysNonEmpty(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{
			name: "full fields",
			in: Input{Fields: []Field{
				{Name: "name", Value: "Maria"},
				{Name: "challenge", Value: "atrair clientes novos"},
			}},
		},
		{name: "no fields", in: Input{}},
		{
			name: "name only",
			in:   Input{Fields: []Field{{Name: "name", Value: "João"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackArtifact(tt.in)
			if strings.TrimSpace(got) == "" {
				t.Fatal("fallback artifact is empty")
			}
		})
	}
}

func TestFallbackArtifact_UsesCollectedFields(t *testing.T) {
	in := Input{Fields: []Field{
		{Name: "name", Value: "Maria"},
		{Name: "challenge", Value: "atrair clientes novos"},
	}}

	got := FallbackArtifact(in)
	if !strings.Contains(got, "Maria") {
		t.Errorf("artifact does not address the user: %q", got)
	}
	if !strings.Contains(got, "atrair clientes novos") {
		t.Errorf("artifact does not echo the challenge: %q", got)
	}
}

func TestTrimToBudget_TruncatesLongestFieldFirst(t *testing.T) {
	g := NewHTTP("key", "model", WithMaxInputTokens(50))

	long := strings.Repeat("palavra coração esperança ", 100)
	in := Input{
		SessionID: "user-1",
		Fields: []Field{
			{Name: "name", Value: "Maria"},
			{Name: "challenge", Value: long},
		},
	}

	got := g.trimToBudget(in)

	if got.Fields[0].Value != "Maria" {
		t.Errorf("short field was touched: %q", got.Fields[0].Value)
	}
	if len(got.Fields[1].Value) >= len(long) {
		t.Error("long field was not truncated")
	}
	if got.Fields[1].Name != "challenge" {
		t.Errorf("field name changed: %q", got.Fields[1].Name)
	}
}

func TestTrimToBudget_DisabledBudgetIsIdentity(t *testing.T) {
	g := NewHTTP("key", "model", WithMaxInputTokens(0))

	long := strings.Repeat("texto ", 5000)
	in := Input{Fields: []Field{{Name: "challenge", Value: long}}}

	got := g.trimToBudget(in)
	if got.Fields[0].Value != long {
		t.Error("budget disabled but field was truncated")
	}
}

// Package generator produces the personalized artifact from the collected
// interview answers. The engine treats it as an opaque, failure-prone
// collaborator and always has a static fallback.
package generator

import (
	"context"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
)

// Input is the structured request built from a session's collected fields.
type Input struct {
	SessionID string

	// Fields are the collected answers in interview order.
	Fields []Field

	// Simplified asks for the cheaper, shorter generation used as the
	// one-shot retry after a primary failure.
	Simplified bool
}

// Field is one collected answer.
type Field struct {
	Name  string
	Value string
}

// InputFromSession builds a generation input preserving field order.
func InputFromSession(sess *domain.Session, simplified bool) Input {
	in := Input{SessionID: sess.ID, Simplified: simplified}
	for _, name := range sess.FieldOrder {
		in.Fields = append(in.Fields, Field{Name: name, Value: sess.Fields[name]})
	}
	return in
}

// Generator produces the artifact text. Implementations may fail or be
// slow; callers bound every call with a context timeout.
type Generator interface {
	Generate(ctx context.Context, in Input) (string, error)
}

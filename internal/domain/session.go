// Package domain holds the conversation types shared by the engine,
// the session stores and the interaction recorder.
package domain

import "time"

// ConversationState identifies where a session is in the intake flow.
type ConversationState string

const (
	// StateFresh is the implicit state of a user we have never seen
	// (or whose session expired).
	StateFresh ConversationState = "fresh"

	// StateAwaitingName waits for the user's name.
	StateAwaitingName ConversationState = "awaiting_name"

	// StateAwaitingContext waits for a short description of the user's business.
	StateAwaitingContext ConversationState = "awaiting_context"

	// StateAwaitingReference waits for an Instagram handle or profile reference.
	StateAwaitingReference ConversationState = "awaiting_reference"

	// StateAwaitingStatement waits for the user's main challenge statement.
	StateAwaitingStatement ConversationState = "awaiting_statement"

	// StateGenerating is persisted while the artifact is being produced.
	StateGenerating ConversationState = "generating"

	// StateDelivered means the artifact has been sent; commands are accepted.
	StateDelivered ConversationState = "delivered"

	// StateAwaitingCommand is entered after a post-delivery menu reminder;
	// commands are accepted exactly as in StateDelivered.
	StateAwaitingCommand ConversationState = "awaiting_command"
)

// Valid reports whether s is one of the declared states.
func (s ConversationState) Valid() bool {
	switch s {
	case StateFresh, StateAwaitingName, StateAwaitingContext,
		StateAwaitingReference, StateAwaitingStatement,
		StateGenerating, StateDelivered, StateAwaitingCommand:
		return true
	}
	return false
}

// Terminal reports whether s is a post-delivery state that only accepts
// commands.
func (s ConversationState) Terminal() bool {
	return s == StateDelivered || s == StateAwaitingCommand
}

// Session is the durable per-user conversation state, keyed by the channel
// address (phone number).
type Session struct {
	ID    string            `json:"id"`
	State ConversationState `json:"state"`

	// Fields is the open-ended map of collected answers. FieldOrder
	// preserves first-set order so that the generation prompt and the
	// reporting snapshot read in interview order.
	Fields     map[string]string `json:"fields,omitempty"`
	FieldOrder []string          `json:"field_order,omitempty"`

	GeneratedContent string    `json:"generated_content,omitempty"`
	GeneratedAt      time.Time `json:"generated_at,omitempty"`

	StartedAt     time.Time `json:"started_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// NewSession returns a fresh session for the given channel address.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		State:     StateFresh,
		Fields:    make(map[string]string),
		StartedAt: now,
	}
}

// SetField records an answer, preserving the order in which fields were
// first collected.
func (s *Session) SetField(name, value string) {
	if s.Fields == nil {
		s.Fields = make(map[string]string)
	}
	if _, seen := s.Fields[name]; !seen {
		s.FieldOrder = append(s.FieldOrder, name)
	}
	s.Fields[name] = value
}

// Field returns a collected answer, or "" when absent.
func (s *Session) Field(name string) string {
	return s.Fields[name]
}

// Reset clears collected answers and returns the session to the fresh
// state, keeping the ID and StartedAt. Generated content is kept so the
// regeneration cooldown survives a restart of the flow.
func (s *Session) Reset() {
	s.State = StateFresh
	s.Fields = make(map[string]string)
	s.FieldOrder = nil
}

// Snapshot copies the collected fields for reporting.
func (s *Session) Snapshot() map[string]string {
	snap := make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		snap[k] = v
	}
	return snap
}

// Clone returns a deep copy, used by the in-memory store so callers never
// alias stored state.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Fields = make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		cp.Fields[k] = v
	}
	cp.FieldOrder = append([]string(nil), s.FieldOrder...)
	return &cp
}

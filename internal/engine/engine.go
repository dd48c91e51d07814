// Package engine owns the conversation finite-state machine. On each
// inbound event it loads the session, computes the transition and its side
// effects (generator call, outbound sends), and writes the session back.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/domain"
	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/generator"
	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/store"
)

const (
	defaultRestartPhrase     = "quero minha carta"
	defaultCooldown          = 24 * time.Hour
	defaultGenerationTimeout = 45 * time.Second
)

// Sender delivers outbound text to a user; oversized text is chunked by
// the implementation.
type Sender interface {
	Send(ctx context.Context, recipient, text string) error
}

// Milestones are recorded best-effort; implementations must never fail the
// caller.
type Milestones interface {
	Record(ctx context.Context, sessionID string, milestone domain.Milestone, snapshot map[string]string)
}

// Config tunes the engine.
type Config struct {
	// RestartPhrase unconditionally resets the flow, regardless of state.
	RestartPhrase string

	// Cooldown is the minimum interval between accepted regenerations.
	Cooldown time.Duration

	// GenerationTimeout bounds each generator call so a slow generation
	// never hangs the per-id queue; on timeout the fallback path runs.
	GenerationTimeout time.Duration
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine drives the intake conversation.
type Engine struct {
	store      store.SessionStore
	sender     Sender
	gen        generator.Generator
	milestones Milestones
	flow       []Step
	cfg        Config
	locks      *keyedLocks
	logger     *slog.Logger
	now        func() time.Time
}

// New creates an engine. milestones may be nil when reporting is disabled.
func New(st store.SessionStore, sender Sender, gen generator.Generator, milestones Milestones, flow []Step, cfg Config, opts ...Option) *Engine {
	if cfg.RestartPhrase == "" {
		cfg.RestartPhrase = defaultRestartPhrase
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaultCooldown
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = defaultGenerationTimeout
	}

	e := &Engine{
		store:      st,
		sender:     sender,
		gen:        gen,
		milestones: milestones,
		flow:       flow,
		cfg:        cfg,
		locks:      newKeyedLocks(),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle processes one inbound event for a user. Calls for the same id are
// serialized; state is re-derived from the freshly read session, so a
// duplicate delivery re-runs the same transition instead of resuming
// partial work.
func (e *Engine) Handle(ctx context.Context, sessionID string, event domain.InboundEvent) error {
	unlock := e.locks.lock(sessionID)
	defer unlock()

	sess, err := e.store.Get(ctx, sessionID)
	if err != nil {
		e.logger.Error("session load failed, starting fresh",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		sess = domain.NewSession(sessionID, e.now())
	}

	dispatchErr := e.dispatch(ctx, sess, event)

	var chErr *domain.ChannelError
	if dispatchErr != nil && !errors.As(dispatchErr, &chErr) {
		// Internal failure that was not a channel send problem: the user
		// gets a generic apology and the state stays where it was.
		if err := e.sender.Send(ctx, sessionID, msgApology); err != nil {
			e.logger.Warn("failed to send apology",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	// Every branch writes the session back, even after internal errors,
	// so the conversation stays resumable.
	if err := e.store.Save(ctx, sess); err != nil {
		e.logger.Error("session save failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	return dispatchErr
}

func (e *Engine) dispatch(ctx context.Context, sess *domain.Session, event domain.InboundEvent) error {
	// The restart trigger takes precedence over all state handling.
	if event.Type == domain.EventText && e.isRestartTrigger(event.Text) {
		return e.restartFlow(ctx, sess, msgWelcome)
	}

	switch {
	case sess.State == domain.StateFresh:
		return e.startFlow(ctx, sess)

	case sess.State == domain.StateGenerating:
		return e.resumeGenerating(ctx, sess)

	case sess.State.Terminal():
		return e.handleCommand(ctx, sess, event)

	default:
		if step := e.stepFor(sess.State); step != nil {
			return e.handleStep(ctx, sess, step, event)
		}
		// A state we no longer know is a contract violation from the
		// store; restart rather than strand the user.
		e.logger.Error("session in unknown flow state, restarting",
			slog.String("session_id", sess.ID),
			slog.String("state", string(sess.State)),
		)
		return e.restartFlow(ctx, sess, msgWelcome)
	}
}

func (e *Engine) isRestartTrigger(text string) bool {
	return containsWord(Normalize(text), Normalize(e.cfg.RestartPhrase))
}

func (e *Engine) startFlow(ctx context.Context, sess *domain.Session) error {
	first := e.flow[0]
	sess.State = first.State
	e.record(ctx, sess, domain.MilestoneFlowStarted)
	return e.send(ctx, sess.ID, msgWelcome+"\n\n"+first.Prompt)
}

func (e *Engine) restartFlow(ctx context.Context, sess *domain.Session, greeting string) error {
	sess.Reset()
	first := e.flow[0]
	sess.State = first.State
	e.record(ctx, sess, domain.MilestoneFlowStarted)
	return e.send(ctx, sess.ID, greeting+"\n\n"+first.Prompt)
}

func (e *Engine) handleStep(ctx context.Context, sess *domain.Session, step *Step, event domain.InboundEvent) error {
	var answer string

	switch event.Type {
	case domain.EventMedia:
		if !step.AcceptsMedia {
			// Media in a text-only step: explain, keep state.
			return e.send(ctx, sess.ID, msgNotExpectingMedia)
		}
		answer = event.MediaRef

	case domain.EventText:
		answer = strings.TrimSpace(event.Text)
		if utf8.RuneCountInString(answer) < step.MinLen {
			// Invalid input re-prompts without advancing state.
			return e.send(ctx, sess.ID, step.Reprompt)
		}

	default:
		return e.send(ctx, sess.ID, step.Reprompt)
	}

	sess.SetField(step.Field, answer)

	if next := e.stepAfter(step); next != nil {
		sess.State = next.State
		return e.send(ctx, sess.ID, next.Prompt)
	}
	return e.generateAndDeliver(ctx, sess)
}

// resumeGenerating handles a message arriving while the session is in the
// generating state. Within one process that only happens behind the per-id
// lock, so a persisted generating state means a previous process died
// mid-generation; after a grace period the generation is re-run.
func (e *Engine) resumeGenerating(ctx context.Context, sess *domain.Session) error {
	if e.now().Sub(sess.LastUpdatedAt) > 2*e.cfg.GenerationTimeout {
		return e.generateAndDeliver(ctx, sess)
	}
	return e.send(ctx, sess.ID, msgStillWorking)
}

func (e *Engine) generateAndDeliver(ctx context.Context, sess *domain.Session) error {
	sess.State = domain.StateGenerating
	// Persist the generating state before the slow call so a crash leaves
	// a recoverable marker.
	if err := e.store.Save(ctx, sess); err != nil {
		e.logger.Warn("failed to persist generating state",
			slog.String("session_id", sess.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := e.send(ctx, sess.ID, msgPreparing); err != nil {
		e.logger.Warn("failed to send preparing notice",
			slog.String("session_id", sess.ID),
			slog.String("error", err.Error()),
		)
	}

	artifact := e.produceArtifact(ctx, sess)

	sess.GeneratedContent = artifact
	sess.GeneratedAt = e.now()
	sess.State = domain.StateDelivered

	if err := e.send(ctx, sess.ID, artifact); err != nil {
		// The artifact is stored; the user can ask again and the state
		// remains delivered.
		e.logger.Error("artifact delivery failed",
			slog.String("session_id", sess.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deliver artifact: %w", err)
	}

	e.record(ctx, sess, domain.MilestoneDelivered)

	if err := e.send(ctx, sess.ID, msgMenu); err != nil {
		e.logger.Warn("failed to send menu",
			slog.String("session_id", sess.ID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// produceArtifact runs the degrade chain: primary generation, one simpler
// retry, then the static fallback. It always returns a non-empty artifact.
func (e *Engine) produceArtifact(ctx context.Context, sess *domain.Session) string {
	in := generator.InputFromSession(sess, false)

	genCtx, cancel := context.WithTimeout(ctx, e.cfg.GenerationTimeout)
	text, err := e.gen.Generate(genCtx, in)
	cancel()
	if err == nil {
		return text
	}
	e.logger.Warn("primary generation failed, trying simplified request",
		slog.String("session_id", sess.ID),
		slog.String("error", err.Error()),
	)

	simple := generator.InputFromSession(sess, true)
	genCtx, cancel = context.WithTimeout(ctx, e.cfg.GenerationTimeout)
	text, err = e.gen.Generate(genCtx, simple)
	cancel()
	if err == nil {
		return text
	}
	e.logger.Error("simplified generation failed, using static fallback",
		slog.String("session_id", sess.ID),
		slog.String("error", err.Error()),
	)

	return generator.FallbackArtifact(in)
}

func (e *Engine) handleCommand(ctx context.Context, sess *domain.Session, event domain.InboundEvent) error {
	if event.Type == domain.EventMedia {
		return e.send(ctx, sess.ID, msgNotExpectingMedia)
	}

	cmd, ok := RecognizeCommand(event.Text)
	if !ok {
		// Unrecognized chatter after delivery: remind the menu once and
		// settle in awaiting_command.
		sess.State = domain.StateAwaitingCommand
		return e.send(ctx, sess.ID, msgMenu)
	}

	switch cmd {
	case CommandHelp:
		e.record(ctx, sess, domain.MilestoneCommandAnswered)
		return e.send(ctx, sess.ID, msgHelp)

	case CommandInspire:
		e.record(ctx, sess, domain.MilestoneCommandAnswered)
		quote := inspirations[int(e.now().Unix())%len(inspirations)]
		return e.send(ctx, sess.ID, quote)

	case CommandRegenerate:
		if !sess.GeneratedAt.IsZero() && e.now().Sub(sess.GeneratedAt) < e.cfg.Cooldown {
			return e.send(ctx, sess.ID, msgCooldown)
		}
		e.record(ctx, sess, domain.MilestoneRegenerated)
		return e.restartFlow(ctx, sess, msgWelcomeBack)

	case CommandEnd:
		e.record(ctx, sess, domain.MilestoneCommandAnswered)
		return e.send(ctx, sess.ID, msgFarewell)
	}
	return nil
}

func (e *Engine) stepFor(state domain.ConversationState) *Step {
	for i := range e.flow {
		if e.flow[i].State == state {
			return &e.flow[i]
		}
	}
	return nil
}

func (e *Engine) stepAfter(step *Step) *Step {
	for i := range e.flow {
		if e.flow[i].State == step.State && i+1 < len(e.flow) {
			return &e.flow[i+1]
		}
	}
	return nil
}

func (e *Engine) send(ctx context.Context, recipient, text string) error {
	if err := e.sender.Send(ctx, recipient, text); err != nil {
		return fmt.Errorf("send to %s: %w", recipient, err)
	}
	return nil
}

func (e *Engine) record(ctx context.Context, sess *domain.Session, milestone domain.Milestone) {
	if e.milestones == nil {
		return
	}
	e.milestones.Record(ctx, sess.ID, milestone, sess.Snapshot())
}

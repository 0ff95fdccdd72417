package voice

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/novachat/nova/pkg/logger"
	"github.com/novachat/nova/pkg/model"
	"github.com/novachat/nova/pkg/voice/cooldown"
)

// Metrics receives gate pipeline measurements. Implementations must be
// cheap; the engine calls them inline.
type Metrics interface {
	RecordGateDecision(stage string, shortCircuited bool)
	RecordModelCall(outcome string, duration time.Duration)
	RecordRewrite()
}

type noopMetrics struct{}

func (noopMetrics) RecordGateDecision(string, bool)       {}
func (noopMetrics) RecordModelCall(string, time.Duration) {}
func (noopMetrics) RecordRewrite()                        {}

// Tunables are the hot-reloadable engine settings.
type Tunables struct {
	// ReflectionCooldown is the minimum gap between reflection lines per
	// conversation.
	ReflectionCooldown time.Duration

	// ContinuityCooldown is the minimum gap between memory references per
	// conversation.
	ContinuityCooldown time.Duration

	// ModelTimeout bounds the single external model call.
	ModelTimeout time.Duration
}

// DefaultTunables returns the stock engine settings.
func DefaultTunables() Tunables {
	return Tunables{
		ReflectionCooldown: 45 * time.Second,
		ContinuityCooldown: 10 * time.Minute,
		ModelTimeout:       20 * time.Second,
	}
}

// Engine is the gate pipeline orchestrator.
type Engine struct {
	cooldowns cooldown.Store
	memories  MemoryReader
	caller    model.Caller
	log       logger.Logger
	rng       Rand
	metrics   Metrics
	tracer    trace.Tracer
	now       func() time.Time
	locks     *keyedMutex
	stages    []gateStage

	mu       sync.RWMutex
	tunables Tunables
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithRand sets the randomness source, letting tests pin phrase selection.
func WithRand(r Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock sets the time source, letting tests drive cooldowns.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTunables sets the initial engine tunables.
func WithTunables(t Tunables) Option {
	return func(e *Engine) { e.tunables = t }
}

// NewEngine creates a gate pipeline engine.
func NewEngine(cooldowns cooldown.Store, memories MemoryReader, caller model.Caller, opts ...Option) *Engine {
	e := &Engine{
		cooldowns: cooldowns,
		memories:  memories,
		caller:    caller,
		log:       logger.Global(),
		rng:       newLockedRand(),
		metrics:   noopMetrics{},
		tracer:    otel.Tracer("nova/voice"),
		now:       time.Now,
		locks:     newKeyedMutex(),
		tunables:  DefaultTunables(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.stages = e.buildStages()
	return e
}

// Retune updates the hot-reloadable settings.
func (e *Engine) Retune(t Tunables) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t.ReflectionCooldown > 0 {
		e.tunables.ReflectionCooldown = t.ReflectionCooldown
	}
	if t.ContinuityCooldown > 0 {
		e.tunables.ContinuityCooldown = t.ContinuityCooldown
	}
	if t.ModelTimeout > 0 {
		e.tunables.ModelTimeout = t.ModelTimeout
	}
}

func (e *Engine) reflectionWindow() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tunables.ReflectionCooldown
}

func (e *Engine) continuityWindow() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tunables.ContinuityCooldown
}

func (e *Engine) modelTimeout() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tunables.ModelTimeout
}

// Evaluate runs one turn through the gate pipeline. The short-circuit stages
// run in fixed order; the first match resolves the turn with no model call.
// Otherwise the model is called exactly once and its output post-processed.
// Evaluate never returns an error for collaborator failures; those resolve
// to fixed fallback lines.
func (e *Engine) Evaluate(ctx context.Context, t *Turn) Outcome {
	ctx, span := e.tracer.Start(ctx, "voice.evaluate",
		trace.WithAttributes(attribute.String("voice.mode", string(t.Mode))))
	defer span.End()

	last := strings.TrimSpace(t.LastUserMessage())

	for _, st := range e.stages {
		res := st.match(ctx, t, last)
		if res == nil {
			continue
		}
		out := Outcome{
			Response:       res.response,
			Stage:          st.name,
			Reason:         res.reason,
			ShortCircuited: true,
			MemoryReads:    res.memoryReads,
		}
		e.metrics.RecordGateDecision(st.name, true)
		span.SetAttributes(
			attribute.String("voice.stage", st.name),
			attribute.Bool("voice.short_circuited", true),
		)
		return out
	}

	out := e.modelStage(ctx, t, last)
	e.metrics.RecordGateDecision(StageModelCall, false)
	span.SetAttributes(
		attribute.String("voice.stage", StageModelCall),
		attribute.Bool("voice.short_circuited", false),
		attribute.Bool("voice.rewritten", out.Rewritten),
	)
	return out
}

// modelStage is the default path: one model call, then deterministic
// post-processing. The call is the pipeline's only suspension point; a
// request-scoped timeout wraps it and timeout is treated as failure.
func (e *Engine) modelStage(ctx context.Context, t *Turn, last string) Outcome {
	style := StyleFor(t.Mode)
	prompt := enhanceSystemPrompt(t.SystemPrompt, t.Mode, style)

	callCtx, cancel := context.WithTimeout(ctx, e.modelTimeout())
	defer cancel()

	start := e.now()
	text, err := e.caller.Complete(callCtx, t.Messages, prompt)
	elapsed := e.now().Sub(start)

	if err != nil {
		e.metrics.RecordModelCall("error", elapsed)
		e.log.WarnContext(ctx, "model call failed, using apology line", "error", err)
		return Outcome{
			Response:   apologyReply,
			Stage:      StageModelCall,
			Reason:     "model_error",
			ModelCalls: 1,
		}
	}
	e.metrics.RecordModelCall("ok", elapsed)

	rewritten := false
	if phrase, found := findBannedPhrase(text, last); found {
		sanitized := Sanitize(text, phrase)
		if sanitized != text {
			text = sanitized
			rewritten = true
			e.metrics.RecordRewrite()
		}
	}

	if !hasProvidedContext(t.Messages) {
		text = TruncateSentences(text, style.MaxSentences)
	}

	return Outcome{
		Response:   text,
		Stage:      StageModelCall,
		Rewritten:  rewritten,
		ModelCalls: 1,
	}
}

// hasProvidedContext reports whether the conversation carries enough user
// context to lift the sentence budget: a recent long or question-bearing
// user message, or at least two substantial non-greeting user messages.
func hasProvidedContext(msgs []model.Message) bool {
	var userMsgs []string
	for _, m := range msgs {
		if m.Role == model.RoleUser {
			userMsgs = append(userMsgs, m.Content)
		}
	}

	recent := userMsgs
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	for _, m := range recent {
		if len(m) > 50 || strings.Contains(m, "?") {
			return true
		}
	}

	substantial := 0
	for _, m := range userMsgs {
		norm := normalize(m)
		if greetingPattern.MatchString(norm) {
			continue
		}
		if wordCount(m) >= 3 && len(m) > 12 {
			substantial++
		}
	}
	return substantial >= 2
}

// keyedMutex serializes gate evaluation state per conversation.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

// lock acquires the mutex for key and returns its release func. Entries are
// reference-counted and removed when idle so the map stays bounded by
// in-flight requests.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

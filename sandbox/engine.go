package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.starlark.net/starlark"
	"go.uber.org/zap"
)

// TruncationMarker is appended to script output that exceeded the configured
// ceiling. Excess output is never dropped silently.
const TruncationMarker = "\n[OUTPUT TRUNCATED]"

// Default budgets for one execution.
const (
	DefaultMaxOutputLen = 50000
	DefaultMaxCalls     = 20
	DefaultMaxDepth     = 5
	DefaultTimeout      = 120 * time.Second
)

// Config carries the per-execution budgets. Zero fields fall back to the
// defaults.
type Config struct {
	MaxOutputLen int
	MaxCalls     int
	MaxDepth     int
	Timeout      time.Duration
	Depth        int
}

// DefaultConfig returns the default execution budgets.
func DefaultConfig() Config {
	return Config{
		MaxOutputLen: DefaultMaxOutputLen,
		MaxCalls:     DefaultMaxCalls,
		MaxDepth:     DefaultMaxDepth,
		Timeout:      DefaultTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxOutputLen <= 0 {
		c.MaxOutputLen = DefaultMaxOutputLen
	}
	if c.MaxCalls <= 0 {
		c.MaxCalls = DefaultMaxCalls
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Result is the terminal, immutable outcome of one execution. Exactly one
// Result is produced per Execute call.
type Result struct {
	Result    string
	Output    string
	Error     string
	CallCount int
}

// Observer receives execution events for metrics collection. All methods may
// be called concurrently from different executions.
type Observer interface {
	ExecutionDone(status string, elapsed time.Duration)
	DelegationDone(outcome string)
	ValidationRejected(violations int)
	OutputTruncated()
}

// Engine orchestrates validation, restricted scope construction, and script
// execution. An Engine is stateless across executions and safe for
// concurrent use; each Execute call owns its broker and buffers.
type Engine struct {
	validator *Validator
	logger    *zap.Logger
	observer  Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver attaches an execution metrics observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine creates an execution engine. A nil logger defaults to a no-op
// logger.
func NewEngine(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		validator: NewValidator(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs one script against the given context snapshot. It always
// returns a Result, never an error: validation failures and runtime faults
// are captured into the Result's Error field, and partially produced output
// and result values are preserved.
func (e *Engine) Execute(ctx context.Context, sessionID, script string, store *ContextStore, cfg Config, transport Transport) *Result {
	start := time.Now()
	cfg = cfg.withDefaults()
	if store == nil {
		store = NewContextStore(nil)
	}

	verdict := e.validator.Validate(script)
	if !verdict.OK {
		e.logger.Debug("script rejected",
			zap.String("session_id", sessionID),
			zap.Int("violations", len(verdict.Violations)))
		if e.observer != nil {
			e.observer.ValidationRejected(len(verdict.Violations))
			e.observer.ExecutionDone("rejected", time.Since(start))
		}
		return &Result{Error: strings.Join(verdict.Violations, "\n")}
	}

	broker := newBroker(sessionID, store, transport, cfg, e.logger, e.observer)
	output := &outputBuffer{limit: cfg.MaxOutputLen}

	thread := &starlark.Thread{
		Name: "rlm:" + sessionID,
		Print: func(_ *starlark.Thread, msg string) {
			output.writeLine(msg)
		},
	}

	var globals starlark.StringDict
	var execErr error
	func() {
		// The one-result-per-execution contract must survive even an
		// interpreter bug: an escaped panic is converted into a fault.
		defer func() {
			if r := recover(); r != nil {
				execErr = fmt.Errorf("internal error: %v", r)
			}
		}()
		globals, execErr = starlark.ExecFileOptions(fileOptions, thread, "script.star", script, buildScope(ctx, store, broker))
	}()

	res := &Result{
		Output:    output.value(),
		CallCount: broker.CallCount(),
	}
	if output.truncated() {
		res.Output += TruncationMarker
		if e.observer != nil {
			e.observer.OutputTruncated()
		}
	}
	if execErr != nil {
		res.Error = formatFault(execErr)
	}
	if v, ok := globals["result"]; ok {
		res.Result = coerceResult(v)
	}

	status := "ok"
	if res.Error != "" {
		status = "fault"
	}
	if e.observer != nil {
		e.observer.ExecutionDone(status, time.Since(start))
	}
	e.logger.Debug("execution complete",
		zap.String("session_id", sessionID),
		zap.String("status", status),
		zap.Int("call_count", res.CallCount),
		zap.Int("output_len", len(res.Output)),
		zap.Duration("elapsed", time.Since(start)))
	return res
}

// formatFault renders a runtime fault as kind, message, and best-effort
// source trace.
func formatFault(err error) string {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return fmt.Sprintf("EvalError: %s\n%s", evalErr.Msg, evalErr.Backtrace())
	}
	return err.Error()
}

// coerceResult converts the script's result slot to a string, applying
// Starlark's textual rendering to non-string values.
func coerceResult(v starlark.Value) string {
	if v == nil {
		return ""
	}
	if s, ok := starlark.AsString(v); ok {
		return s
	}
	return v.String()
}

// outputBuffer captures script print output up to one byte past the limit;
// anything beyond that can only ever be replaced by the truncation marker,
// so it is not retained.
type outputBuffer struct {
	limit   int
	buf     strings.Builder
	clipped bool
}

func (o *outputBuffer) writeLine(msg string) {
	room := o.limit + 1 - o.buf.Len()
	line := msg + "\n"
	if room <= 0 {
		o.clipped = true
		return
	}
	if len(line) > room {
		line = line[:room]
		o.clipped = true
	}
	o.buf.WriteString(line)
}

func (o *outputBuffer) truncated() bool {
	return o.clipped || o.buf.Len() > o.limit
}

func (o *outputBuffer) value() string {
	s := o.buf.String()
	if len(s) > o.limit {
		return s[:o.limit]
	}
	return s
}

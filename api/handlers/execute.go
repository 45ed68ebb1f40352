package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/BaSui01/rlmbox/api"
	"github.com/BaSui01/rlmbox/config"
	"github.com/BaSui01/rlmbox/sandbox"
	"github.com/BaSui01/rlmbox/session"
	"github.com/BaSui01/rlmbox/types"
)

// Transport events the handler may report.
type activityTracker interface {
	ExecutionStarted()
	ExecutionFinished()
}

// ExecuteHandler serves POST /execute: one script execution per request.
type ExecuteHandler struct {
	engine   *sandbox.Engine
	sessions session.Store
	cfg      config.SandboxConfig
	sem      *semaphore.Weighted
	tracker  activityTracker
	logger   *zap.Logger

	// newTransport builds the delegation client for one execution. Tests
	// swap it to observe delegation traffic.
	newTransport func(callbackURL string) sandbox.Transport
}

// NewExecuteHandler creates the execution handler. The semaphore caps
// concurrent executions at cfg.MaxConcurrent.
func NewExecuteHandler(engine *sandbox.Engine, sessions session.Store, cfg config.SandboxConfig, logger *zap.Logger) *ExecuteHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	h := &ExecuteHandler{
		engine:   engine,
		sessions: sessions,
		cfg:      cfg,
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
		logger:   logger,
	}
	h.newTransport = func(callbackURL string) sandbox.Transport {
		return api.NewHTTPTransport(callbackURL, logger)
	}
	return h
}

// SetActivityTracker attaches an in-flight execution gauge.
func (h *ExecuteHandler) SetActivityTracker(t activityTracker) {
	h.tracker = t
}

// HandleExecute runs one script and returns its terminal result. Validation
// failures and runtime faults still produce a 200 response: they are part of
// the execution result, not transport errors.
func (h *ExecuteHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, h.logger, types.NewError(types.ErrInvalidRequest, "method not allowed").WithHTTPStatus(http.StatusMethodNotAllowed))
		return
	}

	var req types.ExecuteRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	if err := h.sem.Acquire(r.Context(), 1); err != nil {
		WriteError(w, h.logger, types.NewError(types.ErrInternalError, "request cancelled while queued").WithCause(err))
		return
	}
	defer h.sem.Release(1)
	if h.tracker != nil {
		h.tracker.ExecutionStarted()
		defer h.tracker.ExecutionFinished()
	}

	sess, err := h.sessions.Get(r.Context(), req.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		sess = session.NewSession(req.SessionID)
	} else if err != nil {
		WriteError(w, h.logger, types.NewError(types.ErrSessionStore, "failed to load session").WithCause(err).WithRetryable(true))
		return
	}

	h.logger.Info("executing script",
		zap.String("session_id", req.SessionID),
		zap.Int("depth", req.Depth),
		zap.Int("code_length", len(req.Code)),
		zap.Int("context_entries", len(req.Context)))

	result := h.engine.Execute(
		r.Context(),
		req.SessionID,
		req.Code,
		sandbox.NewContextStore(req.Context),
		h.executionConfig(&req),
		h.newTransport(req.CallbackURL),
	)

	sess.RecordExecution(result.CallCount)
	if err := h.sessions.Put(r.Context(), sess); err != nil {
		// Session bookkeeping must not lose an execution result.
		h.logger.Warn("failed to record session activity",
			zap.String("session_id", req.SessionID), zap.Error(err))
	}

	h.logger.Info("execution complete",
		zap.String("session_id", req.SessionID),
		zap.Int("call_count", result.CallCount),
		zap.Bool("faulted", result.Error != ""))

	WriteJSON(w, http.StatusOK, types.ExecuteResponse{
		SessionID: req.SessionID,
		Result:    result.Result,
		Output:    result.Output,
		Error:     result.Error,
		CallCount: result.CallCount,
	})
}

// executionConfig resolves per-request overrides against configured budgets.
func (h *ExecuteHandler) executionConfig(req *types.ExecuteRequest) sandbox.Config {
	cfg := sandbox.Config{
		MaxOutputLen: h.cfg.MaxOutputLen,
		MaxCalls:     h.cfg.MaxCalls,
		MaxDepth:     h.cfg.MaxDepth,
		Timeout:      h.cfg.Timeout,
		Depth:        req.Depth,
	}
	if req.MaxOutputLen > 0 {
		cfg.MaxOutputLen = req.MaxOutputLen
	}
	if req.MaxCalls > 0 {
		cfg.MaxCalls = req.MaxCalls
	}
	if req.MaxDepth > 0 {
		cfg.MaxDepth = req.MaxDepth
	}
	if req.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}
	return cfg
}

func validateRequest(req *types.ExecuteRequest) error {
	if req.SessionID == "" {
		return types.NewError(types.ErrInvalidRequest, "session_id is required")
	}
	if req.Code == "" {
		return types.NewError(types.ErrInvalidRequest, "code is required")
	}
	if req.CallbackURL == "" {
		return types.NewError(types.ErrInvalidRequest, "callback_url is required")
	}
	if req.Depth < 0 {
		return types.NewError(types.ErrInvalidRequest, "depth must be non-negative")
	}
	return nil
}

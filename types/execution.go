package types

// ExecuteRequest asks the sandbox to run one script against a context corpus.
type ExecuteRequest struct {
	SessionID   string     `json:"session_id"`
	Code        string     `json:"code"`
	Context     ContextMap `json:"context"`
	CallbackURL string     `json:"callback_url"`
	Depth       int        `json:"depth"`
	MaxDepth    int        `json:"max_depth"`

	// Optional per-request overrides; zero means the configured default.
	MaxCalls       int `json:"max_calls,omitempty"`
	MaxOutputLen   int `json:"max_output_len,omitempty"`
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// ExecuteResponse is the terminal result of one script execution.
type ExecuteResponse struct {
	SessionID string `json:"session_id"`
	Result    string `json:"result"`
	Output    string `json:"output"`
	Error     string `json:"error,omitempty"`
	CallCount int    `json:"call_count"`
}

// RecurseRequest is sent to the orchestrator when a running script delegates
// a sub-task.
type RecurseRequest struct {
	SessionID string     `json:"session_id"`
	Prompt    string     `json:"prompt"`
	Context   ContextMap `json:"context"`
	Depth     int        `json:"depth"`
}

// RecurseResponse carries the orchestrator's answer to a delegation. A
// missing result is treated as an empty string by the caller, not as an
// error.
type RecurseResponse struct {
	Result string `json:"result"`
}

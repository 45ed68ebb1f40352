package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/rlmbox/types"
)

// RecursePath is the orchestrator route that serves delegation requests,
// relative to the per-request callback URL.
const RecursePath = "/rlm/recurse"

// HTTPTransport posts delegation requests back to the orchestrator that
// submitted the script. One transport is bound to one execution's callback
// URL; timeouts are enforced by the broker through the request context.
type HTTPTransport struct {
	client     *http.Client
	recurseURL string
	logger     *zap.Logger
}

// NewHTTPTransport creates a transport for the given orchestrator callback
// URL. A nil logger defaults to a no-op logger.
func NewHTTPTransport(callbackURL string, logger *zap.Logger) *HTTPTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPTransport{
		client:     &http.Client{},
		recurseURL: strings.TrimRight(callbackURL, "/") + RecursePath,
		logger:     logger,
	}
}

// Recurse performs one synchronous delegation round trip.
func (t *HTTPTransport) Recurse(ctx context.Context, req *types.RecurseRequest) (*types.RecurseResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to marshal recurse request").WithCause(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.recurseURL, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to build recurse request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		// Read a little of the body for the diagnostic, then discard.
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 256))
		return nil, types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("orchestrator returned status %d: %s", httpResp.StatusCode, strings.TrimSpace(string(snippet)))).
			WithHTTPStatus(httpResp.StatusCode).
			WithRetryable(httpResp.StatusCode >= 500)
	}

	var resp types.RecurseResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "failed to decode recurse response").WithCause(err)
	}
	return &resp, nil
}

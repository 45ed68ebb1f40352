package sandbox

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/rlmbox/types"
)

// Transport performs one delegation round trip to the external orchestrator.
// Implementations must honor ctx cancellation; the broker bounds each call
// with its configured timeout.
type Transport interface {
	Recurse(ctx context.Context, req *types.RecurseRequest) (*types.RecurseResponse, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *types.RecurseRequest) (*types.RecurseResponse, error)

// Recurse implements Transport.
func (f TransportFunc) Recurse(ctx context.Context, req *types.RecurseRequest) (*types.RecurseResponse, error) {
	return f(ctx, req)
}

// Broker serves a script's rlm_call delegations under call and depth
// budgets. One broker belongs to exactly one execution; its state is never
// shared.
//
// Delegate never returns an error to the script: every failure mode resolves
// to an in-band token string so model-authored conditionals can branch on it
// uniformly.
type Broker struct {
	sessionID string
	store     *ContextStore
	transport Transport
	timeout   time.Duration
	maxCalls  int
	maxDepth  int
	depth     int
	callCount int
	logger    *zap.Logger
	observer  Observer
}

func newBroker(sessionID string, store *ContextStore, transport Transport, cfg Config, logger *zap.Logger, observer Observer) *Broker {
	return &Broker{
		sessionID: sessionID,
		store:     store,
		transport: transport,
		timeout:   cfg.Timeout,
		maxCalls:  cfg.MaxCalls,
		maxDepth:  cfg.MaxDepth,
		depth:     cfg.Depth,
		logger:    logger,
		observer:  observer,
	}
}

// Delegate routes one sub-task to the orchestrator. The counter increments
// on every attempt, before any budget check; only forwarding is capped. A
// nil subset means the full context.
func (b *Broker) Delegate(ctx context.Context, prompt string, subset *ContextStore) string {
	b.callCount++

	if b.callCount > b.maxCalls {
		b.delegationDone("budget_calls")
		return fmt.Sprintf("[ERROR: Max recursive calls (%d) exceeded]", b.maxCalls)
	}
	if b.depth >= b.maxDepth {
		b.delegationDone("budget_depth")
		return fmt.Sprintf("[Max recursion depth (%d) reached]", b.maxDepth)
	}

	if subset == nil {
		subset = b.store
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.transport.Recurse(ctx, &types.RecurseRequest{
		SessionID: b.sessionID,
		Prompt:    prompt,
		Context:   subset.Entries(),
		Depth:     b.depth + 1,
	})
	if err != nil {
		if isTimeout(err) {
			b.delegationDone("timeout")
			return "[ERROR: Recursive call timed out]"
		}
		b.logger.Warn("recursive call failed",
			zap.String("session_id", b.sessionID),
			zap.Int("depth", b.depth),
			zap.Error(err))
		b.delegationDone("error")
		return fmt.Sprintf("[ERROR: Recursive call failed - %v]", err)
	}

	b.delegationDone("ok")
	if resp == nil {
		return ""
	}
	return resp.Result
}

// CallCount returns the number of delegation attempts so far, including
// attempts rejected by budget checks.
func (b *Broker) CallCount() int {
	return b.callCount
}

func (b *Broker) delegationDone(outcome string) {
	if b.observer != nil {
		b.observer.DelegationDone(outcome)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

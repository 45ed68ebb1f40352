package sandbox

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/rlmbox/types"
)

// recordingTransport records every request it receives.
type recordingTransport struct {
	requests []*types.RecurseRequest
	result   string
	err      error
}

func (rt *recordingTransport) Recurse(ctx context.Context, req *types.RecurseRequest) (*types.RecurseResponse, error) {
	rt.requests = append(rt.requests, req)
	if rt.err != nil {
		return nil, rt.err
	}
	return &types.RecurseResponse{Result: rt.result}, nil
}

func testBrokerConfig() Config {
	cfg := DefaultConfig()
	cfg.Timeout = time.Second
	return cfg
}

func TestBroker_DelegateForwardsDepthPlusOne(t *testing.T) {
	transport := &recordingTransport{result: "sub-answer"}
	cfg := testBrokerConfig()
	cfg.Depth = 4
	store := testStore()
	b := newBroker("sess-1", store, transport, cfg, zap.NewNop(), nil)

	got := b.Delegate(context.Background(), "summarize", nil)

	assert.Equal(t, "sub-answer", got)
	assert.Equal(t, 1, b.CallCount())
	require.Len(t, transport.requests, 1)
	req := transport.requests[0]
	assert.Equal(t, "sess-1", req.SessionID)
	assert.Equal(t, "summarize", req.Prompt)
	assert.Equal(t, 5, req.Depth)
	// nil subset defaults to the full context.
	assert.Equal(t, store.Entries(), req.Context)
}

func TestBroker_SubsetIsForwarded(t *testing.T) {
	transport := &recordingTransport{}
	b := newBroker("sess-1", testStore(), transport, testBrokerConfig(), zap.NewNop(), nil)

	subset := testStore().Subset([]string{"doc2"})
	b.Delegate(context.Background(), "q", subset)

	require.Len(t, transport.requests, 1)
	assert.Equal(t, subset.Entries(), transport.requests[0].Context)
}

func TestBroker_CallBudget(t *testing.T) {
	transport := &recordingTransport{result: "ok"}
	cfg := testBrokerConfig()
	cfg.MaxCalls = 20
	b := newBroker("sess-1", testStore(), transport, cfg, zap.NewNop(), nil)

	var last string
	for i := 0; i < 21; i++ {
		last = b.Delegate(context.Background(), fmt.Sprintf("call %d", i), nil)
	}

	// Calls 1-20 reach the transport; call 21 is rejected but still counted.
	assert.Len(t, transport.requests, 20)
	assert.Equal(t, 21, b.CallCount())
	assert.Equal(t, "[ERROR: Max recursive calls (20) exceeded]", last)
}

func TestBroker_DepthBudget(t *testing.T) {
	transport := &recordingTransport{}
	cfg := testBrokerConfig()
	cfg.Depth = 5
	cfg.MaxDepth = 5
	b := newBroker("sess-1", testStore(), transport, cfg, zap.NewNop(), nil)

	got := b.Delegate(context.Background(), "too deep", nil)

	assert.Equal(t, "[Max recursion depth (5) reached]", got)
	assert.Empty(t, transport.requests, "a script at max depth must never reach the transport")
	assert.Equal(t, 1, b.CallCount())
}

func TestBroker_TimeoutToken(t *testing.T) {
	transport := &recordingTransport{err: context.DeadlineExceeded}
	b := newBroker("sess-1", testStore(), transport, testBrokerConfig(), zap.NewNop(), nil)

	got := b.Delegate(context.Background(), "slow", nil)

	assert.Equal(t, "[ERROR: Recursive call timed out]", got)
	assert.Equal(t, 1, b.CallCount())
}

func TestBroker_ErrorToken(t *testing.T) {
	transport := &recordingTransport{err: errors.New("connection refused")}
	b := newBroker("sess-1", testStore(), transport, testBrokerConfig(), zap.NewNop(), nil)

	got := b.Delegate(context.Background(), "q", nil)

	assert.Equal(t, "[ERROR: Recursive call failed - connection refused]", got)
}

func TestBroker_MissingResultIsEmptyString(t *testing.T) {
	transport := TransportFunc(func(ctx context.Context, req *types.RecurseRequest) (*types.RecurseResponse, error) {
		return &types.RecurseResponse{}, nil
	})
	b := newBroker("sess-1", testStore(), transport, testBrokerConfig(), zap.NewNop(), nil)

	assert.Equal(t, "", b.Delegate(context.Background(), "q", nil))
}

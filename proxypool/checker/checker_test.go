package checker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxyz/proxypool/model"
)

func mustCandidate(t *testing.T, token string, hint model.Protocol) model.Candidate {
	t.Helper()
	cand, err := model.ParseCandidate(token, hint)
	require.NoError(t, err)
	return cand
}

func candidateSet(t *testing.T, n int) []model.Candidate {
	t.Helper()
	out := make([]model.Candidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Candidate{IP: "1.2.3.4", Port: 8000 + i, Hint: model.ProtocolHTTP})
	}
	return out
}

func TestRunSurvivingIsSubsetOfInput(t *testing.T) {
	probe := func(_ context.Context, cand model.Candidate, _ ProbeOptions) model.ValidationOutcome {
		// Even ports survive.
		return model.ValidationOutcome{Candidate: cand, Reachable: cand.Port%2 == 0}
	}

	input := candidateSet(t, 20)
	c := NewCoordinator(probe, nil)
	surviving, summary := c.Run(context.Background(), input, Options{Concurrency: 4})

	assert.Equal(t, 20, summary.Total)
	assert.Equal(t, 20, summary.Checked)
	assert.Equal(t, 10, summary.Surviving)
	assert.Len(t, surviving, 10)
	assert.False(t, summary.Cancelled)

	inputSet := make(map[string]struct{}, len(input))
	for _, cand := range input {
		inputSet[cand.HostPort()] = struct{}{}
	}
	for _, cand := range surviving {
		assert.Contains(t, inputSet, cand.HostPort())
		assert.Zero(t, cand.Port%2)
	}
}

func TestRunRespectsConcurrencyLimit(t *testing.T) {
	var inFlight, peak int64
	probe := func(_ context.Context, cand model.Candidate, _ ProbeOptions) model.ValidationOutcome {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return model.ValidationOutcome{Candidate: cand, Reachable: true}
	}

	c := NewCoordinator(probe, nil)
	_, summary := c.Run(context.Background(), candidateSet(t, 30), Options{Concurrency: 3})

	assert.Equal(t, 30, summary.Checked)
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(3))
}

func TestRunCancellationStopsDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	calls := 0
	probe := func(_ context.Context, cand model.Candidate, _ ProbeOptions) model.ValidationOutcome {
		mu.Lock()
		calls++
		if calls == 2 {
			cancel()
		}
		mu.Unlock()
		return model.ValidationOutcome{Candidate: cand, Reachable: true}
	}

	c := NewCoordinator(probe, nil)
	surviving, summary := c.Run(ctx, candidateSet(t, 50), Options{Concurrency: 1})

	assert.True(t, summary.Cancelled)
	// With one worker the feeder may have already queued one more job when
	// the context dies, so at most one extra probe slips through.
	assert.GreaterOrEqual(t, summary.Checked, 2)
	assert.LessOrEqual(t, summary.Checked, 3)
	assert.Len(t, surviving, summary.Surviving)
	assert.Equal(t, summary.Checked, summary.Surviving)
}

func TestRunCancelDuringFinalProbeStillCompletes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	remaining := 5
	probe := func(_ context.Context, cand model.Candidate, _ ProbeOptions) model.ValidationOutcome {
		mu.Lock()
		remaining--
		if remaining == 0 {
			cancel()
		}
		mu.Unlock()
		return model.ValidationOutcome{Candidate: cand, Reachable: true}
	}

	c := NewCoordinator(probe, nil)
	surviving, summary := c.Run(ctx, candidateSet(t, 5), Options{Concurrency: 1})

	// Every candidate was dispatched before the signal landed, so the run
	// is complete, not cancelled.
	assert.False(t, summary.Cancelled)
	assert.Equal(t, 5, summary.Checked)
	assert.Len(t, surviving, 5)
}

func TestRunEmptyInput(t *testing.T) {
	probe := func(_ context.Context, cand model.Candidate, _ ProbeOptions) model.ValidationOutcome {
		t.Fatal("probe must not run for empty input")
		return model.ValidationOutcome{}
	}

	c := NewCoordinator(probe, nil)
	surviving, summary := c.Run(context.Background(), nil, Options{})

	assert.Empty(t, surviving)
	assert.Zero(t, summary.Total)
	assert.Zero(t, summary.Checked)
	assert.Zero(t, summary.SuccessRate())
	assert.Zero(t, summary.AvgPerCandidate())
}

func TestRunPassesProbeOptions(t *testing.T) {
	var got ProbeOptions
	var mu sync.Mutex
	probe := func(_ context.Context, cand model.Candidate, opts ProbeOptions) model.ValidationOutcome {
		mu.Lock()
		got = opts
		mu.Unlock()
		return model.ValidationOutcome{Candidate: cand}
	}

	c := NewCoordinator(probe, nil)
	_, _ = c.Run(context.Background(), candidateSet(t, 1), Options{
		Target:  "https://example.com",
		Timeout: 7 * time.Second,
	})

	assert.Equal(t, "https://example.com", got.Target)
	assert.Equal(t, 7*time.Second, got.Timeout)
	assert.NotEmpty(t, got.UserAgent)
}

func TestSummaryRates(t *testing.T) {
	s := Summary{Total: 200, Checked: 200, Surviving: 30, Elapsed: 100 * time.Second}
	assert.InDelta(t, 15.0, s.SuccessRate(), 0.001)
	assert.Equal(t, 500*time.Millisecond, s.AvgPerCandidate())

	one := Summary{Total: 1, Surviving: 1}
	assert.InDelta(t, 100.0, one.SuccessRate(), 0.001)
}

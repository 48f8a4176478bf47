package checker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"proxyz/internal/shared/logger"
	"proxyz/internal/shared/useragent"
	"proxyz/proxypool/model"
)

// Options parameterize one validation run.
type Options struct {
	Target        string
	Timeout       time.Duration
	Concurrency   int
	RandomAgent   bool
	ProgressEvery int
}

// Summary describes how a run ended.
type Summary struct {
	Total     int
	Checked   int
	Surviving int
	Elapsed   time.Duration
	Cancelled bool
}

// SuccessRate is the surviving share of the run's input, in percent.
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Surviving) / float64(s.Total) * 100
}

// AvgPerCandidate is the wall-clock cost amortized over the input set.
func (s Summary) AvgPerCandidate() time.Duration {
	if s.Total == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Total)
}

// runState is the single mutable aggregate of a run. Every mutation —
// surviving-set append, checked tally, progress report — happens under
// one mutex so progress never observes a torn count.
type runState struct {
	mu        sync.Mutex
	surviving []model.Candidate
	checked   int
	total     int
}

// Coordinator drives a ProbeFunc over a candidate set with a fixed-size
// worker pool.
type Coordinator struct {
	probe  ProbeFunc
	agents *useragent.Pool
}

// NewCoordinator builds a coordinator. A nil probe means the real network
// Probe; tests inject their own.
func NewCoordinator(probe ProbeFunc, agents *useragent.Pool) *Coordinator {
	if probe == nil {
		probe = Probe
	}
	if agents == nil {
		agents = useragent.NewPool()
	}
	return &Coordinator{probe: probe, agents: agents}
}

// Run probes every candidate and returns the surviving subset plus a run
// summary. Pool size is min(len(candidates), concurrency). Cancelling the
// context stops dispatch and aborts in-flight probes; whatever survived
// up to that moment is returned with Summary.Cancelled set, ready for
// best-effort persistence by the caller.
func (c *Coordinator) Run(ctx context.Context, candidates []model.Candidate, opts Options) ([]model.Candidate, Summary) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 100
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 50
	}

	total := len(candidates)
	summary := Summary{Total: total}
	if total == 0 {
		return nil, summary
	}

	runID := uuid.NewString()[:8]
	l := logger.WithComponent("ProxyPool/Checker").With().Str("run_id", runID).Logger()

	workers := opts.Concurrency
	if total < workers {
		workers = total
	}

	started := time.Now()
	l.Info().
		Int("candidates", total).
		Int("workers", workers).
		Str("target", opts.Target).
		Dur("timeout", opts.Timeout).
		Msg("Starting validation run...")

	// One identity for the whole run unless per-probe randomization was
	// requested.
	baseAgent := c.agents.Random()

	state := &runState{total: total}
	jobs := make(chan model.Candidate)

	// Feeder stops dispatching the moment the context dies; queued work
	// is abandoned, in-flight probes wind down via their own contexts.
	// A run only counts as cancelled when dispatch was actually cut
	// short, not when the signal lands after the last candidate went out.
	var dispatchAborted atomic.Bool
	go func() {
		defer close(jobs)
		for _, cand := range candidates {
			select {
			case <-ctx.Done():
				dispatchAborted.Store(true)
				return
			case jobs <- cand:
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range jobs {
				agent := baseAgent
				if opts.RandomAgent {
					agent = c.agents.Random()
				}

				outcome := c.probe(ctx, cand, ProbeOptions{
					Target:    opts.Target,
					Timeout:   opts.Timeout,
					UserAgent: agent,
				})

				state.mu.Lock()
				state.checked++
				if outcome.Reachable {
					state.surviving = append(state.surviving, outcome.Candidate)
					l.Debug().
						Str("proxy", cand.HostPort()).
						Str("protocol", string(cand.Hint)).
						Dur("elapsed", outcome.Elapsed).
						Msg("Candidate is reachable.")
				} else {
					l.Debug().
						Str("proxy", cand.HostPort()).
						Str("reason", outcome.FailureReason).
						Msg("Candidate failed.")
				}
				if state.checked%opts.ProgressEvery == 0 {
					l.Info().
						Int("checked", state.checked).
						Int("total", state.total).
						Int("surviving", len(state.surviving)).
						Msg("Progress")
				}
				state.mu.Unlock()
			}
		}()
	}
	wg.Wait()

	state.mu.Lock()
	surviving := make([]model.Candidate, len(state.surviving))
	copy(surviving, state.surviving)
	summary.Checked = state.checked
	summary.Surviving = len(surviving)
	state.mu.Unlock()

	summary.Elapsed = time.Since(started)
	summary.Cancelled = dispatchAborted.Load()

	if summary.Cancelled {
		l.Warn().
			Int("checked", summary.Checked).
			Int("total", summary.Total).
			Int("surviving", summary.Surviving).
			Msg("Validation run cancelled.")
	} else {
		l.Info().
			Int("checked", summary.Checked).
			Int("surviving", summary.Surviving).
			Dur("elapsed", summary.Elapsed).
			Msg("Validation run finished.")
	}
	return surviving, summary
}

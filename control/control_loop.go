package control

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"

	"go.viam.com/pushrecovery/captureregion"
	"go.viam.com/pushrecovery/logging"
	"go.viam.com/pushrecovery/utils"
)

// RecoveryLoop plans recovery steps at a fixed rate. The calculator it owns is only used from
// the loop, so plans are handed out as snapshots.
type RecoveryLoop struct {
	cfg    LoopConfig
	logger logging.Logger
	clock  clock.Clock
	dt     time.Duration
	source StateSource

	// planMu serializes planning calls on calc.
	planMu    sync.Mutex
	calc      *captureregion.RecoveryStepCalculator
	icpFilter pointFilter

	mu      sync.Mutex
	workers utils.StoppableWorkers
	running bool

	latest *atomic.Pointer[captureregion.Plan]
	ticks  *atomic.Int64

	// failures are logged at most once per second, with the count of the ones in between.
	failures    *atomic.Int64
	suppressed  int64
	warnLimiter *rate.Limiter
}

// NewRecoveryLoop constructs a stopped loop. A nil clk uses the wall clock.
func NewRecoveryLoop(
	cfg LoopConfig,
	calc *captureregion.RecoveryStepCalculator,
	source StateSource,
	clk clock.Clock,
	logger logging.Logger,
) (*RecoveryLoop, error) {
	if err := cfg.Validate("loop"); err != nil {
		return nil, err
	}
	if calc == nil {
		return nil, errors.New("a recovery step calculator is required")
	}
	if source == nil {
		return nil, errors.New("a state source is required")
	}
	if clk == nil {
		clk = clock.New()
	}
	l := &RecoveryLoop{
		cfg:    cfg,
		logger: logger,
		clock:  clk,
		dt:     cfg.Period(),
		source: source,
		calc:   calc,
		latest: atomic.NewPointer[captureregion.Plan](nil),
		ticks:  atomic.NewInt64(0),

		failures:    atomic.NewInt64(0),
		warnLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	if cfg.ICPFilterSize > 1 {
		l.icpFilter = newMovingAverageFilter(cfg.ICPFilterSize)
	}
	return l, nil
}

// Tick plans once from the current state and publishes the result.
func (l *RecoveryLoop) Tick(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "control::RecoveryLoop::Tick")
	defer span.End()

	state, err := l.source.CurrentState(ctx)
	if err != nil {
		span.SetStatus(trace.Status{Code: trace.StatusCodeUnavailable, Message: err.Error()})
		return errors.Wrap(err, "cannot get recovery state")
	}
	if state == nil {
		return nil
	}

	// a non-finite measurement would stay in the ICP filter until Stop
	if !utils.IsFinite(state.ICP.X, state.ICP.Y) {
		span.SetStatus(trace.Status{Code: trace.StatusCodeInvalidArgument, Message: "non-finite ICP"})
		return errors.Errorf("measured ICP %v is not finite", state.ICP)
	}

	l.planMu.Lock()
	icp := state.ICP
	if l.icpFilter != nil {
		icp, _ = l.icpFilter.Next(icp)
	}
	capturable, err := l.calc.ComputeRecoverySteps(
		state.SwingSide,
		state.NextTransferDuration,
		state.MinSwingTime,
		state.MaxSwingTime,
		state.StancePose,
		icp,
		state.Omega0,
		state.FootPolygon,
	)
	var plan *captureregion.Plan
	if err == nil {
		plan = l.calc.Snapshot()
	}
	l.planMu.Unlock()

	if err != nil {
		span.SetStatus(trace.Status{Code: trace.StatusCodeInvalidArgument, Message: err.Error()})
		return errors.Wrap(err, "cannot plan recovery steps")
	}
	span.AddAttributes(
		trace.BoolAttribute("capturable", capturable),
		trace.Int64Attribute("steps", int64(len(plan.Steps))),
	)
	l.latest.Store(plan)
	l.ticks.Inc()
	return nil
}

// Start runs Tick at the configured frequency until Stop is called.
func (l *RecoveryLoop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return errors.New("recovery loop is already running")
	}
	l.logger.Infow("running recovery loop", "frequency_hz", l.cfg.Frequency, "period", l.dt)
	// created before the worker starts so no tick is missed
	ticker := l.clock.Ticker(l.dt)
	l.workers = utils.NewStoppableWorkers(func(ctx context.Context) {
		defer ticker.Stop()
		for {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := l.Tick(ctx); err != nil {
					l.reportFailure(err)
				}
			}
		}
	})
	l.running = true
	return nil
}

func (l *RecoveryLoop) reportFailure(err error) {
	l.failures.Inc()
	if !l.warnLimiter.AllowN(l.clock.Now(), 1) {
		l.suppressed++
		return
	}
	l.logger.Warnw("recovery planning failed", "error", err, "suppressed", l.suppressed)
	l.suppressed = 0
}

// Stop stops the loop and waits for the running tick to finish.
func (l *RecoveryLoop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.logger.Debug("closing recovery loop")
	l.workers.Stop()
	l.running = false
	if l.icpFilter != nil {
		l.planMu.Lock()
		l.icpFilter.Reset()
		l.planMu.Unlock()
	}
}

// LatestPlan returns the last published plan, or nil before the first successful tick.
func (l *RecoveryLoop) LatestPlan() *captureregion.Plan {
	return l.latest.Load()
}

// TickCount returns how many plans were published.
func (l *RecoveryLoop) TickCount() int64 {
	return l.ticks.Load()
}

// FailureCount returns how many ticks run by Start failed.
func (l *RecoveryLoop) FailureCount() int64 {
	return l.failures.Load()
}

// Config returns the loop config.
func (l *RecoveryLoop) Config() LoopConfig {
	return l.cfg
}

package expand

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/entrhq/threadvoice/pkg/document"
	"github.com/entrhq/threadvoice/pkg/logging"
)

// Budget bounds one expansion run. All three limits must be at least 1;
// expansion halts as soon as either count limit is reached.
type Budget struct {
	// MaxDepth is the deepest nesting level worth revealing.
	MaxDepth int

	// MaxTopLevel caps how many top-level comments are opened.
	MaxTopLevel int

	// MaxTotal caps the total visible comment count.
	MaxTotal int

	// Strategy decides which hidden subtree to reveal next.
	Strategy Strategy
}

// Outcome describes how an expansion run ended. Every outcome except
// OutcomeCancelled leaves the document in a usable state.
type Outcome int

const (
	// OutcomeBudgetMet means the total count reached the budget.
	OutcomeBudgetMet Outcome = iota

	// OutcomeNoEligibleControls means the strategy found nothing left to
	// reveal. Successful early termination, not an error.
	OutcomeNoEligibleControls

	// OutcomeIterationCeiling means the hard iteration cap was hit before
	// the document converged. Soft failure; whatever was revealed is used.
	OutcomeIterationCeiling

	// OutcomeCancelled means an external stop request ended the run.
	OutcomeCancelled
)

// String returns a log-friendly name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeBudgetMet:
		return "budget-met"
	case OutcomeNoEligibleControls:
		return "no-eligible-controls"
	case OutcomeIterationCeiling:
		return "iteration-ceiling"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// RunResult reports the final state of one expansion run.
type RunResult struct {
	Outcome       Outcome
	Iterations    int
	Reveals       int
	FinalTotal    int
	FinalTopLevel int
}

const (
	// estimatedNodesPerReveal is the tunable heuristic used to cap how many
	// controls are activated per iteration against the remaining budget.
	estimatedNodesPerReveal = 7

	// defaultMaxIterations is the hard ceiling guaranteeing termination
	// even if the document never converges.
	defaultMaxIterations = 50

	defaultBatchSettle     = time.Second
	defaultIterationSettle = 800 * time.Millisecond
)

// Controller orchestrates iterative reveal cycles over a live document.
// Reveals are strictly additive; the controller never retracts one, and a
// document that batch-reveals more nodes than requested is reported as-is.
//
// A Controller is reusable but runs at most one expansion at a time.
type Controller struct {
	probe document.Probe
	log   *logging.Logger

	batchSettle     time.Duration
	iterationSettle time.Duration
	maxIterations   int
	progress        func(observed, target int)

	cancelled atomic.Bool
	running   atomic.Bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger attaches a logger.
func WithLogger(log *logging.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithSettleIntervals overrides the waits after each reveal batch and after
// each full iteration. Tests use near-zero intervals.
func WithSettleIntervals(batch, iteration time.Duration) Option {
	return func(c *Controller) {
		c.batchSettle = batch
		c.iterationSettle = iteration
	}
}

// WithMaxIterations overrides the hard iteration ceiling.
func WithMaxIterations(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithProgress registers a hook invoked with the observed total and the
// budget target at the top of every iteration.
func WithProgress(fn func(observed, target int)) Option {
	return func(c *Controller) { c.progress = fn }
}

// NewController creates a Controller over the given probe.
func NewController(probe document.Probe, opts ...Option) *Controller {
	c := &Controller{
		probe:           probe,
		batchSettle:     defaultBatchSettle,
		iterationSettle: defaultIterationSettle,
		maxIterations:   defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cancel requests cooperative cancellation of the in-flight run. It is
// observed at iteration tops and batch boundaries; an already-triggered
// batch of reveals completes first.
func (c *Controller) Cancel() {
	c.cancelled.Store(true)
}

// Running reports whether an expansion run is in flight.
func (c *Controller) Running() bool {
	return c.running.Load()
}

// Expand runs the iterative convergence loop: snapshot counts, filter and
// order the visible disclosure controls by strategy, reveal them in small
// batches with settle waits, and repeat until the budget is satisfied, no
// eligible control remains, the iteration ceiling is hit, or the run is
// cancelled.
//
// A non-nil error means the probe itself failed; the partial RunResult is
// still meaningful.
func (c *Controller) Expand(ctx context.Context, budget Budget) (RunResult, error) {
	if !c.running.CompareAndSwap(false, true) {
		return RunResult{}, fmt.Errorf("expansion already in progress")
	}
	defer c.running.Store(false)
	c.cancelled.Store(false)

	result := RunResult{}

	for iter := 0; iter < c.maxIterations; iter++ {
		if c.isCancelled(ctx) {
			result.Outcome = OutcomeCancelled
			return result, nil
		}
		result.Iterations = iter + 1

		total, err := c.probe.TotalComments(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to count comments: %w", err)
		}
		topLevel, err := c.probe.TopLevelComments(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to count top-level comments: %w", err)
		}
		result.FinalTotal = total
		result.FinalTopLevel = topLevel
		if c.progress != nil {
			c.progress(total, budget.MaxTotal)
		}

		if total >= budget.MaxTotal {
			result.Outcome = OutcomeBudgetMet
			c.debugf("expansion complete: total %d meets budget %d", total, budget.MaxTotal)
			return result, nil
		}

		controls, err := c.probe.DisclosureControls(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to enumerate disclosure controls: %w", err)
		}

		admitted := controls[:0:0]
		for _, ctl := range controls {
			if budget.Strategy.admit(ctl, budget, topLevel) {
				admitted = append(admitted, ctl)
			}
		}

		// The top-level cap being reached is not the same as nothing left
		// to do: eligible controls can remain at deeper levels. Only an
		// empty admitted set ends the run here.
		if len(admitted) == 0 {
			result.Outcome = OutcomeNoEligibleControls
			c.debugf("expansion complete: no eligible controls after %d iterations", result.Iterations)
			return result, nil
		}

		budget.Strategy.order(admitted)

		// Cap this iteration's reveals against the remaining budget, on the
		// estimate that each reveal yields ~7 new nodes.
		remaining := budget.MaxTotal - total
		maxReveals := remaining / estimatedNodesPerReveal
		if maxReveals < 1 {
			maxReveals = 1
		}
		if len(admitted) > maxReveals {
			admitted = admitted[:maxReveals]
		}

		overBudget, err := c.revealBatches(ctx, admitted, budget, &result)
		if err != nil {
			return result, err
		}
		if c.isCancelled(ctx) {
			result.Outcome = OutcomeCancelled
			return result, nil
		}
		if !overBudget {
			if !sleepContext(ctx, c.iterationSettle) {
				result.Outcome = OutcomeCancelled
				return result, nil
			}
		}
	}

	result.Outcome = OutcomeIterationCeiling
	if c.log != nil {
		c.log.Warnf("expansion hit iteration ceiling (%d); using %d revealed comments as-is",
			c.maxIterations, result.FinalTotal)
	}
	return result, nil
}

// revealBatches activates the admitted controls in small batches, settling
// between batches and re-checking the total budget after each. It returns
// true when the total met the budget mid-iteration.
func (c *Controller) revealBatches(ctx context.Context, admitted []document.Control, budget Budget, result *RunResult) (bool, error) {
	size := budget.Strategy.batchSize()

	for start := 0; start < len(admitted); start += size {
		if c.isCancelled(ctx) {
			return false, nil
		}

		end := start + size
		if end > len(admitted) {
			end = len(admitted)
		}
		for _, ctl := range admitted[start:end] {
			// Reveal failures are expected on a live document (the control
			// may have disappeared); log and move on.
			if err := c.probe.Reveal(ctx, ctl); err != nil {
				c.debugf("reveal at depth %d failed: %v", ctl.Depth, err)
				continue
			}
			result.Reveals++
		}

		if !sleepContext(ctx, c.batchSettle) {
			return false, nil
		}

		total, err := c.probe.TotalComments(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to count comments after reveal: %w", err)
		}
		result.FinalTotal = total
		if total >= budget.MaxTotal {
			return true, nil
		}
	}
	return false, nil
}

// isCancelled checks both the cooperative flag and the context.
func (c *Controller) isCancelled(ctx context.Context) bool {
	if c.cancelled.Load() {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (c *Controller) debugf(format string, v ...interface{}) {
	if c.log != nil {
		c.log.Debugf(format, v...)
	}
}

// sleepContext waits for d or until the context is done, reporting false on
// cancellation.
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

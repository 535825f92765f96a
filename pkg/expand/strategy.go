package expand

import (
	"sort"
	"strings"

	"github.com/entrhq/threadvoice/pkg/document"
)

// Strategy selects which hidden subtrees to reveal next and when to stop.
// It is a closed set of behaviors: each variant owns its admission rule,
// ordering, and batch size, keeping the expansion loop itself
// strategy-invariant.
type Strategy int

const (
	// StrategyBalanced admits controls anywhere below the depth budget and
	// works shallow-first. Default.
	StrategyBalanced Strategy = iota

	// StrategyBreadth stays near the surface: only controls within the
	// first two levels are admitted, shallow-first.
	StrategyBreadth

	// StrategyDepth chases deep subtrees first and deliberately throttles
	// how many top-level threads it opens.
	StrategyDepth
)

const (
	// breadthDepthCeiling caps how deep the breadth strategy will reach.
	breadthDepthCeiling = 2

	// depthTopLevelThrottle caps top-level reveals for the depth strategy
	// regardless of the configured top-level budget.
	depthTopLevelThrottle = 10
)

// ParseStrategy maps a configuration string to a Strategy. Unknown values
// fall back to StrategyBalanced.
func ParseStrategy(s string) Strategy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "breadth":
		return StrategyBreadth
	case "depth":
		return StrategyDepth
	default:
		return StrategyBalanced
	}
}

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyBreadth:
		return "breadth"
	case StrategyDepth:
		return "depth"
	default:
		return "balanced"
	}
}

// admit reports whether a control at the given effective depth is eligible
// under this strategy, given the budget and the currently observed top-level
// count.
func (s Strategy) admit(ctl document.Control, b Budget, topLevel int) bool {
	switch s {
	case StrategyBreadth:
		ceiling := breadthDepthCeiling
		if b.MaxDepth < ceiling {
			ceiling = b.MaxDepth
		}
		if ctl.Depth > ceiling {
			return false
		}
		// Stop opening new top-level threads once the cap is reached.
		return ctl.Depth > 0 || topLevel < b.MaxTopLevel

	case StrategyDepth:
		if ctl.Depth >= b.MaxDepth {
			return false
		}
		throttle := depthTopLevelThrottle
		if b.MaxTopLevel < throttle {
			throttle = b.MaxTopLevel
		}
		return ctl.Depth > 0 || topLevel < throttle

	default: // StrategyBalanced
		if ctl.Depth >= b.MaxDepth {
			return false
		}
		return ctl.Depth > 0 || topLevel < b.MaxTopLevel
	}
}

// order sorts admitted controls into reveal order: shallow-first for breadth
// and balanced, deep-first for depth.
func (s Strategy) order(controls []document.Control) {
	if s == StrategyDepth {
		sort.SliceStable(controls, func(i, j int) bool {
			return controls[i].Depth > controls[j].Depth
		})
		return
	}
	sort.SliceStable(controls, func(i, j int) bool {
		return controls[i].Depth < controls[j].Depth
	})
}

// batchSize is how many controls are activated between settle waits. Breadth
// reveals are cheap and shallow, so it runs slightly larger batches.
func (s Strategy) batchSize() int {
	if s == StrategyBreadth {
		return 3
	}
	return 2
}

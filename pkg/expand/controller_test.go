package expand

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/threadvoice/pkg/document"
	"github.com/entrhq/threadvoice/pkg/document/documenttest"
)

func fastController(t *testing.T, probe document.Probe, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithSettleIntervals(0, 0)}, opts...)
	return NewController(probe, opts...)
}

func comment(id string) document.Node {
	return document.Node{ThingID: id, Author: "user_" + id, Text: "text " + id, Permalink: "/c/" + id}
}

// newDeepTree builds: a(d0) -> b(d1) -> c(d2), with a hidden reply under c.
// The only control has effective depth 3.
func newDeepTree() *documenttest.Tree {
	tree := documenttest.NewTree(document.Post{Title: "t"})
	a := tree.AddRoot(comment("a"))
	b := tree.AddChild(a, comment("b"))
	c := tree.AddChild(b, comment("c"))
	tree.AddHiddenChild(c, comment("d"))
	return tree
}

func TestExpandAlreadyAtBudget(t *testing.T) {
	tree := documenttest.NewTree(document.Post{})
	tree.AddRoot(comment("a"))
	tree.AddRoot(comment("b"))
	tree.AddHiddenRoot(comment("hidden"))

	c := fastController(t, tree)
	result, err := c.Expand(context.Background(), Budget{MaxDepth: 5, MaxTopLevel: 10, MaxTotal: 2})

	require.NoError(t, err)
	assert.Equal(t, OutcomeBudgetMet, result.Outcome)
	assert.Equal(t, 0, result.Reveals)
	assert.Equal(t, 0, tree.Reveals())
	assert.Equal(t, 2, result.FinalTotal)
	assert.Equal(t, 1, result.Iterations)
}

func TestExpandZeroBudgetDoesNoWork(t *testing.T) {
	tree := documenttest.NewTree(document.Post{})
	tree.AddHiddenRoot(comment("hidden"))

	c := fastController(t, tree)
	result, err := c.Expand(context.Background(), Budget{MaxDepth: 5, MaxTopLevel: 10, MaxTotal: 0})

	require.NoError(t, err)
	assert.Equal(t, OutcomeBudgetMet, result.Outcome)
	assert.Equal(t, 0, result.Reveals)
}

func TestBreadthNeverRevealsDeepControls(t *testing.T) {
	tree := newDeepTree()

	c := fastController(t, tree)
	result, err := c.Expand(context.Background(), Budget{
		MaxDepth: 5, MaxTopLevel: 10, MaxTotal: 50, Strategy: StrategyBreadth,
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeNoEligibleControls, result.Outcome)
	assert.Equal(t, 0, tree.Reveals())
}

func TestBalancedRespectsDepthBudget(t *testing.T) {
	// Control at effective depth 3 is admitted only when MaxDepth > 3.
	tests := []struct {
		name        string
		maxDepth    int
		wantReveals int
	}{
		{"depth budget excludes control", 3, 0},
		{"depth budget admits control", 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := newDeepTree()
			c := fastController(t, tree)
			_, err := c.Expand(context.Background(), Budget{
				MaxDepth: tt.maxDepth, MaxTopLevel: 10, MaxTotal: 50, Strategy: StrategyBalanced,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantReveals, tree.Reveals())
		})
	}
}

func TestBalancedSuppressesTopLevelOnceCapReached(t *testing.T) {
	tree := documenttest.NewTree(document.Post{})
	tree.AddRoot(comment("a"))
	tree.AddRoot(comment("b"))
	tree.AddHiddenRoot(comment("hidden"))

	c := fastController(t, tree)
	result, err := c.Expand(context.Background(), Budget{
		MaxDepth: 5, MaxTopLevel: 2, MaxTotal: 50, Strategy: StrategyBalanced,
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeNoEligibleControls, result.Outcome)
	assert.Equal(t, 0, tree.Reveals())
}

func TestTopLevelCapStillAllowsDeeperControls(t *testing.T) {
	// Top-level cap is reached, but a nested control below the cap remains
	// eligible: cap hit must not be confused with nothing left to do.
	tree := documenttest.NewTree(document.Post{})
	a := tree.AddRoot(comment("a"))
	tree.AddRoot(comment("b"))
	tree.AddHiddenChild(a, comment("reply"))
	tree.AddHiddenRoot(comment("hidden-root"))

	c := fastController(t, tree)
	result, err := c.Expand(context.Background(), Budget{
		MaxDepth: 5, MaxTopLevel: 2, MaxTotal: 50, Strategy: StrategyBalanced,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, tree.Reveals())
	assert.Equal(t, 3, result.FinalTotal)
	// The hidden top-level comment stayed hidden.
	assert.Equal(t, 2, result.FinalTopLevel)
}

func TestDepthStrategyThrottlesTopLevel(t *testing.T) {
	// Depth strategy caps top-level reveals at min(10, MaxTopLevel) even
	// when the configured budget is larger.
	tree := documenttest.NewTree(document.Post{})
	a := tree.AddRoot(comment(fmt.Sprintf("r%d", 0)))
	for i := 1; i < 10; i++ {
		tree.AddRoot(comment(fmt.Sprintf("r%d", i)))
	}
	tree.AddHiddenRoot(comment("extra-root"))
	tree.AddHiddenChild(a, comment("deep-reply"))

	c := fastController(t, tree)
	result, err := c.Expand(context.Background(), Budget{
		MaxDepth: 5, MaxTopLevel: 100, MaxTotal: 50, Strategy: StrategyDepth,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, tree.Reveals())
	assert.Equal(t, 10, result.FinalTopLevel)
}

func TestExpandConvergesOverNestedReveals(t *testing.T) {
	// Revealing one subtree exposes a further nested control, requiring
	// multiple iterations to converge.
	tree := documenttest.NewTree(document.Post{})
	a := tree.AddRoot(comment("a"))
	b := tree.AddHiddenChild(a, comment("b"))
	tree.AddHiddenChild(b, comment("c"))

	c := fastController(t, tree)
	result, err := c.Expand(context.Background(), Budget{
		MaxDepth: 5, MaxTopLevel: 10, MaxTotal: 3, Strategy: StrategyBalanced,
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeBudgetMet, result.Outcome)
	assert.Equal(t, 2, tree.Reveals())
	assert.Equal(t, 3, result.FinalTotal)
	assert.GreaterOrEqual(t, result.Iterations, 2)
}

func TestExpandMonotonic(t *testing.T) {
	tree := documenttest.NewTree(document.Post{})
	a := tree.AddRoot(comment("a"))
	tree.AddHiddenChild(a, comment("b"))
	tree.AddHiddenRoot(comment("c"))

	initial, err := tree.TotalComments(context.Background())
	require.NoError(t, err)

	c := fastController(t, tree)
	result, err := c.Expand(context.Background(), Budget{
		MaxDepth: 5, MaxTopLevel: 10, MaxTotal: 50, Strategy: StrategyBalanced,
	})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.FinalTotal, initial)
}

func TestExpandCancelledBeforeWork(t *testing.T) {
	tree := documenttest.NewTree(document.Post{})
	tree.AddHiddenRoot(comment("hidden"))

	c := fastController(t, tree)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := c.Expand(ctx, Budget{MaxDepth: 5, MaxTopLevel: 10, MaxTotal: 50})

	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, result.Outcome)
	assert.Equal(t, 0, tree.Reveals())
}

func TestExpandCancelObservedBetweenIterations(t *testing.T) {
	tree := documenttest.NewTree(document.Post{})
	a := tree.AddRoot(comment("a"))
	b := tree.AddHiddenChild(a, comment("b"))
	tree.AddHiddenChild(b, comment("c"))

	var c *Controller
	c = fastController(t, tree, WithProgress(func(observed, target int) {
		if observed > 1 {
			c.Cancel()
		}
	}))

	result, err := c.Expand(context.Background(), Budget{
		MaxDepth: 5, MaxTopLevel: 10, MaxTotal: 3, Strategy: StrategyBalanced,
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, result.Outcome)
	// The first reveal completed; the nested one was never triggered.
	assert.Equal(t, 1, tree.Reveals())
}

func TestExpandIterationCeiling(t *testing.T) {
	tree := documenttest.NewTree(document.Post{})
	a := tree.AddRoot(comment("a"))
	b := tree.AddHiddenChild(a, comment("b"))
	tree.AddHiddenChild(b, comment("c"))

	c := fastController(t, tree, WithMaxIterations(1))
	result, err := c.Expand(context.Background(), Budget{
		MaxDepth: 5, MaxTopLevel: 10, MaxTotal: 3, Strategy: StrategyBalanced,
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeIterationCeiling, result.Outcome)
	assert.Equal(t, 1, result.Iterations)
}

func TestParseStrategy(t *testing.T) {
	assert.Equal(t, StrategyBreadth, ParseStrategy("breadth"))
	assert.Equal(t, StrategyDepth, ParseStrategy("Depth"))
	assert.Equal(t, StrategyBalanced, ParseStrategy("balanced"))
	assert.Equal(t, StrategyBalanced, ParseStrategy(""))
	assert.Equal(t, StrategyBalanced, ParseStrategy("bogus"))
}

func TestStrategyOrdering(t *testing.T) {
	controls := []document.Control{{Token: "x", Depth: 2}, {Token: "y", Depth: 0}, {Token: "z", Depth: 1}}

	shallow := append([]document.Control(nil), controls...)
	StrategyBalanced.order(shallow)
	assert.Equal(t, []int{0, 1, 2}, depths(shallow))

	deep := append([]document.Control(nil), controls...)
	StrategyDepth.order(deep)
	assert.Equal(t, []int{2, 1, 0}, depths(deep))
}

func depths(controls []document.Control) []int {
	out := make([]int, len(controls))
	for i, c := range controls {
		out[i] = c.Depth
	}
	return out
}

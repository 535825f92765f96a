// Package documenttest provides a deterministic in-memory implementation of
// the document.Probe and document.Highlighter capabilities for tests.
//
// The tree models hidden subtrees the way a live thread page does: a node
// (or the root) may hold hidden children behind a disclosure control, and
// revealing them may expose further controls, so expansion tests exercise
// the same convergence behavior as a real document without any rendering
// engine.
package documenttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/entrhq/threadvoice/pkg/document"
)

// rootToken is the control token for hidden top-level comments.
const rootToken = "root"

var (
	_ document.Probe       = (*Tree)(nil)
	_ document.Highlighter = (*Tree)(nil)
)

// TreeNode is one comment node plus its visible and hidden children.
type TreeNode struct {
	node     document.Node
	children []*TreeNode
	hidden   []*TreeNode
}

// Tree is an in-memory hierarchical document. All methods are safe for
// concurrent use.
type Tree struct {
	mu          sync.Mutex
	post        document.Post
	roots       []*TreeNode
	hiddenRoots []*TreeNode
	reveals     int
	highlighted string
	highlights  []string
}

// NewTree creates an empty tree with the given post title and body.
func NewTree(post document.Post) *Tree {
	return &Tree{post: post}
}

// AddRoot adds a visible top-level comment.
func (t *Tree) AddRoot(n document.Node) *TreeNode {
	t.mu.Lock()
	defer t.mu.Unlock()

	n.Depth = 0
	tn := &TreeNode{node: n}
	t.roots = append(t.roots, tn)
	return tn
}

// AddHiddenRoot adds a top-level comment behind the root disclosure control.
func (t *Tree) AddHiddenRoot(n document.Node) *TreeNode {
	t.mu.Lock()
	defer t.mu.Unlock()

	n.Depth = 0
	tn := &TreeNode{node: n}
	t.hiddenRoots = append(t.hiddenRoots, tn)
	return tn
}

// AddChild adds a visible reply under parent.
func (t *Tree) AddChild(parent *TreeNode, n document.Node) *TreeNode {
	t.mu.Lock()
	defer t.mu.Unlock()

	n.Depth = parent.node.Depth + 1
	tn := &TreeNode{node: n}
	parent.children = append(parent.children, tn)
	return tn
}

// AddHiddenChild adds a reply under parent behind the parent's disclosure
// control. The parent must carry a ThingID so the control can be resolved.
func (t *Tree) AddHiddenChild(parent *TreeNode, n document.Node) *TreeNode {
	t.mu.Lock()
	defer t.mu.Unlock()

	n.Depth = parent.node.Depth + 1
	tn := &TreeNode{node: n}
	parent.hidden = append(parent.hidden, tn)
	return tn
}

// Reveals reports how many disclosure controls have been activated.
func (t *Tree) Reveals() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reveals
}

// ActiveHighlight returns the id currently highlighted, or "" when cleared.
func (t *Tree) ActiveHighlight() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.highlighted
}

// Highlights returns every id highlighted so far, in order.
func (t *Tree) Highlights() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.highlights...)
}

// walk visits every visible node in document order.
func (t *Tree) walk(visit func(*TreeNode)) {
	var rec func(nodes []*TreeNode)
	rec = func(nodes []*TreeNode) {
		for _, n := range nodes {
			visit(n)
			rec(n.children)
		}
	}
	rec(t.roots)
}

// TotalComments implements document.Probe.
func (t *Tree) TotalComments(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := 0
	t.walk(func(*TreeNode) { total++ })
	return total, nil
}

// TopLevelComments implements document.Probe.
func (t *Tree) TopLevelComments(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.roots), nil
}

// DisclosureControls implements document.Probe. Controls belonging to hidden
// nodes are not enumerated until their ancestors have been revealed.
func (t *Tree) DisclosureControls(ctx context.Context) ([]document.Control, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var controls []document.Control
	if len(t.hiddenRoots) > 0 {
		controls = append(controls, document.Control{Token: rootToken, Depth: 0})
	}
	t.walk(func(n *TreeNode) {
		if len(n.hidden) > 0 {
			controls = append(controls, document.Control{
				Token: n.node.ThingID,
				Depth: n.node.Depth + 1,
			})
		}
	})
	return controls, nil
}

// Reveal implements document.Probe. Hidden children of the control's owner
// become visible; revealing an unknown or already-revealed control is an
// error so tests catch stale tokens.
func (t *Tree) Reveal(ctx context.Context, ctl document.Control) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ctl.Token == rootToken {
		if len(t.hiddenRoots) == 0 {
			return fmt.Errorf("no hidden top-level comments to reveal")
		}
		t.roots = append(t.roots, t.hiddenRoots...)
		t.hiddenRoots = nil
		t.reveals++
		return nil
	}

	var target *TreeNode
	t.walk(func(n *TreeNode) {
		if n.node.ThingID == ctl.Token && len(n.hidden) > 0 {
			target = n
		}
	})
	if target == nil {
		return fmt.Errorf("no disclosure control for token %q", ctl.Token)
	}

	target.children = append(target.children, target.hidden...)
	target.hidden = nil
	t.reveals++
	return nil
}

// Comments implements document.Probe.
func (t *Tree) Comments(ctx context.Context) ([]document.Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var nodes []document.Node
	t.walk(func(n *TreeNode) { nodes = append(nodes, n.node) })
	return nodes, nil
}

// Post implements document.Probe.
func (t *Tree) Post(ctx context.Context) (document.Post, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.post, nil
}

// Highlight implements document.Highlighter.
func (t *Tree) Highlight(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.highlighted = id
	t.highlights = append(t.highlights, id)
	return nil
}

// Clear implements document.Highlighter.
func (t *Tree) Clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.highlighted = ""
	return nil
}

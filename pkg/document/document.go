package document

import "context"

// PostMarker is the highlight target used for title and body items, which
// have no comment node of their own.
const PostMarker = "post"

// Node is a read-only snapshot of one comment node in the live document,
// captured in document order.
type Node struct {
	// ThingID is the source-assigned stable identifier, empty when the
	// document does not expose one.
	ThingID string

	// Author is the comment author's name, empty when unknown.
	Author string

	// Depth is the nesting level, 0 for top-level comments.
	Depth int

	// Permalink is the comment's canonical link, possibly relative.
	Permalink string

	// Text is the rendered text content of the comment.
	Text string
}

// Post is the top-level submission: a title plus the rendered body markup.
type Post struct {
	Title string

	// BodyHTML is the raw rendered body. Consumers flatten it to plain
	// text before speaking it.
	BodyHTML string
}

// Control identifies one currently-visible disclosure control whose
// activation reveals hidden comment nodes.
type Control struct {
	// Token resolves the control within the probe that enumerated it.
	// Tokens are only valid until the next DisclosureControls call.
	Token string

	// Depth is the control's effective depth: the depth of its nearest
	// ancestor comment node plus one, or 0 when it has no ancestor comment.
	Depth int
}

// Probe exposes read queries and the single mutate operation (Reveal) over a
// live hierarchical document. Implementations wrap a real rendering engine;
// tests use a deterministic in-memory tree.
type Probe interface {
	// TotalComments reports the number of comment nodes currently visible.
	TotalComments(ctx context.Context) (int, error)

	// TopLevelComments reports the number of visible depth-0 comment nodes.
	TopLevelComments(ctx context.Context) (int, error)

	// DisclosureControls enumerates the currently-visible disclosure
	// controls with their effective depths resolved.
	DisclosureControls(ctx context.Context) ([]Control, error)

	// Reveal activates a disclosure control. The effect (new nodes
	// appearing) is observed only by re-querying the document later.
	Reveal(ctx context.Context, ctl Control) error

	// Comments snapshots all visible comment nodes in document order,
	// which is a valid depth-first reading order.
	Comments(ctx context.Context) ([]Node, error)

	// Post returns the submission title and body markup.
	Post(ctx context.Context) (Post, error)
}

// Highlighter is the side-effect sink told which item is currently being
// spoken. The id is a comment's stable identifier, or PostMarker for the
// title/body items.
type Highlighter interface {
	Highlight(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

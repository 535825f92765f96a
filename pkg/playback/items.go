package playback

import "github.com/entrhq/threadvoice/pkg/extract"

// ItemKind distinguishes the three speakable item types.
type ItemKind int

const (
	ItemTitle ItemKind = iota
	ItemBody
	ItemComment
)

// String returns the display name of the kind.
func (k ItemKind) String() string {
	switch k {
	case ItemTitle:
		return "title"
	case ItemBody:
		return "body"
	default:
		return "comment"
	}
}

// Item is one entry in the playback queue.
type Item struct {
	Kind ItemKind
	Text string

	// Author and Depth are set for comment items only.
	Author string
	Depth  int

	// SourceID is the originating comment's identifier, empty for
	// title/body items.
	SourceID string
}

// BuildQueue assembles the ordered playback queue: title (when present),
// body (when present), then the comments in extraction order.
func BuildQueue(title, body string, comments []extract.Record) []Item {
	queue := make([]Item, 0, len(comments)+2)
	if title != "" {
		queue = append(queue, Item{Kind: ItemTitle, Text: title})
	}
	if body != "" {
		queue = append(queue, Item{Kind: ItemBody, Text: body})
	}
	for _, c := range comments {
		queue = append(queue, Item{
			Kind:     ItemComment,
			Text:     c.Text,
			Author:   c.Author,
			Depth:    c.Depth,
			SourceID: c.ID,
		})
	}
	return queue
}

// Package extract walks an expanded document once and turns it into
// immutable comment records plus the post title and body. It does no
// waiting and no iteration; expansion has already finished (or been
// cancelled) by the time it runs.
package extract

import (
	"context"
	"fmt"

	"github.com/entrhq/threadvoice/pkg/document"
	"github.com/entrhq/threadvoice/pkg/logging"
	"github.com/entrhq/threadvoice/pkg/sanitize"
)

// Record is one speakable comment. Records are never constructed for a
// filtered author or empty sanitized text, and are immutable once built.
type Record struct {
	// ID is the source-assigned identifier, or a positional synthetic id
	// ("comment-<n>") when the document exposes none. Synthetic ids are not
	// stable across extraction passes if intervening nodes were filtered.
	ID string `json:"id"`

	Text      string `json:"text"`
	Author    string `json:"author,omitempty"`
	Depth     int    `json:"depth"`
	Permalink string `json:"permalink,omitempty"`
}

// Result is one extraction pass over the current document snapshot.
type Result struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Comments []Record `json:"comments"`

	// Filtered counts nodes skipped by the author filter.
	Filtered int `json:"filtered"`
}

// Extractor builds Results from a document probe.
type Extractor struct {
	probe  document.Probe
	filter *sanitize.AuthorFilter
	log    *logging.Logger
}

// NewExtractor creates an Extractor. A nil filter applies only the built-in
// author rules; a nil logger is silent.
func NewExtractor(probe document.Probe, filter *sanitize.AuthorFilter, log *logging.Logger) *Extractor {
	return &Extractor{probe: probe, filter: filter, log: log}
}

// ExtractAll performs one synchronous pass: post title/body, then every
// visible comment node in document order, sanitized and filtered. A document
// with no comment nodes yields an empty (not nil-error) Result.
func (e *Extractor) ExtractAll(ctx context.Context) (Result, error) {
	var result Result

	post, err := e.probe.Post(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read post: %w", err)
	}
	result.Title = sanitize.StripLinks(post.Title)

	body, err := sanitize.FlattenHTML(post.BodyHTML)
	if err != nil {
		// A malformed body is not fatal; the comments are still speakable.
		if e.log != nil {
			e.log.Warnf("failed to flatten post body: %v", err)
		}
	} else {
		result.Body = sanitize.StripLinks(body)
	}

	nodes, err := e.probe.Comments(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read comments: %w", err)
	}

	for _, node := range nodes {
		if e.filter.Filtered(node.Author) {
			result.Filtered++
			continue
		}

		text := sanitize.StripLinks(node.Text)
		if text == "" {
			continue
		}

		id := node.ThingID
		if id == "" {
			id = fmt.Sprintf("comment-%d", len(result.Comments))
		}

		result.Comments = append(result.Comments, Record{
			ID:        id,
			Text:      text,
			Author:    node.Author,
			Depth:     node.Depth,
			Permalink: node.Permalink,
		})
	}

	if e.log != nil {
		e.log.Infof("extracted %d comments (%d filtered) from %d nodes",
			len(result.Comments), result.Filtered, len(nodes))
	}
	return result, nil
}

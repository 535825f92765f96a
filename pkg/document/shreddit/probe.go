package shreddit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/threadvoice/pkg/document"
	"github.com/entrhq/threadvoice/pkg/logging"
)

// Probe reads the thread page through JavaScript evaluations.
type Probe struct {
	page playwright.Page
	log  *logging.Logger
}

var (
	_ document.Probe       = (*Probe)(nil)
	_ document.Highlighter = (*Probe)(nil)
)

// NewProbe creates a probe over the given page.
func NewProbe(page playwright.Page, log *logging.Logger) *Probe {
	return &Probe{page: page, log: log}
}

// TotalComments implements document.Probe.
func (p *Probe) TotalComments(ctx context.Context) (int, error) {
	return p.evalCount(ctx, totalCommentsScript)
}

// TopLevelComments implements document.Probe.
func (p *Probe) TopLevelComments(ctx context.Context) (int, error) {
	return p.evalCount(ctx, topLevelCommentsScript)
}

// controlEntry mirrors the JSON shape produced by listControlsScript.
type controlEntry struct {
	Token string `json:"token"`
	Depth int    `json:"depth"`
}

// DisclosureControls implements document.Probe. The enumeration script
// stamps each control with a token attribute so Reveal can resolve it later;
// tokens become stale as soon as the page re-renders the control.
func (p *Probe) DisclosureControls(ctx context.Context) ([]document.Control, error) {
	var entries []controlEntry
	if err := p.evalInto(ctx, listControlsScript, &entries); err != nil {
		return nil, fmt.Errorf("failed to enumerate disclosure controls: %w", err)
	}

	controls := make([]document.Control, 0, len(entries))
	for _, e := range entries {
		controls = append(controls, document.Control{Token: e.Token, Depth: e.Depth})
	}
	return controls, nil
}

// Reveal implements document.Probe: a fire-and-forget click. A missing
// control (the page re-rendered it away) is reported as an error; callers
// treat that as non-fatal.
func (p *Probe) Reveal(ctx context.Context, ctl document.Control) error {
	result, err := p.page.Evaluate(revealScript, ctl.Token)
	if err != nil {
		return fmt.Errorf("reveal click failed: %w", err)
	}
	if clicked, ok := result.(bool); ok && !clicked {
		return fmt.Errorf("disclosure control %q no longer present", ctl.Token)
	}
	return nil
}

// nodeEntry mirrors the JSON shape produced by listCommentsScript.
type nodeEntry struct {
	ThingID   string `json:"thingId"`
	Author    string `json:"author"`
	Depth     int    `json:"depth"`
	Permalink string `json:"permalink"`
	Text      string `json:"text"`
}

// Comments implements document.Probe.
func (p *Probe) Comments(ctx context.Context) ([]document.Node, error) {
	var entries []nodeEntry
	if err := p.evalInto(ctx, listCommentsScript, &entries); err != nil {
		return nil, fmt.Errorf("failed to read comments: %w", err)
	}

	nodes := make([]document.Node, 0, len(entries))
	for _, e := range entries {
		nodes = append(nodes, document.Node{
			ThingID:   e.ThingID,
			Author:    e.Author,
			Depth:     e.Depth,
			Permalink: e.Permalink,
			Text:      e.Text,
		})
	}
	return nodes, nil
}

// postEntry mirrors the JSON shape produced by postScript.
type postEntry struct {
	Title    string `json:"title"`
	BodyHTML string `json:"bodyHtml"`
}

// Post implements document.Probe.
func (p *Probe) Post(ctx context.Context) (document.Post, error) {
	var entry postEntry
	if err := p.evalInto(ctx, postScript, &entry); err != nil {
		return document.Post{}, fmt.Errorf("failed to read post: %w", err)
	}
	return document.Post{Title: entry.Title, BodyHTML: entry.BodyHTML}, nil
}

// Highlight implements document.Highlighter: outline the active node and
// scroll it into view. The previous highlight is cleared first.
func (p *Probe) Highlight(ctx context.Context, id string) error {
	if _, err := p.page.Evaluate(highlightScript, id); err != nil {
		return fmt.Errorf("highlight failed: %w", err)
	}
	return nil
}

// Clear implements document.Highlighter.
func (p *Probe) Clear(ctx context.Context) error {
	if _, err := p.page.Evaluate(clearHighlightScript); err != nil {
		return fmt.Errorf("failed to clear highlight: %w", err)
	}
	return nil
}

// evalCount evaluates a script that returns a number.
func (p *Probe) evalCount(ctx context.Context, script string) (int, error) {
	result, err := p.page.Evaluate(script)
	if err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}

	switch v := result.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("count query returned %T, expected number", result)
	}
}

// evalInto evaluates a script and decodes its JSON-compatible result into
// out, round-tripping through encoding/json to avoid hand-written
// interface{} traversal.
func (p *Probe) evalInto(ctx context.Context, script string, out interface{}) error {
	result, err := p.page.Evaluate(script)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	if result == nil {
		return nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode evaluation result: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode evaluation result: %w", err)
	}
	return nil
}

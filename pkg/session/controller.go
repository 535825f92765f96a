// Package session owns the process-wide mutable state spanning request/
// response cycles: the extracted content, the playback queue, and the
// in-flight extraction run. Hosts talk to one Controller instance; nothing
// in this package throws uncaught — every failure path resolves to a
// structured response field.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/entrhq/threadvoice/pkg/document"
	"github.com/entrhq/threadvoice/pkg/expand"
	"github.com/entrhq/threadvoice/pkg/extract"
	"github.com/entrhq/threadvoice/pkg/logging"
	"github.com/entrhq/threadvoice/pkg/playback"
	"github.com/entrhq/threadvoice/pkg/sanitize"
	"github.com/entrhq/threadvoice/pkg/speech"
)

// progressSnapshot is the atomically-published extraction progress.
type progressSnapshot struct {
	observed int
	target   int
}

// Controller wires the expansion, extraction, and playback subsystems behind
// the command surface exposed to hosts. All methods are safe for concurrent
// use; extraction runs hold no lock so transport and progress requests stay
// responsive.
type Controller struct {
	probe       document.Probe
	highlighter document.Highlighter
	engine      speech.Engine
	seq         *playback.Sequencer
	expander    *expand.Controller
	extractor   *extract.Extractor
	log         *logging.Logger

	extracting atomic.Bool
	progress   atomic.Value // progressSnapshot

	mu     sync.Mutex
	last   extract.Result
	locale string
	rotate bool
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger attaches a logger to the controller and its subsystems.
func WithLogger(log *logging.Logger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// WithAuthorFilter replaces the default author filter.
func WithAuthorFilter(f *sanitize.AuthorFilter) ControllerOption {
	return func(c *Controller) {
		c.extractor = extract.NewExtractor(c.probe, f, c.log)
	}
}

// WithExpandOptions forwards options to the expansion controller, letting
// tests shrink the settle intervals.
func WithExpandOptions(opts ...expand.Option) ControllerOption {
	return func(c *Controller) {
		opts = append(opts, expand.WithProgress(c.publishProgress))
		if c.log != nil {
			opts = append(opts, expand.WithLogger(c.log))
		}
		c.expander = expand.NewController(c.probe, opts...)
	}
}

// WithSequencerOptions forwards options to the playback sequencer.
func WithSequencerOptions(opts ...playback.SequencerOption) ControllerOption {
	return func(c *Controller) {
		base := []playback.SequencerOption{playback.WithHighlighter(c.highlighter)}
		if c.log != nil {
			base = append(base, playback.WithLogger(c.log))
		}
		c.seq = playback.NewSequencer(c.engine, append(base, opts...)...)
	}
}

// NewController creates the session controller over a document probe, a
// highlighter (may be nil), and a speech engine.
func NewController(probe document.Probe, highlighter document.Highlighter, engine speech.Engine, opts ...ControllerOption) *Controller {
	c := &Controller{
		probe:       probe,
		highlighter: highlighter,
		engine:      engine,
		rotate:      true,
	}
	c.progress.Store(progressSnapshot{})

	// Defaults; options may replace each piece.
	c.expander = expand.NewController(probe, expand.WithProgress(c.publishProgress))
	c.extractor = extract.NewExtractor(probe, nil, nil)
	c.seq = playback.NewSequencer(engine, playback.WithHighlighter(highlighter))

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) publishProgress(observed, target int) {
	c.progress.Store(progressSnapshot{observed: observed, target: target})
}

// ExtractComments expands the document under the requested budget, extracts
// the comments, and loads the playback queue. Expansion fully completes (or
// is cancelled) before extraction begins. Only one extraction runs at a
// time.
func (c *Controller) ExtractComments(ctx context.Context, req ExtractRequest) ExtractResponse {
	if !c.extracting.CompareAndSwap(false, true) {
		return ExtractResponse{Error: "extraction already in progress"}
	}
	defer c.extracting.Store(false)
	defer c.progress.Store(progressSnapshot{})

	budget := expand.Budget{
		MaxDepth:    req.MaxDepth,
		MaxTopLevel: req.MaxTopLevel,
		MaxTotal:    req.MaxTotal,
		Strategy:    expand.ParseStrategy(req.Strategy),
	}
	if budget.MaxDepth < 1 {
		budget.MaxDepth = 1
	}
	if budget.MaxTopLevel < 1 {
		budget.MaxTopLevel = 1
	}
	if budget.MaxTotal < 1 {
		budget.MaxTotal = 1
	}

	runResult, err := c.expander.Expand(ctx, budget)
	if err != nil {
		// The reveal phase failed against the live document; whatever is
		// visible is still extractable.
		if c.log != nil {
			c.log.Warnf("expansion failed, extracting visible comments: %v", err)
		}
	} else if c.log != nil {
		c.log.Infof("expansion finished (%s): %d reveals, %d comments visible",
			runResult.Outcome, runResult.Reveals, runResult.FinalTotal)
	}

	result, err := c.extractor.ExtractAll(ctx)
	if err != nil {
		if c.log != nil {
			c.log.Errorf("extraction failed: %v", err)
		}
		return ExtractResponse{Error: err.Error()}
	}

	c.mu.Lock()
	c.last = result
	c.locale = req.VoiceLocale
	c.mu.Unlock()

	queue := playback.BuildQueue(result.Title, result.Body, result.Comments)
	c.seq.Load(queue)
	c.seq.SetLocale(req.VoiceLocale)
	c.seq.SetVoices(c.engine.Voices(req.VoiceLocale), req.SelectedVoices)

	return ExtractResponse{
		Success:    true,
		Count:      len(result.Comments),
		TotalItems: len(queue),
		HasTitle:   result.Title != "",
		HasBody:    result.Body != "",
		Title:      result.Title,
		Comments:   result.Comments,
	}
}

// StopExtraction requests cooperative cancellation of the in-flight
// expansion run, if any.
func (c *Controller) StopExtraction() StopResponse {
	stopped := c.extracting.Load()
	c.expander.Cancel()
	return StopResponse{Success: true, Stopped: stopped}
}

// ExtractionProgress reports whether an extraction is running and how far
// along the expansion is against its total budget.
func (c *Controller) ExtractionProgress() ProgressResponse {
	extracting := c.extracting.Load()
	snap, _ := c.progress.Load().(progressSnapshot)

	var fraction float64
	if snap.target > 0 {
		fraction = float64(snap.observed) / float64(snap.target)
		if fraction > 1 {
			fraction = 1
		}
	}
	return ProgressResponse{
		IsExtracting: extracting,
		Progress:     fraction,
		CanStop:      extracting,
	}
}

// Play starts or resumes playback.
func (c *Controller) Play() TransportResponse { return c.transport(c.seq.Play) }

// Pause suspends playback.
func (c *Controller) Pause() TransportResponse { return c.transport(c.seq.Pause) }

// Stop cancels playback and resets the cursor.
func (c *Controller) Stop() TransportResponse { return c.transport(c.seq.Stop) }

// Next skips to the following item.
func (c *Controller) Next() TransportResponse { return c.transport(c.seq.Next) }

// Previous returns to the preceding item.
func (c *Controller) Previous() TransportResponse { return c.transport(c.seq.Previous) }

func (c *Controller) transport(op func() error) TransportResponse {
	if err := op(); err != nil {
		return TransportResponse{State: c.seq.State(), Error: err.Error()}
	}
	return TransportResponse{Success: true, State: c.seq.State()}
}

// SetSpeed clamps and applies the playback rate.
func (c *Controller) SetSpeed(speed float64) TransportResponse {
	c.seq.SetSpeed(speed)
	return TransportResponse{Success: true, State: c.seq.State()}
}

// ToggleUniqueVoices enables or disables per-item voice rotation.
func (c *Controller) ToggleUniqueVoices(enabled bool) TransportResponse {
	c.mu.Lock()
	c.rotate = enabled
	c.mu.Unlock()

	c.seq.SetRotate(enabled)
	return TransportResponse{Success: true, State: c.seq.State()}
}

// SetVoiceLocale switches the voice locale and refreshes the candidate pool.
func (c *Controller) SetVoiceLocale(locale string) TransportResponse {
	c.mu.Lock()
	c.locale = locale
	c.mu.Unlock()

	c.seq.SetLocale(locale)
	c.seq.SetVoices(c.engine.Voices(locale), nil)
	return TransportResponse{Success: true, State: c.seq.State()}
}

// State returns the full session snapshot.
func (c *Controller) State() StateResponse {
	c.mu.Lock()
	last := c.last
	c.mu.Unlock()

	return StateResponse{
		Playback:     c.seq.State(),
		IsExtracting: c.extracting.Load(),
		Count:        len(last.Comments),
		HasTitle:     last.Title != "",
		HasBody:      last.Body != "",
		Title:        last.Title,
		Comments:     last.Comments,
	}
}

// Queue exposes the loaded playback items (for hosts that render the queue).
func (c *Controller) Queue() []playback.Item {
	return c.seq.Queue()
}

// Cleanup releases speech resources, clears the highlight, and resets the
// transport state. Hosts invoke it on navigation or teardown; the controller
// is reusable afterwards.
func (c *Controller) Cleanup() {
	c.expander.Cancel()
	_ = c.seq.Stop()
	_ = c.engine.Cancel()
	c.seq.Load(nil)

	c.mu.Lock()
	c.last = extract.Result{}
	c.mu.Unlock()

	if c.highlighter != nil {
		_ = c.highlighter.Clear(context.Background())
	}
}

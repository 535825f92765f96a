// Package playback drives the speech engine through an ordered item queue:
// one item in flight at a time, auto-advance on natural completion, and
// transport controls (play/pause/stop/seek/speed) that never let a stale
// engine callback race a newly started utterance.
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/threadvoice/pkg/document"
	"github.com/entrhq/threadvoice/pkg/logging"
	"github.com/entrhq/threadvoice/pkg/speech"
)

// ErrEmptyQueue is returned by transport operations when nothing is loaded.
var ErrEmptyQueue = errors.New("playback queue is empty")

// Speed bounds for SetSpeed clamping.
const (
	MinSpeed = 0.5
	MaxSpeed = 2.0

	// defaultAdvanceDelay is the gap between one utterance's completion and
	// the next utterance's start, letting the engine release resources.
	defaultAdvanceDelay = 100 * time.Millisecond
)

// Sequencer owns the playback queue and cursor. All methods are safe for
// concurrent use; completion callbacks from the engine are keyed by
// utterance identity, so callbacks for superseded utterances are discarded.
type Sequencer struct {
	mu          sync.Mutex
	engine      speech.Engine
	highlighter document.Highlighter
	log         *logging.Logger

	advanceDelay time.Duration

	queue  []Item
	cursor int

	speed     float64
	locale    string
	pool      []string
	allowlist []string
	rotate    bool

	playing  bool
	paused   bool
	finished bool

	// liveID identifies the one utterance allowed to report completion;
	// gen invalidates pending auto-advance timers.
	liveID string
	gen    uint64
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithLogger attaches a logger.
func WithLogger(log *logging.Logger) SequencerOption {
	return func(s *Sequencer) { s.log = log }
}

// WithHighlighter attaches the side-effect sink notified of the active item.
func WithHighlighter(h document.Highlighter) SequencerOption {
	return func(s *Sequencer) { s.highlighter = h }
}

// WithAdvanceDelay overrides the completion-to-next-utterance gap. Tests use
// a near-zero delay.
func WithAdvanceDelay(d time.Duration) SequencerOption {
	return func(s *Sequencer) { s.advanceDelay = d }
}

// NewSequencer creates a Sequencer over the given engine.
func NewSequencer(engine speech.Engine, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		engine:       engine,
		advanceDelay: defaultAdvanceDelay,
		speed:        1.0,
		rotate:       true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the queue, cancels any in-flight speech, and resets the
// cursor. It does not auto-play.
func (s *Sequencer) Load(queue []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.queue = append([]Item(nil), queue...)
	s.cursor = 0
	s.playing = false
	s.paused = false
	s.finished = false
}

// Play starts or resumes playback. A paused utterance resumes in place; when
// idle, the item at the cursor is spoken; when already speaking, Play is a
// no-op. After the queue finished, Play restarts from the top.
func (s *Sequencer) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return ErrEmptyQueue
	}

	if s.paused && s.engine.Paused() {
		if err := s.engine.Resume(); err != nil {
			return fmt.Errorf("failed to resume speech: %w", err)
		}
		s.paused = false
		s.playing = true
		return nil
	}

	if s.playing && s.engine.Speaking() {
		return nil
	}

	if s.finished {
		s.finished = false
		s.cursor = 0
	}
	return s.speakLocked()
}

// Pause suspends the in-flight utterance without losing the queue position.
func (s *Sequencer) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing || !s.engine.Speaking() {
		return fmt.Errorf("nothing is being spoken")
	}
	if err := s.engine.Pause(); err != nil {
		return fmt.Errorf("failed to pause speech: %w", err)
	}
	s.playing = false
	s.paused = true
	return nil
}

// Stop cancels any in-flight speech, resets the cursor to 0, and clears the
// active-item highlight.
func (s *Sequencer) Stop() error {
	s.mu.Lock()
	s.cancelLocked()
	s.cursor = 0
	s.playing = false
	s.paused = false
	s.finished = false
	h := s.highlighter
	s.mu.Unlock()

	if h != nil {
		if err := h.Clear(context.Background()); err != nil && s.log != nil {
			s.log.Warnf("failed to clear highlight: %v", err)
		}
	}
	return nil
}

// Next cancels the current utterance and speaks the following item. At the
// last index it stops instead of wrapping: the cursor stays put and playback
// goes idle.
func (s *Sequencer) Next() error {
	s.mu.Lock()

	if len(s.queue) == 0 {
		s.mu.Unlock()
		return ErrEmptyQueue
	}

	s.cancelLocked()
	if s.cursor >= len(s.queue)-1 {
		s.playing = false
		s.paused = false
		h := s.highlighter
		s.mu.Unlock()
		if h != nil {
			_ = h.Clear(context.Background())
		}
		return nil
	}

	s.cursor++
	err := s.speakLocked()
	s.mu.Unlock()
	return err
}

// Previous cancels the current utterance and speaks the preceding item. At
// index 0 it re-speaks item 0.
func (s *Sequencer) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return ErrEmptyQueue
	}

	s.cancelLocked()
	if s.cursor > 0 {
		s.cursor--
	}
	return s.speakLocked()
}

// SetSpeed clamps the rate to [MinSpeed, MaxSpeed] and applies it to the
// in-flight utterance (where the engine supports it) and all future ones.
func (s *Sequencer) SetSpeed(rate float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rate < MinSpeed {
		rate = MinSpeed
	}
	if rate > MaxSpeed {
		rate = MaxSpeed
	}
	s.speed = rate
	s.engine.SetRate(rate)
	return rate
}

// SetVoices replaces the candidate voice pool and the explicit allowlist.
func (s *Sequencer) SetVoices(pool, allowlist []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool = append([]string(nil), pool...)
	s.allowlist = append([]string(nil), allowlist...)
}

// SetRotate toggles per-item voice rotation.
func (s *Sequencer) SetRotate(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotate = enabled
}

// SetLocale updates the locale hint passed with each utterance.
func (s *Sequencer) SetLocale(locale string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locale = locale
}

// State returns a snapshot of the playback state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Cursor:       s.cursor,
		QueueLength:  len(s.queue),
		Speed:        s.speed,
		IsPlaying:    s.playing,
		IsPaused:     s.paused,
		Finished:     s.finished,
		UniqueVoices: s.rotate,
		Locale:       s.locale,
	}
}

// Queue returns a copy of the loaded items.
func (s *Sequencer) Queue() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.queue...)
}

// cancelLocked discards the in-flight utterance and invalidates any pending
// auto-advance. Caller holds the mutex.
func (s *Sequencer) cancelLocked() {
	s.gen++
	s.liveID = ""
	_ = s.engine.Cancel()
}

// speakLocked speaks the item at the cursor: resolve the voice, notify the
// highlighter, then submit the utterance — in that order, so the visual
// highlight never lags the audio. Caller holds the mutex.
func (s *Sequencer) speakLocked() error {
	if len(s.queue) == 0 {
		return ErrEmptyQueue
	}

	item := s.queue[s.cursor]
	voice := speech.VoiceFor(s.cursor, s.pool, s.allowlist, s.rotate)

	target := item.SourceID
	if item.Kind != ItemComment || target == "" {
		target = document.PostMarker
	}
	if s.highlighter != nil {
		if err := s.highlighter.Highlight(context.Background(), target); err != nil && s.log != nil {
			s.log.Warnf("failed to highlight %s: %v", target, err)
		}
	}

	u := speech.Utterance{
		ID:     uuid.NewString(),
		Text:   item.Text,
		Rate:   s.speed,
		Voice:  voice,
		Locale: s.locale,
	}

	s.gen++
	s.liveID = u.ID
	s.playing = true
	s.paused = false
	s.finished = false

	id := u.ID
	if err := s.engine.Speak(u, func(err error) { s.onUtteranceDone(id, err) }); err != nil {
		s.playing = false
		s.liveID = ""
		return fmt.Errorf("failed to speak item %d: %w", s.cursor, err)
	}

	if s.log != nil {
		s.log.Debugf("speaking item %d/%d (%s) with voice %q",
			s.cursor+1, len(s.queue), item.Kind, voice)
	}
	return nil
}

// onUtteranceDone handles engine completion/error callbacks. Callbacks whose
// utterance id no longer matches the live one are stale (the utterance was
// superseded by stop/next/previous) and are discarded.
func (s *Sequencer) onUtteranceDone(id string, err error) {
	s.mu.Lock()

	if id != s.liveID {
		s.mu.Unlock()
		return
	}
	s.liveID = ""

	if err != nil {
		// Engine failure: go idle without advancing; recovery is a manual
		// Play.
		s.playing = false
		s.paused = false
		s.mu.Unlock()
		if s.log != nil {
			s.log.Errorf("utterance failed at item %d: %v", s.cursor, err)
		}
		return
	}

	if s.cursor >= len(s.queue)-1 {
		s.playing = false
		s.paused = false
		s.finished = true
		h := s.highlighter
		s.mu.Unlock()
		if h != nil {
			_ = h.Clear(context.Background())
		}
		return
	}

	s.cursor++
	gen := s.gen
	time.AfterFunc(s.advanceDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen || !s.playing {
			return
		}
		if err := s.speakLocked(); err != nil && s.log != nil {
			s.log.Errorf("auto-advance failed at item %d: %v", s.cursor, err)
		}
	})
	s.mu.Unlock()
}

// Package speechtest provides a scripted speech engine for tests. It records
// submitted utterances and lets the test fire completion and error callbacks
// by hand, including stale callbacks for utterances that were already
// cancelled.
package speechtest

import (
	"sync"

	"github.com/entrhq/threadvoice/pkg/speech"
)

// ScriptedEngine implements speech.Engine with no real audio.
type ScriptedEngine struct {
	mu         sync.Mutex
	voices     []string
	utterances []speech.Utterance
	done       func(error)
	speaking   bool
	paused     bool
	rate       float64
	cancels    int
	pauses     int
	resumes    int
}

var _ speech.Engine = (*ScriptedEngine)(nil)

// New creates a ScriptedEngine offering the given voices.
func New(voices ...string) *ScriptedEngine {
	return &ScriptedEngine{voices: voices, rate: 1.0}
}

// Speak implements speech.Engine.
func (e *ScriptedEngine) Speak(u speech.Utterance, done func(err error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.utterances = append(e.utterances, u)
	e.done = done
	e.speaking = true
	e.paused = false
	return nil
}

// Pause implements speech.Engine.
func (e *ScriptedEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
	e.pauses++
	return nil
}

// Resume implements speech.Engine.
func (e *ScriptedEngine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = false
	e.resumes++
	return nil
}

// Cancel implements speech.Engine. The current done callback is dropped, the
// way a real engine stops reporting for a cancelled utterance; tests that
// want to simulate a late callback grab CurrentDone first.
func (e *ScriptedEngine) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speaking = false
	e.paused = false
	e.done = nil
	e.cancels++
	return nil
}

// Speaking implements speech.Engine.
func (e *ScriptedEngine) Speaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speaking
}

// Paused implements speech.Engine.
func (e *ScriptedEngine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// SetRate implements speech.Engine.
func (e *ScriptedEngine) SetRate(rate float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rate = rate
}

// Voices implements speech.Engine.
func (e *ScriptedEngine) Voices(locale string) []string {
	return append([]string(nil), e.voices...)
}

// CompleteCurrent fires the completion callback for the in-flight utterance,
// simulating natural completion.
func (e *ScriptedEngine) CompleteCurrent() {
	e.fire(nil)
}

// FailCurrent fires the error callback for the in-flight utterance.
func (e *ScriptedEngine) FailCurrent(err error) {
	e.fire(err)
}

func (e *ScriptedEngine) fire(err error) {
	e.mu.Lock()
	done := e.done
	e.done = nil
	e.speaking = false
	e.paused = false
	e.mu.Unlock()

	if done != nil {
		done(err)
	}
}

// CurrentDone returns the live completion callback without consuming it, so
// tests can invoke it after the utterance has been superseded.
func (e *ScriptedEngine) CurrentDone() func(error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// Utterances returns every submitted utterance in order.
func (e *ScriptedEngine) Utterances() []speech.Utterance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]speech.Utterance(nil), e.utterances...)
}

// Last returns the most recently submitted utterance.
func (e *ScriptedEngine) Last() speech.Utterance {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.utterances) == 0 {
		return speech.Utterance{}
	}
	return e.utterances[len(e.utterances)-1]
}

// Rate returns the last rate set on the engine.
func (e *ScriptedEngine) Rate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rate
}

// Cancels reports how many times Cancel was called.
func (e *ScriptedEngine) Cancels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancels
}

// Pauses reports how many times Pause was called.
func (e *ScriptedEngine) Pauses() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pauses
}

// Resumes reports how many times Resume was called.
func (e *ScriptedEngine) Resumes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resumes
}

// Package speech defines the speech engine capability and voice selection.
//
// The engine is an external asynchronous facility: submitting an utterance
// returns immediately and completion or failure arrives later through the
// callback. Callers that supersede an utterance (stop, skip) must key
// callbacks by utterance identity, since a stale completion can arrive after
// cancellation.
package speech

// Utterance is one discrete unit of speech work, tracked as a single
// in-flight operation by its ID.
type Utterance struct {
	// ID uniquely identifies this utterance for stale-callback rejection.
	ID string

	// Text is the sanitized content to speak.
	Text string

	// Rate is the speech rate, clamped by callers to [0.5, 2.0].
	Rate float64

	// Voice is the engine voice identity, empty for the engine default.
	Voice string

	// Locale hints voice selection, e.g. "en-US".
	Locale string
}

// Engine abstracts the speech synthesis capability. Implementations speak
// one utterance at a time; Speak while another utterance is in flight is
// undefined, so callers cancel first.
type Engine interface {
	// Speak submits an utterance. done is invoked exactly once when the
	// utterance finishes naturally or fails; it is not invoked for
	// utterances that were cancelled before completing, though
	// implementations are permitted to invoke it with an error in that
	// case — callers must discard callbacks for superseded utterances.
	Speak(u Utterance, done func(err error)) error

	// Pause suspends the in-flight utterance without losing position.
	Pause() error

	// Resume continues a paused utterance.
	Resume() error

	// Cancel discards the in-flight utterance, if any.
	Cancel() error

	// Speaking reports whether an utterance is in flight (paused counts).
	Speaking() bool

	// Paused reports whether the in-flight utterance is suspended.
	Paused() bool

	// SetRate updates the rate for future utterances, and for the in-flight
	// one where the engine supports it.
	SetRate(rate float64)

	// Voices lists the voice identities available for a locale, best first.
	// An empty locale lists all voices.
	Voices(locale string) []string
}

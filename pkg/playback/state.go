package playback

// State is a read-only snapshot of the sequencer. External callers only ever
// see copies; the live state is mutated exclusively by the sequencer's own
// transport methods and the speech-completion callback.
type State struct {
	Cursor      int     `json:"cursor"`
	QueueLength int     `json:"queueLength"`
	Speed       float64 `json:"speed"`
	IsPlaying   bool    `json:"isPlaying"`
	IsPaused    bool    `json:"isPaused"`

	// Finished is set after the last item completes naturally and cleared
	// by the next transport action.
	Finished bool `json:"finished"`

	// UniqueVoices and Locale describe the active voice policy.
	UniqueVoices bool   `json:"uniqueVoices"`
	Locale       string `json:"locale"`
}

package speech

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/entrhq/threadvoice/pkg/logging"
)

// ExecConfig configures an ExecEngine.
type ExecConfig struct {
	// Command is the synthesizer binary, e.g. "espeak-ng" or "say".
	Command string

	// Args are passed to the command. The placeholders {text}, {rate},
	// {voice}, and {locale} are substituted per utterance. When no {text}
	// placeholder is present the text is piped to stdin instead.
	Args []string

	// Voices are the voice identities the command accepts via {voice}.
	Voices []string
}

// ExecEngine speaks by running an external synthesizer command per
// utterance. Pause and resume suspend the process with job-control signals,
// so they are unavailable on Windows.
type ExecEngine struct {
	mu     sync.Mutex
	config ExecConfig
	rate   float64
	cmd    *exec.Cmd
	paused bool
	log    *logging.Logger
}

var _ Engine = (*ExecEngine)(nil)

// NewExecEngine creates an engine around the configured command.
func NewExecEngine(config ExecConfig, log *logging.Logger) (*ExecEngine, error) {
	if config.Command == "" {
		return nil, fmt.Errorf("speech command is required")
	}
	return &ExecEngine{config: config, rate: 1.0, log: log}, nil
}

// Speak implements Engine. The utterance runs as one process; a watcher
// goroutine delivers the completion callback unless the utterance was
// superseded by Cancel or a newer Speak.
func (e *ExecEngine) Speak(u Utterance, done func(err error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd != nil {
		e.cancelLocked()
	}

	rate := u.Rate
	if rate <= 0 {
		rate = e.rate
	}

	args := make([]string, 0, len(e.config.Args))
	textInline := false
	for _, a := range e.config.Args {
		if strings.Contains(a, "{text}") {
			textInline = true
		}
		a = strings.ReplaceAll(a, "{text}", u.Text)
		a = strings.ReplaceAll(a, "{rate}", strconv.FormatFloat(rate, 'f', -1, 64))
		a = strings.ReplaceAll(a, "{voice}", u.Voice)
		a = strings.ReplaceAll(a, "{locale}", u.Locale)
		args = append(args, a)
	}

	cmd := exec.Command(e.config.Command, args...)
	if !textInline {
		cmd.Stdin = strings.NewReader(u.Text)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start speech command: %w", err)
	}

	e.cmd = cmd
	e.paused = false

	go func() {
		err := cmd.Wait()

		e.mu.Lock()
		if e.cmd != cmd {
			// Superseded by Cancel or a newer utterance; the caller already
			// moved on, so no callback.
			e.mu.Unlock()
			return
		}
		e.cmd = nil
		e.paused = false
		e.mu.Unlock()

		if err != nil && e.log != nil {
			e.log.Errorf("speech command failed for utterance %s: %v", u.ID, err)
		}
		if done != nil {
			done(err)
		}
	}()

	return nil
}

// Pause implements Engine.
func (e *ExecEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd == nil || e.cmd.Process == nil {
		return fmt.Errorf("nothing is being spoken")
	}
	if e.paused {
		return nil
	}
	if err := suspendProcess(e.cmd.Process); err != nil {
		return fmt.Errorf("failed to pause speech: %w", err)
	}
	e.paused = true
	return nil
}

// Resume implements Engine.
func (e *ExecEngine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd == nil || e.cmd.Process == nil || !e.paused {
		return fmt.Errorf("nothing is paused")
	}
	if err := resumeProcess(e.cmd.Process); err != nil {
		return fmt.Errorf("failed to resume speech: %w", err)
	}
	e.paused = false
	return nil
}

// Cancel implements Engine.
func (e *ExecEngine) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
	return nil
}

// cancelLocked kills the in-flight process and detaches it so its watcher
// goroutine stays silent. Caller holds the mutex.
func (e *ExecEngine) cancelLocked() {
	if e.cmd == nil {
		return
	}
	proc := e.cmd.Process
	e.cmd = nil
	if e.paused {
		// Continue a stopped process before killing it.
		_ = resumeProcess(proc)
		e.paused = false
	}
	if proc != nil {
		_ = proc.Kill()
	}
}

// Speaking implements Engine.
func (e *ExecEngine) Speaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cmd != nil
}

// Paused implements Engine.
func (e *ExecEngine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// SetRate implements Engine. The rate applies to future utterances; a
// process already launched keeps the rate it started with.
func (e *ExecEngine) SetRate(rate float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rate = rate
}

// Voices implements Engine, returning the configured voice list. External
// commands expose no portable enumeration, so the list is configuration.
func (e *ExecEngine) Voices(locale string) []string {
	return append([]string(nil), e.config.Voices...)
}

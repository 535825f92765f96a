package main

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/threadvoice/pkg/playback"
	"github.com/entrhq/threadvoice/pkg/session"
)

const stateTickInterval = 250 * time.Millisecond

// model holds the TUI state: the session controller, the extracted queue,
// and the last polled playback/extraction snapshots.
type model struct {
	// Bubble Tea components
	viewport viewport.Model
	spinner  spinner.Model

	// Session integration
	controller *session.Controller
	url        string
	request    session.ExtractRequest

	// Preferences applied once extraction completes
	initialSpeed  float64
	initialUnique bool
	prefsApplied  bool

	// Extraction and playback snapshots
	extracting bool
	extractErr string
	extracted  bool
	progress   session.ProgressResponse
	state      session.StateResponse
	items      []playback.Item

	// UI state
	toast  string
	width  int
	height int
	ready  bool
}

// extractDoneMsg carries the extraction outcome back into the update loop.
type extractDoneMsg struct {
	resp session.ExtractResponse
}

// stateTickMsg drives periodic state polling.
type stateTickMsg time.Time

// toastMsg shows a transient status line message.
type toastMsg string

func newModel(controller *session.Controller, url string, req session.ExtractRequest, speed float64, unique bool) model {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(spinnerStyle),
	)

	return model{
		spinner:       sp,
		controller:    controller,
		url:           url,
		request:       req,
		initialSpeed:  speed,
		initialUnique: unique,
		extracting:    true,
	}
}

// Init starts extraction immediately and begins state polling.
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.extractCmd(), stateTick())
}

// extractCmd runs the extraction on a worker goroutine managed by Bubble Tea.
func (m *model) extractCmd() tea.Cmd {
	controller := m.controller
	req := m.request
	return func() tea.Msg {
		return extractDoneMsg{resp: controller.ExtractComments(context.Background(), req)}
	}
}

func stateTick() tea.Cmd {
	return tea.Tick(stateTickInterval, func(t time.Time) tea.Msg {
		return stateTickMsg(t)
	})
}

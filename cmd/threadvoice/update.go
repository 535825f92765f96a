package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const speedStep = 0.25

// Update handles all Bubble Tea messages.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chrome := headerHeight + statusHeight + helpHeight
		if !m.ready {
			m.viewport = newQueueViewport(msg.Width, msg.Height-chrome)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chrome
		}
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.extracting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stateTickMsg:
		m.state = m.controller.State()
		m.progress = m.controller.ExtractionProgress()
		m.refreshViewport()
		return m, stateTick()

	case extractDoneMsg:
		m.extracting = false
		if !msg.resp.Success {
			m.extractErr = msg.resp.Error
			return m, nil
		}
		m.extracted = true
		m.items = m.controller.Queue()
		m.state = m.controller.State()
		if !m.prefsApplied {
			m.prefsApplied = true
			m.controller.SetSpeed(m.initialSpeed)
			m.controller.ToggleUniqueVoices(m.initialUnique)
		}
		m.refreshViewport()
		return m, nil

	case toastMsg:
		m.toast = string(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleKeyPress maps the playback transport onto single keys.
func (m *model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case " ":
		if !m.extracted {
			return m, nil
		}
		if m.state.Playback.IsPlaying && !m.state.Playback.IsPaused {
			m.controller.Pause()
		} else {
			m.controller.Play()
		}
		m.state = m.controller.State()
		m.refreshViewport()
		return m, nil

	case "n":
		m.controller.Next()
		m.state = m.controller.State()
		m.refreshViewport()
		return m, nil

	case "p":
		m.controller.Previous()
		m.state = m.controller.State()
		m.refreshViewport()
		return m, nil

	case "s":
		if m.extracting {
			m.controller.StopExtraction()
			return m, nil
		}
		m.controller.Stop()
		m.state = m.controller.State()
		m.refreshViewport()
		return m, nil

	case "left":
		resp := m.controller.SetSpeed(m.state.Playback.Speed - speedStep)
		m.state.Playback = resp.State
		return m, nil

	case "right":
		resp := m.controller.SetSpeed(m.state.Playback.Speed + speedStep)
		m.state.Playback = resp.State
		return m, nil

	case "v":
		resp := m.controller.ToggleUniqueVoices(!m.state.Playback.UniqueVoices)
		m.state.Playback = resp.State
		return m, nil

	case "c":
		return m, m.copyCurrentItem()

	case "C":
		return m, m.copyTranscript()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// copyCurrentItem puts the active item's text on the system clipboard.
func (m *model) copyCurrentItem() tea.Cmd {
	cursor := m.state.Playback.Cursor
	if cursor < 0 || cursor >= len(m.items) {
		return nil
	}
	text := m.items[cursor].Text
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return toastMsg(fmt.Sprintf("copy failed: %v", err))
		}
		return toastMsg("copied current item")
	}
}

// copyTranscript puts the whole queue, in speaking order, on the clipboard.
func (m *model) copyTranscript() tea.Cmd {
	if len(m.items) == 0 {
		return nil
	}
	var b strings.Builder
	for i, item := range m.items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if item.Author != "" {
			b.WriteString(item.Author)
			b.WriteString(": ")
		}
		b.WriteString(item.Text)
	}
	transcript := b.String()
	return func() tea.Msg {
		if err := clipboard.WriteAll(transcript); err != nil {
			return toastMsg(fmt.Sprintf("copy failed: %v", err))
		}
		return toastMsg(fmt.Sprintf("copied transcript (%d items)", len(m.items)))
	}
}

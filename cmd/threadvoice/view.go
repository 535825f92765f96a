package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/threadvoice/pkg/playback"
)

// Fixed chrome heights used when sizing the queue viewport.
const (
	headerHeight = 2
	statusHeight = 1
	helpHeight   = 1
)

func newQueueViewport(width, height int) viewport.Model {
	if height < 1 {
		height = 1
	}
	return viewport.New(width, height)
}

// View renders the entire interface.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.buildHeader()
	status := m.buildStatus()
	help := m.buildHelp()

	return strings.Join([]string{header, m.viewport.View(), status, help}, "\n")
}

func (m *model) buildHeader() string {
	title := headerStyle.Render("ThreadVoice")
	url := urlStyle.Render(truncate(m.url, m.width-14))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", url) + "\n"
}

// buildStatus renders the extraction or playback status line.
func (m *model) buildStatus() string {
	if m.toast != "" {
		return statusStyle.Render(m.toast)
	}

	if m.extracting {
		pct := int(m.progress.Progress * 100)
		return statusStyle.Render(fmt.Sprintf("%s expanding thread… %d%%  (s to stop)", m.spinner.View(), pct))
	}

	if m.extractErr != "" {
		return errorStyle.Render("extraction failed: " + m.extractErr)
	}

	pb := m.state.Playback
	status := "idle"
	switch {
	case pb.Finished:
		status = "finished"
	case pb.IsPaused:
		status = "paused"
	case pb.IsPlaying:
		status = "playing"
	}

	voices := "off"
	if pb.UniqueVoices {
		voices = "on"
	}

	return statusStyle.Render(fmt.Sprintf(
		"%s  %d/%d  speed %.2fx  voices %s  %s",
		status, pb.Cursor+1, pb.QueueLength, pb.Speed, voices, pb.Locale,
	))
}

func (m *model) buildHelp() string {
	return helpStyle.Render("space play/pause • n/p next/prev • s stop • ←/→ speed • v voices • c/C copy • q quit")
}

// refreshViewport re-renders the queue with the active item highlighted and
// keeps it scrolled into view.
func (m *model) refreshViewport() {
	if !m.ready {
		return
	}

	if len(m.items) == 0 {
		if m.extracting {
			m.viewport.SetContent(dimStyle.Render("  expanding thread…"))
		} else {
			m.viewport.SetContent(dimStyle.Render("  no speakable content"))
		}
		return
	}

	cursor := m.state.Playback.Cursor
	lines := make([]string, 0, len(m.items))
	for i, item := range m.items {
		line := m.renderItem(item)
		if i == cursor {
			line = activeItemStyle.Render("▶ " + line)
		} else {
			line = dimStyle.Render("  " + line)
		}
		lines = append(lines, line)
	}

	m.viewport.SetContent(strings.Join(lines, "\n"))

	// Keep the active line visible.
	if cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(cursor)
	} else if cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(cursor - m.viewport.Height + 1)
	}
}

// renderItem formats one queue entry: the post title and body get markers,
// comments are indented by depth and prefixed with their author.
func (m *model) renderItem(item playback.Item) string {
	var prefix string
	switch item.Kind {
	case playback.ItemTitle:
		prefix = "◆ "
	case playback.ItemBody:
		prefix = "◇ "
	default:
		indent := strings.Repeat("  ", item.Depth)
		if item.Author != "" {
			prefix = indent + item.Author + ": "
		} else {
			prefix = indent
		}
	}
	return truncate(prefix+item.Text, m.width-4)
}

func truncate(s string, max int) string {
	if max < 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const paletteHistoryLimit = 50

func (m Model) openPalette() Model {
	m.Palette.Active = true
	m.Palette.Input = ""
	m.Palette.recall = len(m.Palette.History)
	m.commandInput.SetValue("")
	m.commandInput.Focus()
	return m
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		raw := strings.TrimSpace(m.commandInput.Value())
		m = m.closePalette()
		if raw == "" {
			return m
		}
		m.Palette.History = appendHistory(m.Palette.History, raw)
		m = m.runCommand(raw)
	case "up":
		if m.Palette.recall > 0 {
			m.Palette.recall--
			m = m.setPaletteInput(m.Palette.History[m.Palette.recall])
		}
	case "down":
		if m.Palette.recall < len(m.Palette.History)-1 {
			m.Palette.recall++
			m = m.setPaletteInput(m.Palette.History[m.Palette.recall])
		} else {
			m.Palette.recall = len(m.Palette.History)
			m = m.setPaletteInput("")
		}
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			return m.setPaletteInput(m.commandInput.Value() + string(msg.Runes))
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) setPaletteInput(v string) Model {
	m.commandInput.SetValue(v)
	m.commandInput.CursorEnd()
	m.Palette.Input = v
	return m
}

// appendHistory skips immediate repeats and keeps the newest entries.
func appendHistory(h []string, raw string) []string {
	if len(h) > 0 && h[len(h)-1] == raw {
		return h
	}
	h = append(h, raw)
	if len(h) > paletteHistoryLimit {
		h = h[len(h)-paletteHistoryLimit:]
	}
	return h
}

// runCommand executes raw through the command session and reports the result
// on the status bar. Engine notifications reach the feed on their own.
func (m Model) runCommand(raw string) Model {
	if m.Engine == nil {
		m.Status = StatusBar{Text: "no engine configured", IsError: true}
		return m
	}
	res, err := m.Session.Run(raw)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	if res.Created != "" {
		m.SelectedID = res.Created
		m.SubCursor = 0
	}
	m.Status = StatusBar{Text: res.Message}
	return m
}

package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// AppData is one full frame: the objective list on the left and whatever the
// current view shows on the right.
type AppData struct {
	Header       string
	ListPane     string
	SidePane     string
	Status       string
	StatusError  bool
	Notification string
	Destructive  bool
	Footer       string
}

const (
	paneWidth    = 58
	mdWrapMargin = 4
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	paneStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	alertStyle = paneStyle.BorderForeground(lipgloss.Color("9"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func RenderApp(data AppData) string {
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Width(paneWidth).Render(data.ListPane),
		paneStyle.Width(paneWidth).Render(data.SidePane),
	)

	lines := []string{titleStyle.Render(data.Header), row}
	if data.Status != "" {
		if data.StatusError {
			lines = append(lines, failStyle.Render(data.Status))
		} else {
			lines = append(lines, okStyle.Render(data.Status))
		}
	}
	if data.Notification != "" {
		box := paneStyle
		if data.Destructive {
			box = alertStyle
		}
		lines = append(lines, box.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, hintStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

// RenderMarkdown renders an objective description for the side pane. Text
// that glamour cannot render is returned unchanged.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(paneWidth-mdWrapMargin),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

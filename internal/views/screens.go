package views

import (
	"fmt"
	"strings"
)

type ObjectiveListData struct {
	ListView string
	Profile  string
	Active   int
	Done     int
}

type SubObjectiveRowData struct {
	Name      string
	Current   int
	Target    int
	Completed bool
	Cooldown  string
	Selected  bool
}

type PhaseData struct {
	Name      string
	Completed bool
	Current   bool
	Repeat    string
	Subs      []SubObjectiveRowData
}

type ObjectiveDetailData struct {
	Name         string
	Category     string
	Type         string
	Description  string
	Completed    bool
	Percent      int
	ProgressView string
	Rewards      string
	Completions  string
	Expires      string
	Legacy       string
	Phases       []PhaseData
}

type PlayerPanelData struct {
	Level        int
	XP           int
	NextLevelXP  int
	Gold         int
	ProgressView string
}

type NotificationData struct {
	Title       string
	Description string
	Severity    string
	At          string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderObjectiveList(data ObjectiveListData) string {
	var b strings.Builder
	b.WriteString("objectives:\n")
	if data.Profile != "" {
		b.WriteString(fmt.Sprintf("profile: %s\n", data.Profile))
	}
	b.WriteString(fmt.Sprintf("active: %d | completed: %d\n", data.Active, data.Done))
	b.WriteString("actions: [j/k]move [enter]open [c]complete [r]reset [n]next-phase [y]clone [x]delete\n")
	if data.Active+data.Done == 0 {
		b.WriteString("(no objectives, add one with /add <name>)")
		return b.String()
	}
	b.WriteString(data.ListView)
	return strings.TrimSpace(b.String())
}

func RenderObjectiveDetail(data ObjectiveDetailData) string {
	if data.Name == "" {
		return "objective:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("objective: %s %s\n", statusBadge(data.Completed), data.Name))
	b.WriteString(fmt.Sprintf("category: %s | type: %s\n", data.Category, data.Type))
	b.WriteString(fmt.Sprintf("progress: %s %d%%\n", data.ProgressView, data.Percent))
	if data.Rewards != "" {
		b.WriteString("rewards: " + data.Rewards + "\n")
	}
	if data.Completions != "" {
		b.WriteString("completions: " + data.Completions + "\n")
	}
	if data.Expires != "" {
		b.WriteString("expires: " + data.Expires + "\n")
	}
	if data.Legacy != "" {
		b.WriteString("tracking: " + data.Legacy + "\n")
	}
	for _, p := range data.Phases {
		marker := " "
		if p.Current {
			marker = "*"
		}
		b.WriteString(fmt.Sprintf("\n%s %s %s", marker, statusBadge(p.Completed), p.Name))
		if p.Repeat != "" {
			b.WriteString(" (" + p.Repeat + ")")
		}
		b.WriteString("\n")
		if len(p.Subs) == 0 {
			b.WriteString("    (no subobjectives)\n")
			continue
		}
		for _, s := range p.Subs {
			cursor := " "
			if s.Selected {
				cursor = ">"
			}
			b.WriteString(fmt.Sprintf("  %s %s %s %d/%d", cursor, statusBadge(s.Completed), s.Name, s.Current, s.Target))
			if s.Cooldown != "" {
				b.WriteString(" cooldown " + s.Cooldown)
			}
			b.WriteString("\n")
		}
	}
	if data.Description != "" {
		b.WriteString("\n" + data.Description)
	}
	return strings.TrimSpace(b.String())
}

func RenderPlayerPanel(data PlayerPanelData) string {
	return fmt.Sprintf("player:\nlevel: %d\nxp: %d/%d\n%s\ngold: %d",
		data.Level, data.XP, data.NextLevelXP, data.ProgressView, data.Gold)
}

func RenderNotificationsPanel(items []NotificationData) string {
	var b strings.Builder
	b.WriteString("notifications:\n")
	if len(items) == 0 {
		b.WriteString("(none)")
		return b.String()
	}
	for _, n := range items {
		b.WriteString(fmt.Sprintf("%s [%s] %s", n.At, strings.ToUpper(n.Severity), n.Title))
		if n.Description != "" {
			b.WriteString(": " + n.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(severity string, title string, body string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}
	if body == "" {
		return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(severity), title)
	}
	return fmt.Sprintf("notification: [%s] %s: %s", strings.ToUpper(severity), title, body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("\nhelp:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func statusBadge(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/questd/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Objectives, Action: "switch to Objectives"},
		{Key: m.Keys.Detail, Action: "switch to Detail"},
		{Key: m.Keys.Notifications, Action: "switch to Notifications"},
		{Key: m.Keys.Player, Action: "switch to Player"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	if m.Palette.Active {
		return []KeyBinding{
			{Key: "enter", Action: "run command"},
			{Key: "up/down", Action: "recall earlier commands"},
			{Key: "esc", Action: "close palette"},
		}
	}
	switch m.CurrentView {
	case ViewObjectives:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "enter", Action: "open objective"},
			{Key: "c", Action: "complete objective"},
			{Key: "r", Action: "reset objective"},
			{Key: "n", Action: "next phase"},
			{Key: "y/x", Action: "clone / delete"},
		}
	case ViewDetail:
		return []KeyBinding{
			{Key: "j/k", Action: "move subobjective cursor"},
			{Key: "space", Action: "complete subobjective"},
			{Key: "+/-", Action: "add / remove a point"},
			{Key: "r", Action: "reset subobjective"},
			{Key: "p", Action: "complete phase"},
			{Key: "n", Action: "next phase"},
			{Key: "esc", Action: "back to objectives"},
		}
	case ViewNotifications:
		return []KeyBinding{{Key: "/", Action: "show active | show completed | show player"}}
	case ViewPlayer:
		return []KeyBinding{{Key: "/", Action: "spend <n> | set base-xp <n> | set xp-increase <n>"}}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}

package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/questd/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForExpiryCmd(m.Expiries), cooldownTickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed), nil
		}

		switch typed.String() {
		case "/":
			m = m.openPalette()
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Objectives:
			m.CurrentView = ViewObjectives
			return m, nil
		case m.Keys.Detail:
			m.CurrentView = ViewDetail
			return m, nil
		case m.Keys.Notifications:
			m.CurrentView = ViewNotifications
			return m, nil
		case m.Keys.Player:
			m.CurrentView = ViewPlayer
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown", IsError: false}
			} else {
				m.Status = StatusBar{Text: "help hidden", IsError: false}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.CurrentView {
		case ViewObjectives:
			return m.handleObjectivesKey(typed), nil
		case ViewDetail:
			if s := typed.String(); s == "pgup" || s == "pgdown" {
				var cmd tea.Cmd
				m.detailViewport, cmd = m.detailViewport.Update(typed)
				return m, cmd
			}
			return m.handleDetailKey(typed), nil
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case CooldownExpiredMsg:
		if m.Engine != nil {
			m.Engine.ExpireCooldown(typed.Event.Key)
		}
		return m, waitForExpiryCmd(m.Expiries)
	case CooldownTickMsg:
		if m.Engine != nil {
			m.Engine.TickCooldowns(typed.At)
		}
		return m, cooldownTickCmd()
	case RunFuncMsg:
		if typed.Fn != nil {
			typed.Fn()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	side := ""
	switch m.CurrentView {
	case ViewObjectives, ViewDetail:
		side = m.renderDetailView()
	case ViewNotifications:
		side = m.renderNotificationsView()
	case ViewPlayer:
		side = m.renderPlayerView()
	}
	side = strings.TrimSpace(strings.Join([]string{
		side,
		m.renderCommandPalette(),
		m.renderHelpIfVisible(),
	}, "\n"))

	status := ""
	if m.Status.Text != "" {
		status = "status: " + m.Status.Text
	}
	notice, destructive := m.renderLatestNotification()
	st := m.playerStats()
	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("questd | view: %s | level %d | %d gold", m.CurrentView, st.Level, st.Gold),
		ListPane:     m.renderObjectivesView(),
		SidePane:     side,
		Status:       status,
		StatusError:  m.Status.IsError,
		Notification: notice,
		Destructive:  destructive,
		Footer: fmt.Sprintf("keys: %s objectives | %s detail | %s notifications | %s player | / cmd | %s help | %s quit",
			m.Keys.Objectives, m.Keys.Detail, m.Keys.Notifications, m.Keys.Player, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewObjectives, ViewDetail, ViewNotifications, ViewPlayer:
		return true
	default:
		return false
	}
}

func (m *Model) initBubbleComponents() {
	m.objectiveList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 16)
	m.objectiveList.Title = "Objectives"
	m.objectiveList.SetShowHelp(false)
	m.objectiveList.SetFilteringEnabled(false)

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.objectiveBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))
	m.levelBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))

	m.helpModel = help.New()
	m.detailViewport = viewport.New(56, 24)
}

func (m *Model) syncBubbleData() {
	m.ensureSelection()

	objs := m.visibleObjectives()
	items := make([]list.Item, 0, len(objs))
	for _, o := range objs {
		desc := fmt.Sprintf("%s | %d%%", o.Category, o.ProgressPercent())
		if p, ok := o.CurrentPhase(); ok {
			desc = fmt.Sprintf("%s | %s", desc, p.Name)
		}
		if o.Completed {
			desc += " | done"
		}
		items = append(items, listItem{title: o.Name, description: desc})
	}
	m.objectiveList.SetItems(items)
	if len(items) > 0 {
		m.objectiveList.Select(m.cursor)
	}

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	}

	m.detailViewport.SetContent(views.RenderObjectiveDetail(m.detailData()))
}

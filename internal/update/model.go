package update

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/questd/internal/commands"
	"github.com/sandeepkv93/questd/internal/engine"
	"github.com/sandeepkv93/questd/internal/notify"
	"github.com/sandeepkv93/questd/internal/player"
	"github.com/sandeepkv93/questd/internal/scheduler"
)

type View string

const (
	ViewObjectives    View = "Objectives"
	ViewDetail        View = "Detail"
	ViewNotifications View = "Notifications"
	ViewPlayer        View = "Player"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Objectives    string
	Detail        string
	Notifications string
	Player        string
	Help          string
	Quit          string
}

// Deps wire the model to the running application. Engine is required; the
// rest may be nil.
type Deps struct {
	Engine   *engine.Engine
	Ledger   *player.Ledger
	Feed     *notify.Feed
	Expiries <-chan scheduler.ExpiryEvent
	Profile  string
	Now      func() time.Time
}

type Model struct {
	CurrentView View
	SelectedID  string
	SubCursor   int
	Engine      *engine.Engine
	Ledger      *player.Ledger
	Feed        *notify.Feed
	Expiries    <-chan scheduler.ExpiryEvent
	Session     commands.Session
	Profile     string
	Palette     CommandPaletteState
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error
	now         func() time.Time

	objectiveList  list.Model
	commandInput   textinput.Model
	objectiveBar   progress.Model
	levelBar       progress.Model
	helpModel      help.Model
	detailViewport viewport.Model
	cursor         int
}

type CommandPaletteState struct {
	Active  bool
	Input   string
	History []string
	// recall indexes History while browsing with up/down; len(History) means
	// a fresh line.
	recall int
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// CooldownExpiredMsg carries a scheduler expiry into the update loop.
type CooldownExpiredMsg struct {
	Event scheduler.ExpiryEvent
}

// CooldownTickMsg refreshes the remaining time of open cooldown windows.
type CooldownTickMsg struct {
	At time.Time
}

// RunFuncMsg runs Fn on the update loop goroutine. Background jobs use it to
// reach the engine.
type RunFuncMsg struct {
	Fn func()
}

const cooldownTickInterval = time.Second

func NewModel(deps Deps) Model {
	m := Model{
		CurrentView: ViewObjectives,
		Engine:      deps.Engine,
		Ledger:      deps.Ledger,
		Feed:        deps.Feed,
		Expiries:    deps.Expiries,
		Profile:     deps.Profile,
		now:         deps.Now,
		Keys: GlobalKeyMap{
			Objectives:    "1",
			Detail:        "2",
			Notifications: "3",
			Player:        "4",
			Help:          "?",
			Quit:          "q",
		},
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.Session = commands.Session{Engine: deps.Engine, Ledger: deps.Ledger, Profile: deps.Profile}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

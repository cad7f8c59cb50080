package update

import (
	"github.com/sandeepkv93/questd/internal/notify"
	"github.com/sandeepkv93/questd/internal/player"
	"github.com/sandeepkv93/questd/internal/views"
)

const notificationsShown = 20

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderLatestNotification() (string, bool) {
	if m.Feed == nil {
		return "", false
	}
	n, ok := m.Feed.Latest()
	if !ok {
		return "", false
	}
	return views.RenderNotification(string(n.Severity), n.Title, n.Description), n.Severity == notify.SeverityDestructive
}

func (m Model) renderNotificationsView() string {
	if m.Feed == nil {
		return views.RenderNotificationsPanel(nil)
	}
	recent := m.Feed.Recent(notificationsShown)
	items := make([]views.NotificationData, 0, len(recent))
	for _, n := range recent {
		items = append(items, views.NotificationData{
			Title:       n.Title,
			Description: n.Description,
			Severity:    string(n.Severity),
			At:          n.At.Local().Format("15:04:05"),
		})
	}
	return views.RenderNotificationsPanel(items)
}

func (m Model) playerStats() player.Stats {
	if m.Ledger == nil {
		return player.DefaultStats()
	}
	return m.Ledger.Stats()
}

func (m Model) renderPlayerView() string {
	st := m.playerStats()
	pct := 0.0
	if st.NextLevelXP > 0 {
		pct = float64(st.XP) / float64(st.NextLevelXP)
	}
	return views.RenderPlayerPanel(views.PlayerPanelData{
		Level:        st.Level,
		XP:           st.XP,
		NextLevelXP:  st.NextLevelXP,
		Gold:         st.Gold,
		ProgressView: m.levelBar.ViewAs(clampFloat(pct)),
	})
}

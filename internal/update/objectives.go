package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/questd/internal/commands"
	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/repetition"
	"github.com/sandeepkv93/questd/internal/reward"
	"github.com/sandeepkv93/questd/internal/views"
)

// subRef addresses one subobjective of the selected objective. The detail view
// walks subobjectives across phases in order.
type subRef struct {
	phaseID string
	subID   string
}

func (m Model) visibleObjectives() []model.Objective {
	if m.Engine == nil {
		return nil
	}
	return m.Engine.ObjectivesForProfile(m.Profile)
}

// ensureSelection keeps the cursor on the selected objective when the
// collection changes underneath it.
func (m *Model) ensureSelection() {
	objs := m.visibleObjectives()
	if len(objs) == 0 {
		m.cursor = 0
		m.SelectedID = ""
		m.SubCursor = 0
		return
	}
	for i, o := range objs {
		if o.ID == m.SelectedID {
			m.cursor = i
			break
		}
	}
	m.cursor = clamp(m.cursor, 0, len(objs)-1)
	if objs[m.cursor].ID != m.SelectedID {
		m.SubCursor = 0
	}
	m.SelectedID = objs[m.cursor].ID
	if subs := flattenSubs(objs[m.cursor]); len(subs) > 0 {
		m.SubCursor = clamp(m.SubCursor, 0, len(subs)-1)
	} else {
		m.SubCursor = 0
	}
}

func (m Model) selectedObjective() (model.Objective, bool) {
	if m.Engine == nil || m.SelectedID == "" {
		return model.Objective{}, false
	}
	return m.Engine.Objective(m.SelectedID)
}

func flattenSubs(o model.Objective) []subRef {
	var out []subRef
	for _, p := range o.Phases {
		for _, s := range p.SubObjectives {
			out = append(out, subRef{phaseID: p.ID, subID: s.ID})
		}
	}
	return out
}

func (m Model) selectedSub() (model.Objective, subRef, bool) {
	o, ok := m.selectedObjective()
	if !ok {
		return model.Objective{}, subRef{}, false
	}
	subs := flattenSubs(o)
	if len(subs) == 0 {
		return o, subRef{}, false
	}
	return o, subs[clamp(m.SubCursor, 0, len(subs)-1)], true
}

func (m Model) handleObjectivesKey(msg tea.KeyMsg) Model {
	n := len(m.visibleObjectives())
	switch msg.String() {
	case "j", "down":
		if m.cursor < n-1 {
			m.cursor++
			m.SelectedID = ""
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			m.SelectedID = ""
		}
	case "enter":
		if m.SelectedID != "" {
			m.CurrentView = ViewDetail
		}
	case "c":
		m = m.runOnSelected("complete")
	case "r":
		m = m.runOnSelected("reset")
	case "n":
		m = m.runOnSelected("next")
	case "y":
		m = m.runOnSelected("clone")
	case "x":
		m = m.runOnSelected("delete")
	}
	return m
}

func (m Model) handleDetailKey(msg tea.KeyMsg) Model {
	if msg.String() == "esc" {
		m.CurrentView = ViewObjectives
		return m
	}
	o, ok := m.selectedObjective()
	if !ok {
		return m
	}
	n := len(flattenSubs(o))
	switch msg.String() {
	case "j", "down":
		if m.SubCursor < n-1 {
			m.SubCursor++
		}
	case "k", "up":
		if m.SubCursor > 0 {
			m.SubCursor--
		}
	case " ", "c":
		m = m.runOnSub("complete %s")
	case "+", "=":
		m = m.runOnSub("progress %s +1")
	case "-":
		m = m.runOnSub("progress %s -1")
	case "r":
		m = m.runOnSub("reset %s")
	case "p":
		if _, ref, ok := m.selectedSub(); ok {
			m = m.runCommand(fmt.Sprintf("complete %s", commands.Ref{Objective: o.ID, Phase: ref.phaseID}))
		} else if p, ok := o.CurrentPhase(); ok {
			m = m.runCommand(fmt.Sprintf("complete %s", commands.Ref{Objective: o.ID, Phase: p.ID}))
		}
	case "n":
		m = m.runOnSelected("next")
	}
	return m
}

func (m Model) runOnSelected(verb string) Model {
	if m.SelectedID == "" {
		m.Status = StatusBar{Text: "no objective selected", IsError: true}
		return m
	}
	return m.runCommand(verb + " " + m.SelectedID)
}

func (m Model) runOnSub(format string) Model {
	o, ref, ok := m.selectedSub()
	if !ok {
		m.Status = StatusBar{Text: "no subobjective selected", IsError: true}
		return m
	}
	return m.runCommand(fmt.Sprintf(format, commands.Ref{Objective: o.ID, Phase: ref.phaseID, SubObjective: ref.subID}))
}

func (m Model) renderObjectivesView() string {
	active, done := 0, 0
	for _, o := range m.visibleObjectives() {
		if o.Completed {
			done++
		} else {
			active++
		}
	}
	return views.RenderObjectiveList(views.ObjectiveListData{
		ListView: m.objectiveList.View(),
		Profile:  m.Profile,
		Active:   active,
		Done:     done,
	})
}

func (m Model) detailData() views.ObjectiveDetailData {
	o, ok := m.selectedObjective()
	if !ok {
		return views.ObjectiveDetailData{}
	}
	now := m.now()
	_, focused, hasFocus := m.selectedSub()
	data := views.ObjectiveDetailData{
		Name:         o.Name,
		Category:     o.Category,
		Type:         string(o.Type),
		Description:  views.RenderMarkdown(o.Description),
		Completed:    o.Completed,
		Percent:      o.ProgressPercent(),
		ProgressView: m.objectiveBar.ViewAs(float64(o.ProgressPercent()) / 100),
		Rewards: fmt.Sprintf("%d XP, %d gold available | %d gold earned",
			reward.PotentialXP(o), reward.PotentialGold(o), reward.LifetimeGold(o)),
		Legacy: legacySummary(o.Legacy),
	}
	if o.IsRepeatable {
		data.Completions = repeatCounter(o.CurrentCompletions, o.MaxCompletions)
	}
	if o.ExpiresAt != nil {
		data.Expires = o.ExpiresAt.Local().Format("2006-01-02 15:04")
	}
	for pi, p := range o.Phases {
		pd := views.PhaseData{
			Name:      p.Name,
			Completed: p.Completed,
			Current:   pi == o.CurrentPhaseIndex,
		}
		if p.Repetition.IsRepeatable {
			pd.Repeat = "repeats " + repeatCounter(p.Repetition.CurrentRepetitions, limitOf(p.Repetition))
		}
		for _, s := range p.SubObjectives {
			row := views.SubObjectiveRowData{
				Name:      s.Name,
				Current:   s.CurrentValue,
				Target:    s.TargetValue,
				Completed: s.Completed,
				Selected:  hasFocus && focused.phaseID == p.ID && focused.subID == s.ID,
			}
			if left := repetition.CooldownRemaining(s.Cooldown, now); left > 0 {
				row.Cooldown = repetition.FormatRemaining(left)
			}
			pd.Subs = append(pd.Subs, row)
		}
		data.Phases = append(data.Phases, pd)
	}
	return data
}

func (m Model) renderDetailView() string {
	return m.detailViewport.View()
}

func legacySummary(p model.LegacyProgress) string {
	switch v := p.(type) {
	case model.CollectionProgress:
		parts := make([]string, 0, len(v.Items))
		for _, it := range v.Items {
			parts = append(parts, fmt.Sprintf("%s %d/%d", it.Name, it.CurrentAmount, it.TargetAmount))
		}
		return strings.Join(parts, ", ")
	case model.StepProgress:
		return fmt.Sprintf("step %d of %d", v.Current, v.Total)
	case model.PercentageProgress:
		return fmt.Sprintf("%d%% of %d%%", v.Current, v.Target)
	case model.KillProgress:
		return fmt.Sprintf("%d/%d defeated", v.Current, v.Target)
	default:
		return ""
	}
}

func repeatCounter(count, limit int) string {
	if limit <= 0 {
		return fmt.Sprintf("%d/unlimited", count)
	}
	return fmt.Sprintf("%d/%d", count, limit)
}

func limitOf(r model.Repetition) int {
	if r.IsInfiniteLoop {
		return 0
	}
	return r.MaxRepetitions
}

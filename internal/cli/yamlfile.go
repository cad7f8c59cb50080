package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/questd/internal/model"
)

var ErrEmptyObjectiveFile = errors.New("cli: objective file is empty")

// objectiveFile is the hand-written YAML form of an objective. show prints it
// and add -f reads it back; ids are informational and ignored on import.
type objectiveFile struct {
	ID             string        `yaml:"id,omitempty"`
	Name           string        `yaml:"name"`
	Description    string        `yaml:"description,omitempty"`
	Category       string        `yaml:"category,omitempty"`
	Type           string        `yaml:"type,omitempty"`
	Repeatable     bool          `yaml:"repeatable,omitempty"`
	MaxCompletions int           `yaml:"maxCompletions,omitempty"`
	Completions    int           `yaml:"completions,omitempty"`
	Completed      bool          `yaml:"completed,omitempty"`
	XP             rewardFile    `yaml:"xp,omitempty"`
	Gold           rewardFile    `yaml:"gold,omitempty"`
	ExpiresAt      *time.Time    `yaml:"expiresAt,omitempty"`
	Progress       *progressFile `yaml:"progress,omitempty"`
	Phases         []phaseFile   `yaml:"phases,omitempty"`
}

// progressFile is the scalar progress of an objective without phases. Target
// is the step total, percentage target or kill target depending on the type.
type progressFile struct {
	Current int        `yaml:"current,omitempty"`
	Target  int        `yaml:"target,omitempty"`
	Items   []itemFile `yaml:"items,omitempty"`
}

type itemFile struct {
	Name    string `yaml:"name"`
	Target  int    `yaml:"target,omitempty"`
	Current int    `yaml:"current,omitempty"`
}

type rewardFile struct {
	PerCompletion int `yaml:"perCompletion,omitempty"`
	PerPoint      int `yaml:"perPoint,omitempty"`
}

type repeatFile struct {
	Infinite bool `yaml:"infinite,omitempty"`
	Max      int  `yaml:"max,omitempty"`
	Count    int  `yaml:"count,omitempty"`
}

type phaseFile struct {
	ID            string      `yaml:"id,omitempty"`
	Name          string      `yaml:"name"`
	Description   string      `yaml:"description,omitempty"`
	Completed     bool        `yaml:"completed,omitempty"`
	XP            rewardFile  `yaml:"xp,omitempty"`
	Gold          rewardFile  `yaml:"gold,omitempty"`
	Repeat        *repeatFile `yaml:"repeat,omitempty"`
	SubObjectives []subFile   `yaml:"subObjectives,omitempty"`
}

type subFile struct {
	ID          string        `yaml:"id,omitempty"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Target      int           `yaml:"target,omitempty"`
	Current     int           `yaml:"current,omitempty"`
	XP          rewardFile    `yaml:"xp,omitempty"`
	Gold        rewardFile    `yaml:"gold,omitempty"`
	Repeat      *repeatFile   `yaml:"repeat,omitempty"`
	Cooldown    time.Duration `yaml:"cooldown,omitempty"`
}

// parseObjectiveFile accepts a single objective or a sequence of them.
func parseObjectiveFile(raw []byte) ([]model.Objective, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse objective file: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, ErrEmptyObjectiveFile
	}
	var files []objectiveFile
	switch root := doc.Content[0]; root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&files); err != nil {
			return nil, fmt.Errorf("decode objectives: %w", err)
		}
	default:
		var f objectiveFile
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("decode objective: %w", err)
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, ErrEmptyObjectiveFile
	}
	out := make([]model.Objective, 0, len(files))
	for i, f := range files {
		if f.Name == "" {
			return nil, fmt.Errorf("objective %d: name is required", i+1)
		}
		out = append(out, f.toModel())
	}
	return out, nil
}

func writeObjectiveFile(w io.Writer, o model.Objective) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fromModel(o)); err != nil {
		return fmt.Errorf("encode objective: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (f objectiveFile) toModel() model.Objective {
	o := model.Objective{
		Name:           f.Name,
		Description:    f.Description,
		Category:       f.Category,
		Type:           model.ObjectiveType(f.Type),
		IsRepeatable:   f.Repeatable,
		MaxCompletions: f.MaxCompletions,
		XPReward:       f.XP.toModel(),
		GoldReward:     f.Gold.toModel(),
		ExpiresAt:      f.ExpiresAt,
	}
	if len(f.Phases) == 0 && f.Progress != nil {
		o.Legacy = f.Progress.toModel(o.Type)
	}
	for _, p := range f.Phases {
		phase := model.Phase{
			Name:        p.Name,
			Description: p.Description,
			XPReward:    p.XP.toModel(),
			GoldReward:  p.Gold.toModel(),
			Repetition:  p.Repeat.toModel(),
		}
		for _, s := range p.SubObjectives {
			sub := model.SubObjective{
				Name:         s.Name,
				Description:  s.Description,
				TargetValue:  s.Target,
				CurrentValue: s.Current,
				XPReward:     s.XP.toModel(),
				GoldReward:   s.Gold.toModel(),
				Repetition:   s.Repeat.toModel(),
			}
			if s.Cooldown > 0 {
				sub.Cooldown = model.Cooldown{Enabled: true, Duration: s.Cooldown}
			}
			phase.SubObjectives = append(phase.SubObjectives, sub)
		}
		o.Phases = append(o.Phases, phase)
	}
	return o
}

func fromModel(o model.Objective) objectiveFile {
	f := objectiveFile{
		ID:             o.ID,
		Name:           o.Name,
		Description:    o.Description,
		Category:       o.Category,
		Type:           string(o.Type),
		Repeatable:     o.IsRepeatable,
		MaxCompletions: o.MaxCompletions,
		Completions:    o.CurrentCompletions,
		Completed:      o.Completed,
		XP:             rewardFromModel(o.XPReward),
		Gold:           rewardFromModel(o.GoldReward),
		ExpiresAt:      o.ExpiresAt,
	}
	if len(o.Phases) == 0 {
		f.Progress = progressFromModel(o.Legacy)
	}
	for _, p := range o.Phases {
		pf := phaseFile{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Completed:   p.Completed,
			XP:          rewardFromModel(p.XPReward),
			Gold:        rewardFromModel(p.GoldReward),
			Repeat:      repeatFromModel(p.Repetition),
		}
		for _, s := range p.SubObjectives {
			sf := subFile{
				ID:          s.ID,
				Name:        s.Name,
				Description: s.Description,
				Target:      s.TargetValue,
				Current:     s.CurrentValue,
				XP:          rewardFromModel(s.XPReward),
				Gold:        rewardFromModel(s.GoldReward),
				Repeat:      repeatFromModel(s.Repetition),
			}
			if s.Cooldown.Enabled {
				sf.Cooldown = s.Cooldown.Duration
			}
			pf.SubObjectives = append(pf.SubObjectives, sf)
		}
		f.Phases = append(f.Phases, pf)
	}
	return f
}

func (r rewardFile) toModel() model.RewardPair {
	return model.RewardPair{PerCompletion: r.PerCompletion, PerPoint: r.PerPoint}
}

func rewardFromModel(r model.RewardPair) rewardFile {
	return rewardFile{PerCompletion: r.PerCompletion, PerPoint: r.PerPoint}
}

// A nil repeat block means not repeatable.
func (r *repeatFile) toModel() model.Repetition {
	if r == nil {
		return model.Repetition{}
	}
	return model.Repetition{
		IsRepeatable:       true,
		IsInfiniteLoop:     r.Infinite,
		MaxRepetitions:     r.Max,
		CurrentRepetitions: r.Count,
	}
}

func repeatFromModel(r model.Repetition) *repeatFile {
	if !r.IsRepeatable {
		return nil
	}
	return &repeatFile{Infinite: r.IsInfiniteLoop, Max: r.MaxRepetitions, Count: r.CurrentRepetitions}
}

// toModel returns nil for types without scalar progress; normalization then
// fills in the empty case.
func (p *progressFile) toModel(t model.ObjectiveType) model.LegacyProgress {
	switch t {
	case model.TypeCollection:
		items := make([]model.CollectionItem, 0, len(p.Items))
		for _, it := range p.Items {
			items = append(items, model.CollectionItem{Name: it.Name, TargetAmount: it.Target, CurrentAmount: it.Current})
		}
		return model.CollectionProgress{Items: items}
	case model.TypeSteps:
		return model.StepProgress{Current: p.Current, Total: p.Target}
	case model.TypePercentage:
		return model.PercentageProgress{Current: p.Current, Target: p.Target}
	case model.TypeKill:
		return model.KillProgress{Current: p.Current, Target: p.Target}
	default:
		return nil
	}
}

func progressFromModel(l model.LegacyProgress) *progressFile {
	switch p := l.(type) {
	case model.CollectionProgress:
		f := &progressFile{}
		for _, it := range p.Items {
			f.Items = append(f.Items, itemFile{Name: it.Name, Target: it.TargetAmount, Current: it.CurrentAmount})
		}
		return f
	case model.StepProgress:
		return &progressFile{Current: p.Current, Target: p.Total}
	case model.PercentageProgress:
		return &progressFile{Current: p.Current, Target: p.Target}
	case model.KillProgress:
		return &progressFile{Current: p.Current, Target: p.Target}
	default:
		return nil
	}
}

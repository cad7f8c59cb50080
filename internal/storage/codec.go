package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/player"
)

var ErrMalformedSnapshot = errors.New("storage: malformed snapshot")

type rewardDTO struct {
	PerCompletion int `json:"perCompletion"`
	PerPoint      int `json:"perPoint"`
}

type locationDTO struct {
	Zone        string `json:"zone,omitempty"`
	Coordinates string `json:"coordinates,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type collectionItemDTO struct {
	Name          string `json:"name"`
	TargetAmount  int    `json:"targetAmount"`
	CurrentAmount int    `json:"currentAmount"`
}

type subObjectiveDTO struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	Completed          bool         `json:"completed"`
	CurrentValue       int          `json:"currentValue"`
	TargetValue        int          `json:"targetValue"`
	XPReward           rewardDTO    `json:"xpReward"`
	GoldReward         rewardDTO    `json:"goldReward"`
	Location           *locationDTO `json:"location,omitempty"`
	IsRepeatable       bool         `json:"isRepeatable"`
	IsInfiniteLoop     bool         `json:"isInfiniteLoop"`
	MaxRepetitions     int          `json:"maxRepetitions,omitempty"`
	CurrentRepetitions int          `json:"currentRepetitions"`
	TotalGoldEarned    int          `json:"totalGoldEarned"`
	HasCooldown        bool         `json:"hasCooldown"`
	CooldownDuration   int64        `json:"cooldownDuration"`
	CooldownStartTime  *int64       `json:"cooldownStartTime,omitempty"`
	CooldownProgress   int          `json:"cooldownProgress"`
}

type phaseDTO struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	Completed          bool              `json:"completed"`
	SubObjectives      []subObjectiveDTO `json:"subObjectives"`
	XPReward           rewardDTO         `json:"xpReward"`
	GoldReward         rewardDTO         `json:"goldReward"`
	Location           *locationDTO      `json:"location,omitempty"`
	IsRepeatable       bool              `json:"isRepeatable"`
	IsInfiniteLoop     bool              `json:"isInfiniteLoop"`
	MaxRepetitions     int               `json:"maxRepetitions,omitempty"`
	CurrentRepetitions int               `json:"currentRepetitions"`
	TotalGoldEarned    int               `json:"totalGoldEarned"`
	TargetValue        int               `json:"targetValue"`
}

type objectiveDTO struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	Type               string              `json:"type"`
	Completed          bool                `json:"completed"`
	XPReward           rewardDTO           `json:"xpReward"`
	GoldReward         rewardDTO           `json:"goldReward"`
	Location           *locationDTO        `json:"location,omitempty"`
	CreatedAt          string              `json:"createdAt"`
	UpdatedAt          string              `json:"updatedAt"`
	ImageURL           string              `json:"imageUrl,omitempty"`
	Category           string              `json:"category,omitempty"`
	IsRepeatable       bool                `json:"isRepeatable"`
	MaxCompletions     int                 `json:"maxCompletions,omitempty"`
	CurrentCompletions int                 `json:"currentCompletions"`
	TotalGoldEarned    int                 `json:"totalGoldEarned"`
	Phases             []phaseDTO          `json:"phases"`
	CurrentPhaseIndex  int                 `json:"currentPhaseIndex"`
	CollectionItems    []collectionItemDTO `json:"collectionItems,omitempty"`
	TotalSteps         *int                `json:"totalSteps,omitempty"`
	CurrentStep        *int                `json:"currentStep,omitempty"`
	Percentage         *int                `json:"percentage,omitempty"`
	TargetPercentage   *int                `json:"targetPercentage,omitempty"`
	EstimatedTime      *int                `json:"estimatedTime,omitempty"`
	TargetKills        *int                `json:"targetKills,omitempty"`
	CurrentKills       *int                `json:"currentKills,omitempty"`
	ExpiresAt          string              `json:"expiresAt,omitempty"`
	CustomData         json.RawMessage     `json:"customData,omitempty"`
	ProfileID          string              `json:"profileId,omitempty"`
}

type fieldDefault struct {
	path  string
	value any
}

var rewardDefaults = []fieldDefault{
	{"xpReward.perCompletion", 0},
	{"xpReward.perPoint", 0},
	{"goldReward.perCompletion", 0},
	{"goldReward.perPoint", 0},
	{"totalGoldEarned", 0},
}

var objectiveDefaults = append([]fieldDefault{
	{"type", string(model.TypeCustom)},
	{"completed", false},
	{"isRepeatable", false},
	{"currentCompletions", 0},
	{"phases", []any{}},
	{"currentPhaseIndex", 0},
}, rewardDefaults...)

var phaseDefaults = append([]fieldDefault{
	{"completed", false},
	{"subObjectives", []any{}},
	{"isRepeatable", false},
	{"isInfiniteLoop", false},
	{"currentRepetitions", 0},
	{"targetValue", model.DefaultTargetValue},
}, rewardDefaults...)

var subObjectiveDefaults = append([]fieldDefault{
	{"completed", false},
	{"currentValue", 0},
	{"targetValue", model.DefaultTargetValue},
	{"isRepeatable", false},
	{"isInfiniteLoop", false},
	{"currentRepetitions", 0},
	{"hasCooldown", false},
	{"cooldownDuration", int64(model.DefaultCooldownDuration / time.Second)},
	{"cooldownProgress", 0},
}, rewardDefaults...)

// EncodeObjectives renders the collection in its persisted shape.
func EncodeObjectives(objs []model.Objective) ([]byte, error) {
	out := make([]objectiveDTO, 0, len(objs))
	for _, o := range objs {
		out = append(out, toObjectiveDTO(o))
	}
	return json.Marshal(out)
}

// DecodeObjectives parses a persisted collection. Missing fields get the same
// defaults new objectives get, and each objective is normalized.
func DecodeObjectives(raw []byte) ([]model.Objective, error) {
	filled, err := backfillObjectives(raw)
	if err != nil {
		return nil, err
	}
	var dtos []objectiveDTO
	if err := json.Unmarshal(filled, &dtos); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	out := make([]model.Objective, 0, len(dtos))
	for i, dto := range dtos {
		o, err := fromObjectiveDTO(dto)
		if err != nil {
			return nil, fmt.Errorf("objective %d: %w", i, err)
		}
		out = append(out, model.Normalize(o))
	}
	return out, nil
}

func backfillObjectives(raw []byte) ([]byte, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedSnapshot)
	}
	root := gjson.ParseBytes(raw)
	if root.Type == gjson.Null {
		return []byte("[]"), nil
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected an array of objectives", ErrMalformedSnapshot)
	}

	out := raw
	var err error
	for i, obj := range root.Array() {
		prefix := strconv.Itoa(i)
		if out, err = backfill(out, obj, prefix, objectiveDefaults); err != nil {
			return nil, err
		}
		for pi, phase := range obj.Get("phases").Array() {
			phasePrefix := prefix + ".phases." + strconv.Itoa(pi)
			if out, err = backfill(out, phase, phasePrefix, phaseDefaults); err != nil {
				return nil, err
			}
			for si, sub := range phase.Get("subObjectives").Array() {
				subPrefix := phasePrefix + ".subObjectives." + strconv.Itoa(si)
				if out, err = backfill(out, sub, subPrefix, subObjectiveDefaults); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

func backfill(raw []byte, node gjson.Result, prefix string, defaults []fieldDefault) ([]byte, error) {
	var err error
	for _, d := range defaults {
		if v := node.Get(d.path); v.Exists() && v.Type != gjson.Null {
			continue
		}
		path := d.path
		if prefix != "" {
			path = prefix + "." + d.path
		}
		if raw, err = sjson.SetBytes(raw, path, d.value); err != nil {
			return nil, fmt.Errorf("backfill %s: %w", path, err)
		}
	}
	return raw, nil
}

func toObjectiveDTO(o model.Objective) objectiveDTO {
	dto := objectiveDTO{
		ID:                 o.ID,
		Name:               o.Name,
		Description:        o.Description,
		Type:               string(o.Type),
		Completed:          o.Completed,
		XPReward:           rewardDTO(o.XPReward),
		GoldReward:         rewardDTO(o.GoldReward),
		Location:           toLocationDTO(o.Location),
		CreatedAt:          formatTime(o.CreatedAt),
		UpdatedAt:          formatTime(o.UpdatedAt),
		ImageURL:           o.ImageURL,
		Category:           o.Category,
		IsRepeatable:       o.IsRepeatable,
		MaxCompletions:     o.MaxCompletions,
		CurrentCompletions: o.CurrentCompletions,
		TotalGoldEarned:    o.TotalGoldEarned,
		Phases:             make([]phaseDTO, 0, len(o.Phases)),
		CurrentPhaseIndex:  o.CurrentPhaseIndex,
		ProfileID:          o.ProfileID,
	}
	if o.ExpiresAt != nil {
		dto.ExpiresAt = formatTime(*o.ExpiresAt)
	}
	for _, p := range o.Phases {
		dto.Phases = append(dto.Phases, toPhaseDTO(p))
	}

	switch v := o.Legacy.(type) {
	case model.CollectionProgress:
		for _, item := range v.Items {
			dto.CollectionItems = append(dto.CollectionItems, collectionItemDTO(item))
		}
	case model.StepProgress:
		dto.CurrentStep, dto.TotalSteps = intPtr(v.Current), intPtr(v.Total)
	case model.PercentageProgress:
		dto.Percentage, dto.TargetPercentage = intPtr(v.Current), intPtr(v.Target)
		if v.EstimatedMinutes > 0 {
			dto.EstimatedTime = intPtr(v.EstimatedMinutes)
		}
	case model.KillProgress:
		dto.CurrentKills, dto.TargetKills = intPtr(v.Current), intPtr(v.Target)
	case model.CustomProgress:
		if len(v.Data) > 0 {
			dto.CustomData = v.Data
		}
	}
	return dto
}

func toPhaseDTO(p model.Phase) phaseDTO {
	dto := phaseDTO{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		Completed:          p.Completed,
		SubObjectives:      make([]subObjectiveDTO, 0, len(p.SubObjectives)),
		XPReward:           rewardDTO(p.XPReward),
		GoldReward:         rewardDTO(p.GoldReward),
		Location:           toLocationDTO(p.Location),
		IsRepeatable:       p.Repetition.IsRepeatable,
		IsInfiniteLoop:     p.Repetition.IsInfiniteLoop,
		MaxRepetitions:     p.Repetition.MaxRepetitions,
		CurrentRepetitions: p.Repetition.CurrentRepetitions,
		TotalGoldEarned:    p.TotalGoldEarned,
		TargetValue:        p.TargetValue,
	}
	for _, sub := range p.SubObjectives {
		dto.SubObjectives = append(dto.SubObjectives, toSubObjectiveDTO(sub))
	}
	return dto
}

func toSubObjectiveDTO(s model.SubObjective) subObjectiveDTO {
	dto := subObjectiveDTO{
		ID:                 s.ID,
		Name:               s.Name,
		Description:        s.Description,
		Completed:          s.Completed,
		CurrentValue:       s.CurrentValue,
		TargetValue:        s.TargetValue,
		XPReward:           rewardDTO(s.XPReward),
		GoldReward:         rewardDTO(s.GoldReward),
		Location:           toLocationDTO(s.Location),
		IsRepeatable:       s.Repetition.IsRepeatable,
		IsInfiniteLoop:     s.Repetition.IsInfiniteLoop,
		MaxRepetitions:     s.Repetition.MaxRepetitions,
		CurrentRepetitions: s.Repetition.CurrentRepetitions,
		TotalGoldEarned:    s.TotalGoldEarned,
		HasCooldown:        s.Cooldown.Enabled,
		CooldownDuration:   int64(s.Cooldown.Duration / time.Second),
		CooldownProgress:   s.Cooldown.Progress,
	}
	if !s.Cooldown.StartedAt.IsZero() {
		ms := s.Cooldown.StartedAt.UnixMilli()
		dto.CooldownStartTime = &ms
	}
	return dto
}

func fromObjectiveDTO(dto objectiveDTO) (model.Objective, error) {
	createdAt, err := parseTime(dto.CreatedAt)
	if err != nil {
		return model.Objective{}, fmt.Errorf("createdAt: %w", err)
	}
	updatedAt, err := parseTime(dto.UpdatedAt)
	if err != nil {
		return model.Objective{}, fmt.Errorf("updatedAt: %w", err)
	}
	o := model.Objective{
		ID:                 dto.ID,
		Name:               dto.Name,
		Description:        dto.Description,
		Category:           dto.Category,
		Type:               model.ObjectiveType(dto.Type),
		CurrentPhaseIndex:  dto.CurrentPhaseIndex,
		Completed:          dto.Completed,
		IsRepeatable:       dto.IsRepeatable,
		MaxCompletions:     dto.MaxCompletions,
		CurrentCompletions: dto.CurrentCompletions,
		XPReward:           model.RewardPair(dto.XPReward),
		GoldReward:         model.RewardPair(dto.GoldReward),
		TotalGoldEarned:    dto.TotalGoldEarned,
		ProfileID:          dto.ProfileID,
		ImageURL:           dto.ImageURL,
		Location:           fromLocationDTO(dto.Location),
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}
	if dto.ExpiresAt != "" {
		at, err := parseTime(dto.ExpiresAt)
		if err != nil {
			return model.Objective{}, fmt.Errorf("expiresAt: %w", err)
		}
		o.ExpiresAt = &at
	}
	if len(dto.Phases) > 0 {
		o.Phases = make([]model.Phase, 0, len(dto.Phases))
		for _, p := range dto.Phases {
			o.Phases = append(o.Phases, fromPhaseDTO(p))
		}
	}
	o.Legacy = fromLegacyFields(o.Type, dto, len(o.Phases) > 0)
	return o, nil
}

// fromLegacyFields builds the legacy progress case for t. Objectives with
// phases only carry one when some legacy field was stored.
func fromLegacyFields(t model.ObjectiveType, dto objectiveDTO, phased bool) model.LegacyProgress {
	switch t {
	case model.TypeCollection:
		if phased && dto.CollectionItems == nil {
			return nil
		}
		var items []model.CollectionItem
		for _, item := range dto.CollectionItems {
			items = append(items, model.CollectionItem(item))
		}
		return model.CollectionProgress{Items: items}
	case model.TypeSteps:
		if phased && dto.CurrentStep == nil && dto.TotalSteps == nil {
			return nil
		}
		return model.StepProgress{Current: deref(dto.CurrentStep), Total: deref(dto.TotalSteps)}
	case model.TypePercentage:
		if phased && dto.Percentage == nil && dto.TargetPercentage == nil {
			return nil
		}
		return model.PercentageProgress{Current: deref(dto.Percentage), Target: deref(dto.TargetPercentage), EstimatedMinutes: deref(dto.EstimatedTime)}
	case model.TypeKill:
		if phased && dto.CurrentKills == nil && dto.TargetKills == nil {
			return nil
		}
		return model.KillProgress{Current: deref(dto.CurrentKills), Target: deref(dto.TargetKills)}
	default:
		if phased && len(dto.CustomData) == 0 {
			return nil
		}
		return model.CustomProgress{Data: dto.CustomData}
	}
}

func fromPhaseDTO(dto phaseDTO) model.Phase {
	p := model.Phase{
		ID:              dto.ID,
		Name:            dto.Name,
		Description:     dto.Description,
		Completed:       dto.Completed,
		XPReward:        model.RewardPair(dto.XPReward),
		GoldReward:      model.RewardPair(dto.GoldReward),
		TotalGoldEarned: dto.TotalGoldEarned,
		Repetition: model.Repetition{
			IsRepeatable:       dto.IsRepeatable,
			IsInfiniteLoop:     dto.IsInfiniteLoop,
			MaxRepetitions:     dto.MaxRepetitions,
			CurrentRepetitions: dto.CurrentRepetitions,
		},
		TargetValue: dto.TargetValue,
		Location:    fromLocationDTO(dto.Location),
	}
	if len(dto.SubObjectives) > 0 {
		p.SubObjectives = make([]model.SubObjective, 0, len(dto.SubObjectives))
		for _, sub := range dto.SubObjectives {
			p.SubObjectives = append(p.SubObjectives, fromSubObjectiveDTO(sub))
		}
	}
	return p
}

func fromSubObjectiveDTO(dto subObjectiveDTO) model.SubObjective {
	s := model.SubObjective{
		ID:              dto.ID,
		Name:            dto.Name,
		Description:     dto.Description,
		CurrentValue:    dto.CurrentValue,
		TargetValue:     dto.TargetValue,
		Completed:       dto.Completed,
		XPReward:        model.RewardPair(dto.XPReward),
		GoldReward:      model.RewardPair(dto.GoldReward),
		TotalGoldEarned: dto.TotalGoldEarned,
		Repetition: model.Repetition{
			IsRepeatable:       dto.IsRepeatable,
			IsInfiniteLoop:     dto.IsInfiniteLoop,
			MaxRepetitions:     dto.MaxRepetitions,
			CurrentRepetitions: dto.CurrentRepetitions,
		},
		Cooldown: model.Cooldown{
			Enabled:  dto.HasCooldown,
			Duration: time.Duration(dto.CooldownDuration) * time.Second,
			Progress: dto.CooldownProgress,
		},
		Location: fromLocationDTO(dto.Location),
	}
	if dto.CooldownStartTime != nil && *dto.CooldownStartTime > 0 {
		s.Cooldown.StartedAt = time.UnixMilli(*dto.CooldownStartTime).UTC()
	}
	return s
}

// EncodePlayerStats renders player stats in their persisted shape.
func EncodePlayerStats(s player.Stats) ([]byte, error) {
	return json.Marshal(s)
}

// DecodePlayerStats parses persisted player stats, filling missing curve
// settings with the defaults.
func DecodePlayerStats(raw []byte) (player.Stats, error) {
	if !gjson.ValidBytes(raw) {
		return player.Stats{}, fmt.Errorf("%w: invalid json", ErrMalformedSnapshot)
	}
	defaults := []fieldDefault{
		{"level", 1},
		{"xp", 0},
		{"gold", 0},
		{"baseXpPerLevel", player.DefaultBaseXPPerLevel},
		{"xpIncreasePerLevel", player.DefaultXPIncreasePerLevel},
	}
	filled, err := backfill(raw, gjson.ParseBytes(raw), "", defaults)
	if err != nil {
		return player.Stats{}, err
	}
	var s player.Stats
	if err := json.Unmarshal(filled, &s); err != nil {
		return player.Stats{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return player.NewLedger(s).Stats(), nil
}

func toLocationDTO(l *model.Location) *locationDTO {
	if l == nil {
		return nil
	}
	dto := locationDTO(*l)
	return &dto
}

func fromLocationDTO(dto *locationDTO) *model.Location {
	if dto == nil {
		return nil
	}
	l := model.Location(*dto)
	return &l
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, raw)
}

func intPtr(v int) *int { return &v }

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

package commands

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/questd/internal/model"
)

// Target is a resolved Ref. Phase and SubObjective are nil when the Ref did
// not name them.
type Target struct {
	Objective    model.Objective
	Phase        *model.Phase
	SubObjective *model.SubObjective
}

// Resolve looks up ref in objs. Each part matches an exact id first, then a
// case-insensitive name, then a unique id prefix.
func Resolve(objs []model.Objective, ref Ref) (Target, error) {
	oi, err := match(len(objs), func(i int) (string, string) { return objs[i].ID, objs[i].Name }, "objective", ref.Objective)
	if err != nil {
		return Target{}, err
	}
	t := Target{Objective: objs[oi]}
	if ref.Phase == "" {
		return t, nil
	}

	phases := t.Objective.Phases
	pi, err := match(len(phases), func(i int) (string, string) { return phases[i].ID, phases[i].Name }, "phase", ref.Phase)
	if err != nil {
		return Target{}, err
	}
	t.Phase = &phases[pi]
	if ref.SubObjective == "" {
		return t, nil
	}

	subs := t.Phase.SubObjectives
	si, err := match(len(subs), func(i int) (string, string) { return subs[i].ID, subs[i].Name }, "subobjective", ref.SubObjective)
	if err != nil {
		return Target{}, err
	}
	t.SubObjective = &subs[si]
	return t, nil
}

func match(n int, at func(int) (id, name string), kind, key string) (int, error) {
	for i := 0; i < n; i++ {
		if id, _ := at(i); id == key {
			return i, nil
		}
	}
	if i, ok, err := unique(n, kind, key, func(i int) bool {
		_, name := at(i)
		return strings.EqualFold(name, key)
	}); ok || err != nil {
		return i, err
	}
	if i, ok, err := unique(n, kind, key, func(i int) bool {
		id, _ := at(i)
		return strings.HasPrefix(id, key)
	}); ok || err != nil {
		return i, err
	}
	return -1, &CommandError{Code: ErrCodeNotFound, Message: fmt.Sprintf("no %s matches %q", kind, key)}
}

func unique(n int, kind, key string, pred func(int) bool) (int, bool, error) {
	found := -1
	for i := 0; i < n; i++ {
		if !pred(i) {
			continue
		}
		if found >= 0 {
			return -1, false, invalid("%s %q is ambiguous", kind, key)
		}
		found = i
	}
	return found, found >= 0, nil
}

package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add slay the dragon", TypeAdd},
		{"complete forest/gather/wood", TypeComplete},
		{"progress forest/gather/wood +3", TypeProgress},
		{"reset forest/build", TypeReset},
		{"clone forest", TypeClone},
		{"delete forest", TypeDelete},
		{"next forest", TypeNext},
		{"show objectives profile:alt", TypeShow},
		{"track herbs =3 sage leaf", TypeTrack},
		{"rename forest Deep woods", TypeRename},
		{"spend 5", TypeSpend},
		{"set base-xp 1000", TypeSet},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "/", " / "} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input error, got %v", in, err)
		}
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{
		"add",
		"complete",
		"complete a b",
		"clone forest/gather",
		"next a/b/c",
		"progress forest/gather +1",
		"progress forest/gather/wood",
		"progress forest/gather/wood lots",
		"progress forest/gather/wood =-2",
		"reset a/b/c/d",
		"reset a//c",
		"show",
		"track herbs",
		"track herbs/gather +1",
		"rename forest",
		"spend",
		"spend 0",
		"spend lots",
		"set level 3",
		"set base-xp -1",
	} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument error, got %v", in, err)
		}
	}
}

func TestParseProgressAmounts(t *testing.T) {
	cases := []struct {
		in       string
		amount   int
		absolute bool
	}{
		{"progress a/b/c +3", 3, false},
		{"progress a/b/c -2", -2, false},
		{"progress a/b/c 4", 4, false},
		{"progress a/b/c =10", 10, true},
	}
	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		p := cmd.Progress
		if p.Amount != tc.amount || p.Absolute != tc.absolute {
			t.Fatalf("parse %q = %+v", tc.in, p)
		}
		if p.Target != (Ref{Objective: "a", Phase: "b", SubObjective: "c"}) {
			t.Fatalf("parse %q target = %+v", tc.in, p.Target)
		}
	}
}

func TestParseShowProfile(t *testing.T) {
	cmd, err := Parse("show Active Profile:alt")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Show.Subject != "active" || cmd.Show.Profile != "alt" {
		t.Fatalf("unexpected show args: %+v", cmd.Show)
	}
}

func TestRefString(t *testing.T) {
	ref, err := ParseRef(" forest / gather ")
	if err != nil {
		t.Fatalf("parse ref: %v", err)
	}
	if ref.String() != "forest/gather" {
		t.Fatalf("unexpected ref string: %q", ref.String())
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Name != "write docs" {
				t.Fatalf("unexpected name: %q", a.Name)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteTargetDispatch(t *testing.T) {
	got := map[Type]string{}
	record := func(kind Type) func(TargetArgs) (Result, error) {
		return func(a TargetArgs) (Result, error) {
			got[kind] = a.Target.String()
			return Result{}, nil
		}
	}
	handlers := Handlers{
		Complete: record(TypeComplete),
		Reset:    record(TypeReset),
		Clone:    record(TypeClone),
		Delete:   record(TypeDelete),
		Next:     record(TypeNext),
	}
	for _, in := range []string{"complete a/b", "reset a/b/c", "clone a", "delete a", "next a"} {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", in, err)
		}
		if _, err := Execute(cmd, handlers); err != nil {
			t.Fatalf("execute %q failed: %v", in, err)
		}
	}
	if got[TypeComplete] != "a/b" || got[TypeReset] != "a/b/c" || got[TypeClone] != "a" || len(got) != 5 {
		t.Fatalf("unexpected dispatch: %v", got)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	for _, in := range []string{"show objectives", "reset a", "progress a/b/c +1", "track a +1", "rename a b", "spend 1", "set xp-increase 1"} {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		_, err = Execute(cmd, Handlers{})
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
			t.Fatalf("%q: expected missing handler error, got %v", in, err)
		}
	}
}

func TestParseTrackAndSet(t *testing.T) {
	cmd, err := Parse("track herbs =3 sage leaf")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := TrackArgs{Target: Ref{Objective: "herbs"}, Amount: 3, Absolute: true, Item: "sage leaf"}
	if *cmd.Track != want {
		t.Fatalf("track args = %+v, want %+v", *cmd.Track, want)
	}

	cmd, err = Parse("set XP-Increase 250")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Set.Key != SettingXPIncrease || cmd.Set.Value != 250 {
		t.Fatalf("unexpected set args: %+v", *cmd.Set)
	}
}

package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeComplete Type = "complete"
	TypeProgress Type = "progress"
	TypeReset    Type = "reset"
	TypeClone    Type = "clone"
	TypeDelete   Type = "delete"
	TypeNext     Type = "next"
	TypeShow     Type = "show"
	TypeTrack    Type = "track"
	TypeRename   Type = "rename"
	TypeSpend    Type = "spend"
	TypeSet      Type = "set"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
	ErrCodeNotFound        ErrorCode = "not_found"
	ErrCodeRejected        ErrorCode = "rejected"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Ref names an objective, optionally narrowed to a phase and a subobjective.
// Each part is an id, a unique id prefix or a name.
type Ref struct {
	Objective    string
	Phase        string
	SubObjective string
}

func (r Ref) String() string {
	parts := []string{r.Objective}
	if r.Phase != "" {
		parts = append(parts, r.Phase)
	}
	if r.SubObjective != "" {
		parts = append(parts, r.SubObjective)
	}
	return strings.Join(parts, "/")
}

// ParseRef splits "objective[/phase[/subobjective]]".
func ParseRef(raw string) (Ref, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) > 3 {
		return Ref{}, invalid("reference %q has more than three parts", raw)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return Ref{}, invalid("reference %q has an empty part", raw)
		}
	}
	ref := Ref{Objective: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		ref.Phase = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		ref.SubObjective = strings.TrimSpace(parts[2])
	}
	return ref, nil
}

type AddArgs struct {
	Name string
}

type TargetArgs struct {
	Target Ref
}

// ProgressArgs either moves a subobjective by Amount or, when Absolute is set,
// sets it to Amount.
type ProgressArgs struct {
	Target   Ref
	Amount   int
	Absolute bool
}

type ShowArgs struct {
	Subject string
	Profile string
}

// TrackArgs moves the scalar progress of an objective without phases. Item
// picks a collection entry by name or 1-based position.
type TrackArgs struct {
	Target   Ref
	Amount   int
	Absolute bool
	Item     string
}

type RenameArgs struct {
	Target Ref
	Name   string
}

type SpendArgs struct {
	Amount int
}

// Settings accepted by "set".
const (
	SettingBaseXP     = "base-xp"
	SettingXPIncrease = "xp-increase"
)

type SetArgs struct {
	Key   string
	Value int
}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Target   *TargetArgs
	Progress *ProgressArgs
	Show     *ShowArgs
	Track    *TrackArgs
	Rename   *RenameArgs
	Spend    *SpendArgs
	Set      *SetArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeComplete, TypeReset, TypeClone, TypeDelete, TypeNext:
		return parseTarget(input, Type(head), args)
	case TypeProgress:
		return parseProgress(input, args)
	case TypeShow:
		return parseShow(input, args)
	case TypeTrack:
		return parseTrack(input, args)
	case TypeRename:
		return parseRename(input, args)
	case TypeSpend:
		return parseSpend(input, args)
	case TypeSet:
		return parseSet(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return Command{}, invalid("add requires a name")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Name: name}}, nil
}

func parseTarget(raw string, t Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("%s requires exactly one target", t)
	}
	ref, err := ParseRef(args[0])
	if err != nil {
		return Command{}, err
	}
	switch t {
	case TypeClone, TypeDelete, TypeNext:
		if ref.Phase != "" {
			return Command{}, invalid("%s takes an objective, got %s", t, ref)
		}
	}
	return Command{Type: t, Raw: raw, Target: &TargetArgs{Target: ref}}, nil
}

func parseProgress(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("progress requires a target and an amount")
	}
	ref, err := ParseRef(args[0])
	if err != nil {
		return Command{}, err
	}
	if ref.SubObjective == "" {
		return Command{}, invalid("progress needs objective/phase/subobjective, got %s", ref)
	}
	amount, absolute, err := ParseAmount(args[1])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeProgress, Raw: raw, Progress: &ProgressArgs{Target: ref, Amount: amount, Absolute: absolute}}, nil
}

// ParseAmount accepts "+n", "-n" and bare "n" as relative changes and "=n" as an
// absolute value.
func ParseAmount(raw string) (int, bool, error) {
	s := strings.TrimSpace(raw)
	absolute := strings.HasPrefix(s, "=")
	if absolute {
		s = strings.TrimPrefix(s, "=")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, invalid("amount %q is not a number", raw)
	}
	if absolute && n < 0 {
		return 0, false, invalid("absolute amount must not be negative")
	}
	return n, absolute, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("show requires a subject")
	}
	subject := strings.ToLower(args[0])
	profile := ""
	for _, arg := range args[1:] {
		if strings.HasPrefix(strings.ToLower(arg), "profile:") {
			profile = strings.TrimSpace(arg[len("profile:"):])
		}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject, Profile: profile}}, nil
}

func parseTrack(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("track requires an objective and an amount")
	}
	ref, err := ParseRef(args[0])
	if err != nil {
		return Command{}, err
	}
	if ref.Phase != "" {
		return Command{}, invalid("track takes an objective, got %s", ref)
	}
	amount, absolute, err := ParseAmount(args[1])
	if err != nil {
		return Command{}, err
	}
	item := strings.Join(args[2:], " ")
	return Command{Type: TypeTrack, Raw: raw, Track: &TrackArgs{Target: ref, Amount: amount, Absolute: absolute, Item: item}}, nil
}

func parseRename(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("rename requires an objective and a new name")
	}
	ref, err := ParseRef(args[0])
	if err != nil {
		return Command{}, err
	}
	if ref.Phase != "" {
		return Command{}, invalid("rename takes an objective, got %s", ref)
	}
	return Command{Type: TypeRename, Raw: raw, Rename: &RenameArgs{Target: ref, Name: strings.Join(args[1:], " ")}}, nil
}

func parseSpend(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("spend requires an amount")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return Command{}, invalid("spend amount %q must be a positive number", args[0])
	}
	return Command{Type: TypeSpend, Raw: raw, Spend: &SpendArgs{Amount: n}}, nil
}

func parseSet(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("set requires a setting and a value")
	}
	key := strings.ToLower(args[0])
	switch key {
	case SettingBaseXP, SettingXPIncrease:
	default:
		return Command{}, invalid("unknown setting %q (want %s or %s)", args[0], SettingBaseXP, SettingXPIncrease)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		return Command{}, invalid("setting value %q must be a non-negative number", args[1])
	}
	return Command{Type: TypeSet, Raw: raw, Set: &SetArgs{Key: key, Value: n}}, nil
}

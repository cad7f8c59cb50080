package commands

import "fmt"

type Result struct {
	Message string
	// Created is the id of an objective the command added or cloned.
	Created string
}

type Handlers struct {
	Add      func(AddArgs) (Result, error)
	Complete func(TargetArgs) (Result, error)
	Progress func(ProgressArgs) (Result, error)
	Reset    func(TargetArgs) (Result, error)
	Clone    func(TargetArgs) (Result, error)
	Delete   func(TargetArgs) (Result, error)
	Next     func(TargetArgs) (Result, error)
	Show     func(ShowArgs) (Result, error)
	Track    func(TrackArgs) (Result, error)
	Rename   func(RenameArgs) (Result, error)
	Spend    func(SpendArgs) (Result, error)
	Set      func(SetArgs) (Result, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeProgress:
		if handlers.Progress == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Progress(*cmd.Progress)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Show(*cmd.Show)
	case TypeTrack:
		if handlers.Track == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Track(*cmd.Track)
	case TypeRename:
		if handlers.Rename == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Rename(*cmd.Rename)
	case TypeSpend:
		if handlers.Spend == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Spend(*cmd.Spend)
	case TypeSet:
		if handlers.Set == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Set(*cmd.Set)
	case TypeComplete, TypeReset, TypeClone, TypeDelete, TypeNext:
		fn := map[Type]func(TargetArgs) (Result, error){
			TypeComplete: handlers.Complete,
			TypeReset:    handlers.Reset,
			TypeClone:    handlers.Clone,
			TypeDelete:   handlers.Delete,
			TypeNext:     handlers.Next,
		}[cmd.Type]
		if fn == nil {
			return Result{}, missing(cmd.Type)
		}
		return fn(*cmd.Target)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

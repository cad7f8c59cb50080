// Package cli implements the questd command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/questd/internal/config"
)

type rootOptions struct {
	envFiles []string
	profile  string
}

// NewRootCmd builds the command tree. Without a subcommand it starts the
// terminal UI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "questd",
		Short: "Track multi-phase objectives and earn XP and gold",
		Long: `questd tracks objectives made of phases and subobjectives, awards XP and
gold as they progress, and enforces repetition limits and cooldowns.

Run without arguments for the terminal UI, or use the subcommands for
one-shot changes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.Context(), true, runTUI)
		},
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files to load before reading QUESTD_* variables")
	cmd.PersistentFlags().StringVar(&opts.profile, "profile", "", "profile to scope objectives to (overrides QUESTD_PROFILE)")

	cmd.AddCommand(
		newListCmd(opts),
		newShowCmd(opts),
		newAddCmd(opts),
		newSessionCmd(opts, "complete <objective[/phase[/subobjective]]>", "Complete an objective, phase or subobjective", "complete", 1),
		newSessionCmd(opts, "progress <objective/phase/subobjective> <+n|-n|=n>", "Move a subobjective's progress", "progress", 2),
		newSessionCmd(opts, "reset <objective[/phase[/subobjective]]>", "Start another cycle of a completed unit", "reset", 1),
		newSessionCmd(opts, "clone <objective>", "Copy an objective with fresh progress", "clone", 1),
		newSessionCmd(opts, "delete <objective>", "Delete an objective", "delete", 1),
		newSessionCmd(opts, "next <objective>", "Move an objective to its next phase", "next", 1),
		newPlayerCmd(opts),
		newPruneCmd(opts),
		newDoCmd(opts),
	)
	return cmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (o *rootOptions) withApp(ctx context.Context, interactive bool, fn func(context.Context, *App) error) (err error) {
	cfg, err := config.Load(o.envFiles...)
	if err != nil {
		return err
	}
	if o.profile != "" {
		cfg.Profile = o.profile
	}
	app, err := Open(ctx, cfg, interactive)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(ctx, app)
}

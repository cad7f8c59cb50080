package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/questd/internal/commands"
	"github.com/sandeepkv93/questd/internal/model"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List objectives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.Context(), false, func(_ context.Context, app *App) error {
				objs := app.Engine.ObjectivesForProfile(app.Config.Profile)
				if !all {
					objs = activeOnly(objs)
				}
				return writeObjectiveTable(cmd.OutOrStdout(), objs)
			})
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed objectives")
	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <objective>",
		Short: "Print an objective as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), false, func(_ context.Context, app *App) error {
				ref, err := commands.ParseRef(args[0])
				if err != nil {
					return err
				}
				t, err := commands.Resolve(app.Engine.Objectives(), commands.Ref{Objective: ref.Objective})
				if err != nil {
					return err
				}
				return writeObjectiveFile(cmd.OutOrStdout(), t.Objective)
			})
		},
	}
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "add [name...]",
		Short: "Add an objective by name or from a YAML file",
		Example: `  questd add Clear the cellar
  questd add -f dungeon.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(args) == 0 {
				return errors.New("add needs a name or --file")
			}
			return opts.withApp(cmd.Context(), false, func(_ context.Context, app *App) error {
				out := cmd.OutOrStdout()
				if file == "" {
					return runSession(out, app, "add "+strings.Join(args, " "))
				}
				raw, err := readObjectiveSource(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				objs, err := parseObjectiveFile(raw)
				if err != nil {
					return err
				}
				for _, o := range objs {
					id := app.Engine.AddObjective(o, app.Config.Profile)
					fmt.Fprintf(out, "added objective %s (%s)\n", o.Name, commands.ShortID(id))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with one objective or a list of them (- for stdin)")
	return cmd
}

// newSessionCmd maps a subcommand onto the palette command of the same verb.
func newSessionCmd(opts *rootOptions, use, short, verb string, nargs int) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), false, func(_ context.Context, app *App) error {
				return runSession(cmd.OutOrStdout(), app, verb+" "+strings.Join(args, " "))
			})
		},
	}
}

func newPlayerCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "player",
		Short: "Show level, XP and gold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.Context(), false, func(_ context.Context, app *App) error {
				return runSession(cmd.OutOrStdout(), app, "show player")
			})
		},
	}
}

func newPruneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete objectives whose expiry has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.Context(), false, func(_ context.Context, app *App) error {
				removed := app.Engine.PruneExpired(time.Now())
				fmt.Fprintf(cmd.OutOrStdout(), "pruned %d expired objective(s)\n", len(removed))
				return nil
			})
		},
	}
}

func newDoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "do <command...>",
		Short: "Run a command palette line",
		Example: `  questd do progress camp/gather/wood +3
  questd do show active profile:alt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), false, func(_ context.Context, app *App) error {
				return runSession(cmd.OutOrStdout(), app, strings.Join(args, " "))
			})
		},
	}
}

// runSession prints the command result followed by any notifications it
// raised.
func runSession(w io.Writer, app *App, raw string) error {
	before := app.Feed.Total()
	res, err := app.Session().Run(raw)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, res.Message)
	fresh := int(app.Feed.Total() - before)
	if fresh <= 0 {
		return nil
	}
	recent := app.Feed.Recent(fresh)
	for i := len(recent) - 1; i >= 0; i-- {
		n := recent[i]
		if n.Description == "" {
			fmt.Fprintf(w, "  %s\n", n.Title)
			continue
		}
		fmt.Fprintf(w, "  %s: %s\n", n.Title, n.Description)
	}
	return nil
}

func readObjectiveSource(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read objective file: %w", err)
	}
	return raw, nil
}

func activeOnly(objs []model.Objective) []model.Objective {
	out := make([]model.Objective, 0, len(objs))
	for _, o := range objs {
		if !o.Completed {
			out = append(out, o)
		}
	}
	return out
}

func writeObjectiveTable(w io.Writer, objs []model.Objective) error {
	if len(objs) == 0 {
		_, err := fmt.Fprintln(w, "no objectives")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "CATEGORY", "PHASE", "PROGRESS")
	for _, o := range objs {
		phase := "-"
		if p, ok := o.CurrentPhase(); ok {
			phase = p.Name
		}
		progress := fmt.Sprintf("%d%%", o.ProgressPercent())
		if o.Completed {
			progress = "done"
		}
		t.Row(commands.ShortID(o.ID), o.Name, o.Category, phase, progress)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

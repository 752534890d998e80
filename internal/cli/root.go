package cli

import (
	"log/slog"

	"github.com/alexanderramin/kallan/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Sources  service.SourceService
	Progress service.ProgressService
	Stats    service.StatsService
	Tracker  service.Tracker

	// RubricDir is the directory watched by "rubric lint --watch".
	RubricDir string
	Logger    *slog.Logger

	// IsInteractive reports whether stdin is a terminal. Commands that run
	// forms refuse to start when it is nil or false.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// NewRootCmd creates the top-level "kallan" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "kallan",
		Short:         "Source analysis trainer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newPlayCmd(app),
		newSourcesCmd(app),
		newProgressCmd(app),
		newCheckCmd(app),
		newRubricCmd(app),
		newStatsCmd(app),
	)

	return root
}

// stepFlags is the --step flag shared by commands that address one exercise step.
func stepFlags(step *int, usage string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("step", pflag.ContinueOnError)
	fs.IntVar(step, "step", 1, usage)
	return fs
}

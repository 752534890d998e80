package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/kallan/internal/cli/formatter"
	"github.com/alexanderramin/kallan/internal/repository"
	"github.com/spf13/cobra"
)

func newStatsCmd(app *App) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.Stats.Dashboard(cmd.Context(), source)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDashboard(d))
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "only count events for this source title")

	cmd.AddCommand(
		newStatsWordsCmd(app),
		newStatsSessionCmd(app),
		newStatsClearCmd(app),
	)
	return cmd
}

func newStatsWordsCmd(app *App) *cobra.Command {
	var step, top int
	cmd := &cobra.Command{
		Use:   "words SOURCE",
		Short: "Show which words learners select in a Level 1 step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Stats.WordSelections(cmd.Context(), args[0], step)
			if errors.Is(err, repository.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Inga ordval registrerade."))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWordSelections(args[0], step, s, top))
			return nil
		},
	}
	cmd.Flags().AddFlagSet(stepFlags(&step, "Level 1 step (1-3)"))
	cmd.Flags().IntVar(&top, "top", 10, "number of words to list, -1 for all")
	return cmd
}

func newStatsSessionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "session ID",
		Short: "List the events recorded in one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := app.Stats.SessionEvents(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSessionEvents(events))
			return nil
		},
	}
}

func newStatsClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-session ID",
		Short: "Delete everything recorded in one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Stats.ClearSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s cleared.\n", args[0])
			return nil
		},
	}
}

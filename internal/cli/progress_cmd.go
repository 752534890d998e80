package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/kallan/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newProgressCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show which exercises are unlocked",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := app.Progress.Load(cmd.Context())
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProgress(snap))
			return nil
		},
	}

	cmd.AddCommand(newProgressResetCmd(app))
	return cmd
}

func newProgressResetCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Lock every exercise except the first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !app.interactive() {
					return errors.New("refusing to reset without --yes")
				}
				ok, err := confirm(cmd, "Återställ alla framsteg?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Inget ändrades."))
					return nil
				}
			}

			ctx := cmd.Context()
			app.Progress.Load(ctx)
			snap, err := app.Progress.Reset(ctx)
			if err != nil {
				return fmt.Errorf("clearing saved progress: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProgress(snap))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

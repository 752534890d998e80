package cli

import (
	"fmt"

	"github.com/alexanderramin/kallan/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newSourcesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sources",
		Aliases: []string{"ls"},
		Short:   "List available sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := app.Sources.List(cmd.Context())
			if sources == nil && err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSourceList(sources))
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.StyleYellow.Render("Some rubrics could not be loaded: run \"kallan rubric lint\"."))
			}
			return nil
		},
	}

	cmd.AddCommand(newSourcesShowCmd(app))
	return cmd
}

func newSourcesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show SOURCE",
		Short: "Show the exercises of one source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := app.Sources.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSourceDetail(src))
			return nil
		},
	}
}

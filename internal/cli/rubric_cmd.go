package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alexanderramin/kallan/internal/cli/formatter"
	"github.com/alexanderramin/kallan/internal/rubric"
	"github.com/alexanderramin/kallan/internal/service"
	"github.com/spf13/cobra"
)

func newRubricCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rubric",
		Short: "Tools for rubric authors",
	}
	cmd.AddCommand(newRubricLintCmd(app))
	return cmd
}

func newRubricLintCmd(app *App) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "lint [FILE...]",
		Short: "Check rubric documents for authoring mistakes",
		Long: `Lint every rubric in the rubric directory, or only the named files.

With --watch the directory is linted again whenever a rubric is saved,
until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var reports []service.LintReport
			if len(args) == 0 {
				var err error
				reports, err = app.Sources.Lint(ctx)
				if err != nil {
					return err
				}
			} else {
				for _, path := range args {
					reports = append(reports, app.Sources.LintFile(ctx, path))
				}
			}

			failed := 0
			for _, r := range reports {
				fmt.Fprint(out, formatter.FormatLintReport(r))
				if !r.OK() {
					failed++
				}
			}

			if watch {
				return watchRubrics(ctx, cmd, app)
			}
			if len(reports) == 0 {
				fmt.Fprintln(out, formatter.Dim("No rubric files found."))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d rubrics failed lint", failed, len(reports))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-lint rubrics when they change")
	return cmd
}

func watchRubrics(ctx context.Context, cmd *cobra.Command, app *App) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, formatter.Dim("Watching "+app.RubricDir+" (ctrl+c to stop)"))
	return rubric.Watch(ctx, app.RubricDir, rubric.DefaultDebounce, app.logger(), func(path string) {
		fmt.Fprint(out, formatter.FormatLintReport(app.Sources.LintFile(ctx, path)))
	})
}

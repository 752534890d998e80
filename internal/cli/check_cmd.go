package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexanderramin/kallan/internal/cli/formatter"
	"github.com/alexanderramin/kallan/internal/engine"
	"github.com/alexanderramin/kallan/internal/rubric"
	"github.com/spf13/cobra"
)

// The check commands evaluate an answer against a rubric without touching
// progress or analytics, so authors can try out their feedback texts.
func newCheckCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate an answer against a rubric without recording it",
	}
	cmd.AddCommand(
		newCheckLevel1Cmd(app),
		newCheckLevel2Cmd(app),
		newCheckLevel3Cmd(app),
	)
	return cmd
}

func newCheckLevel1Cmd(app *App) *cobra.Command {
	var step int
	cmd := &cobra.Command{
		Use:   "level1 SOURCE WORD...",
		Short: "Evaluate a word selection",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := app.Sources.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if step < 1 || step > rubric.Level1Steps {
				return fmt.Errorf("--step must be between 1 and %d", rubric.Level1Steps)
			}
			rs := src.Level1.Step(step)
			res := engine.EvaluateSelection(rs, args[1:])

			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatLevel1Step(rs))
			fmt.Fprintln(out, formatter.FormatTokens(engine.Tokenize(rs.Text, rs.CorrectWords), true))
			fmt.Fprintln(out)
			fmt.Fprint(out, formatter.FormatLevel1Result(res))
			return nil
		},
	}
	cmd.Flags().AddFlagSet(stepFlags(&step, "Level 1 step (1-3)"))
	return cmd
}

func newCheckLevel2Cmd(app *App) *cobra.Command {
	var step int
	cmd := &cobra.Command{
		Use:   "level2 SOURCE ANSWER...",
		Short: "Validate one template step answer",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := app.Sources.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rs, pos, ok := level2Step(src.Level2, step)
			if !ok {
				return fmt.Errorf("source %s has no Level 2 step %d", src.ID, step)
			}
			answer := strings.Join(args[1:], " ")
			if rs.Kind == rubric.KindChoice {
				if _, ok := rs.Option(answer); !ok {
					return fmt.Errorf("%w: %q", engine.ErrUnknownOption, answer)
				}
			}
			res := engine.ValidateStep(rs, answer)

			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatLevel2Step(rs, pos, len(src.Level2.Steps), ""))
			fmt.Fprint(out, formatter.FormatStepResult(res))
			return nil
		},
	}
	cmd.Flags().AddFlagSet(stepFlags(&step, "Level 2 step number"))
	return cmd
}

func newCheckLevel3Cmd(app *App) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "level3 SOURCE [TEXT...]",
		Short: "Score an essay",
		Long: `Score an essay given as arguments, read from --file, or read from
stdin when --file is "-".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := app.Sources.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			text, err := essayText(cmd, file, args[1:])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if n := engine.WordCount(text); n < src.Level3.MinWords {
				fmt.Fprintln(out, formatter.StyleYellow.Render(
					fmt.Sprintf("Texten har %d ord, minst %d krävs för att rätta i övningen.", n, src.Level3.MinWords)))
			}
			fmt.Fprint(out, formatter.FormatLevel3Result(engine.ScoreEssay(src.Level3, text)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", `read the essay from a file ("-" for stdin)`)
	return cmd
}

func essayText(cmd *cobra.Command, file string, args []string) (string, error) {
	switch {
	case file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading essay: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		return "", fmt.Errorf("no essay text: pass it as arguments or use --file")
	}
}

// level2Step finds a step by its number and returns its position too.
func level2Step(l rubric.Level2, number int) (rubric.Level2Step, int, bool) {
	for i, s := range l.Steps {
		if s.Number == number {
			return s, i, true
		}
	}
	return rubric.Level2Step{}, 0, false
}

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/alexanderramin/kallan/internal/cli/formatter"
	"github.com/alexanderramin/kallan/internal/domain"
	"github.com/alexanderramin/kallan/internal/engine"
	"github.com/alexanderramin/kallan/internal/progress"
	"github.com/alexanderramin/kallan/internal/rubric"
	"github.com/alexanderramin/kallan/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// Menu choices shared by the level loops.
const (
	actionRetry    = "retry"
	actionReveal   = "reveal"
	actionHint     = "hint"
	actionModel    = "model"
	actionEdit     = "edit"
	actionEvaluate = "evaluate"
	actionFinish   = "finish"
	actionBack     = "back"
)

func newPlayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "play [SOURCE]",
		Short: "Work through the exercises of a source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errNotInteractive
			}
			ctx := cmd.Context()
			app.Progress.Load(ctx)

			var src *rubric.Source
			var err error
			if len(args) == 1 {
				src, err = app.Sources.Get(ctx, args[0])
			} else {
				src, err = pickSource(cmd, app)
			}
			if err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}

			p := &player{
				cmd: cmd,
				out: cmd.OutOrStdout(),
				app: app,
				ex:  service.NewExercise(src, app.Progress, app.Tracker),
			}
			err = p.run()
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		},
	}
}

func pickSource(cmd *cobra.Command, app *App) (*rubric.Source, error) {
	sources, err := app.Sources.List(cmd.Context())
	if len(sources) == 0 {
		if err != nil {
			return nil, err
		}
		return nil, errors.New("no sources found")
	}

	options := make([]huh.Option[string], 0, len(sources))
	for _, s := range sources {
		options = append(options, huh.NewOption(s.Title, s.ID))
	}
	var id string
	if err := runForm(cmd, huh.NewGroup(
		huh.NewSelect[string]().
			Title("Välj källa").
			Options(options...).
			Value(&id),
	)); err != nil {
		return nil, err
	}
	return app.Sources.Get(cmd.Context(), id)
}

// player drives one exercise through huh forms.
type player struct {
	cmd *cobra.Command
	out io.Writer
	app *App
	ex  *service.Exercise
}

func (p *player) printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// levelOptions lists the three levels, labelled with their gate state.
func levelOptions(snap progress.Snapshot) []huh.Option[string] {
	l1 := domain.Level1Gate(snap.Level1StartStep())
	entries := []struct {
		gate  domain.GateID
		label string
	}{
		{l1, "Nivå 1: Hitta orden"},
		{domain.GateLevel2, "Nivå 2: Bygg din analys"},
		{domain.GateLevel3, "Nivå 3: Jämför källorna"},
	}
	options := make([]huh.Option[string], 0, len(entries)+1)
	for _, e := range entries {
		label := fmt.Sprintf("%s  %s", e.label, formatter.GateIndicator(snap.State(e.gate)))
		options = append(options, huh.NewOption(label, string(e.gate)))
	}
	return append(options, huh.NewOption("Avsluta", actionBack))
}

func (p *player) run() error {
	src := p.ex.Source()
	p.printf("%s\n", formatter.Header(src.Title))
	for {
		snap := p.app.Progress.Current()
		var choice string
		if err := runForm(p.cmd, huh.NewGroup(
			huh.NewSelect[string]().
				Title("Välj nivå").
				Options(levelOptions(snap)...).
				Value(&choice),
		)); err != nil {
			return err
		}

		var err error
		switch domain.GateID(choice) {
		case domain.GateLevel1Step1, domain.GateLevel1Step2, domain.GateLevel1Step3:
			err = p.playLevel1()
		case domain.GateLevel2:
			err = p.playLevel2()
		case domain.GateLevel3:
			err = p.playLevel3()
		default:
			return nil
		}
		switch {
		case errors.Is(err, service.ErrLevelLocked):
			p.printf("%s\n", formatter.StyleYellow.Render("Nivån är låst. Klara de tidigare nivåerna först."))
		case err != nil:
			return err
		}
	}
}

func (p *player) playLevel1() error {
	ctx := p.cmd.Context()
	l1, err := p.ex.Level1()
	if err != nil {
		return err
	}

	for !l1.Done() {
		p.printf("\n%s\n%s\n\n", formatter.FormatLevel1Step(l1.Step()), formatter.FormatTokens(l1.Tokens(), false))

		options := huh.NewOptions(l1.Words()...)
		var picked []string
		if err := runForm(p.cmd, huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Markera orden").
				Options(options...).
				Value(&picked),
		)); err != nil {
			return err
		}
		for _, w := range picked {
			l1.Toggle(w)
		}

		res, err := p.ex.EvaluateLevel1(l1)
		if errors.Is(err, engine.ErrNotReady) {
			p.printf("%s\n", formatter.StyleYellow.Render("Välj minst ett ord."))
			continue
		}
		if err != nil {
			return err
		}
		p.printf("%s\n%s", formatter.FormatTokens(l1.Tokens(), false), formatter.FormatLevel1Result(res))

		if res.Success {
			c, err := p.ex.AdvanceLevel1(ctx, l1)
			if err != nil {
				return err
			}
			p.printf("%s\n", formatter.StyleGreen.Render(c.Gate.Label()+" klar!"))
			continue
		}

		action, err := p.failureAction(l1.CanReveal(), "Visa rätt svar")
		if err != nil {
			return err
		}
		switch action {
		case actionReveal:
			tokens, err := l1.RevealAnswer()
			if err != nil {
				return err
			}
			p.printf("%s\n", formatter.FormatTokens(tokens, true))
			l1.Retry()
		case actionRetry:
			l1.Retry()
		default:
			return nil
		}
	}
	return nil
}

// failureAction asks what to do after a failed attempt.
func (p *player) failureAction(canReveal bool, revealLabel string) (string, error) {
	options := []huh.Option[string]{huh.NewOption("Försök igen", actionRetry)}
	if canReveal {
		options = append(options, huh.NewOption(revealLabel, actionReveal))
	}
	options = append(options, huh.NewOption("Tillbaka", actionBack))

	var action string
	err := runForm(p.cmd, huh.NewGroup(
		huh.NewSelect[string]().
			Title("Vad vill du göra?").
			Options(options...).
			Value(&action),
	))
	return action, err
}

func (p *player) playLevel2() error {
	ctx := p.cmd.Context()
	l2, err := p.ex.Level2()
	if err != nil {
		return err
	}
	src := p.ex.Source()
	if src.Level2.SourceText != "" {
		p.printf("\n%s\n", formatter.RenderBox(src.Level2.SourceTitle, src.Level2.SourceText))
	}

	for !l2.Done() {
		step, _ := l2.Current()
		p.printf("\n%s", formatter.FormatLevel2Step(step, l2.Position(), l2.StepCount(), l2.Bridge()))
		if l2.Position() > 0 {
			p.printf("%s\n", formatter.Dim(l2.Preview()))
		}

		switch step.Kind {
		case rubric.KindChoice:
			options := make([]huh.Option[string], 0, len(step.Options))
			for _, o := range step.Options {
				options = append(options, huh.NewOption(o.Text, o.Text))
			}
			choice := l2.Answer()
			if err := runForm(p.cmd, huh.NewGroup(
				huh.NewSelect[string]().
					Title(step.Question).
					Options(options...).
					Value(&choice),
			)); err != nil {
				return err
			}
			res, err := l2.Choose(choice)
			if err != nil {
				return err
			}
			p.printf("%s", formatter.FormatStepResult(res))
		case rubric.KindFreeText:
			text := l2.Answer()
			if err := runForm(p.cmd, huh.NewGroup(
				huh.NewText().
					Title(step.Question).
					Placeholder(step.Example).
					CharLimit(2000).
					Value(&text),
			)); err != nil {
				return err
			}
			if err := l2.SetText(text); err != nil {
				return err
			}
		}

		if !l2.CanAdvance() {
			p.printf("%s\n", formatter.StyleYellow.Render(fmt.Sprintf(engine.DefaultTooShort, step.MinLength)))
			continue
		}
		adv, err := p.ex.AdvanceLevel2(ctx, l2)
		if err != nil {
			return err
		}
		if step.Kind == rubric.KindFreeText {
			p.printf("%s", formatter.FormatStepResult(adv.Result))
		}
		if adv.Finished {
			p.printf("\n%s\n", formatter.FormatNarrative(adv.Narrative, adv.Evaluation))
			return nil
		}
		if !adv.Result.Status.Passed() {
			again, err := confirm(p.cmd, "Försöka igen?")
			if err != nil {
				return err
			}
			if !again {
				return nil
			}
		}
	}
	return nil
}

func (p *player) playLevel3() error {
	ctx := p.cmd.Context()
	l3, err := p.ex.Level3()
	if err != nil {
		return err
	}
	r := p.ex.Source().Level3
	p.printf("\n%s\n", formatter.FormatComparison(r))

	action := actionEdit
	for !l3.Done() {
		switch action {
		case actionEdit:
			text := l3.Text()
			if err := runForm(p.cmd, huh.NewGroup(
				huh.NewText().
					Title(r.Question).
					Description(r.HelperText).
					Placeholder(r.Placeholder).
					Value(&text),
			)); err != nil {
				return err
			}
			l3.Retry()
			l3.SetText(text)
			p.printf("%s\n", formatter.Dim(fmt.Sprintf("%d ord (minst %d)", l3.WordCount(), r.MinWords)))
		case actionEvaluate:
			res, err := p.ex.EvaluateLevel3(l3)
			if errors.Is(err, engine.ErrNotReady) {
				p.printf("%s\n", formatter.StyleYellow.Render(fmt.Sprintf("Skriv minst %d ord.", r.MinWords)))
				break
			}
			if err != nil {
				return err
			}
			p.printf("%s", formatter.FormatLevel3Result(res))
		case actionFinish:
			c, err := p.ex.ConfirmLevel3(ctx, l3)
			if err != nil {
				return err
			}
			p.printf("%s\n", formatter.StyleGreen.Render(c.Gate.Label()+" klar!"))
			return nil
		case actionHint:
			if hint, ok := l3.NextHint(); ok {
				pos, total := l3.HintPosition()
				p.printf("%s %s\n", formatter.StyleBlue.Render(fmt.Sprintf("Tips %d/%d:", pos, total)), hint)
			}
		case actionModel:
			visible, err := l3.ToggleModelAnswer()
			if err != nil {
				return err
			}
			if m, ok := l3.ModelAnswer(); visible && ok {
				p.printf("%s\n", formatter.FormatModelAnswer(m))
			}
		default:
			return nil
		}

		next, err := p.level3Action(l3, len(r.Hints) > 0)
		if err != nil {
			return err
		}
		action = next
	}
	return nil
}

func (p *player) level3Action(l3 *engine.Level3, hasHints bool) (string, error) {
	var action string
	err := runForm(p.cmd, huh.NewGroup(
		huh.NewSelect[string]().
			Title("Vad vill du göra?").
			Options(level3Options(l3, hasHints)...).
			Value(&action),
	))
	return action, err
}

// level3Options lists the essay actions available in the current attempt.
// Finishing is offered only once the last evaluation passed.
func level3Options(l3 *engine.Level3, hasHints bool) []huh.Option[string] {
	var options []huh.Option[string]
	if res, ok := l3.Result(); ok && res.Success {
		options = append(options, huh.NewOption("Slutför nivån", actionFinish))
	}
	if l3.CanEvaluate() {
		options = append(options, huh.NewOption("Rätta", actionEvaluate))
	}
	options = append(options, huh.NewOption("Redigera texten", actionEdit))
	if hasHints {
		options = append(options, huh.NewOption("Visa tips", actionHint))
	}
	if l3.CanShowModelAnswer() {
		label := "Visa modellsvar"
		if _, visible := l3.ModelAnswer(); visible {
			label = "Dölj modellsvar"
		}
		options = append(options, huh.NewOption(label, actionModel))
	}
	return append(options, huh.NewOption("Tillbaka", actionBack))
}

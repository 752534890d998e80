package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/kallan/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var errNotInteractive = errors.New("this command needs an interactive terminal")

// errQuit is returned by runForm when the learner aborts a form.
var errQuit = errors.New("aborted")

// kallanHuhTheme returns a huh theme matching the formatter palette.
func kallanHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.MultiSelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorYellow)
	t.Focused.SelectedPrefix = lipgloss.NewStyle().Foreground(formatter.ColorYellow).SetString("[x] ")
	t.Focused.UnselectedPrefix = lipgloss.NewStyle().Foreground(formatter.ColorDim).SetString("[ ] ")
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// kallanKeyMap lets esc abort a form as well as ctrl+c.
func kallanKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "avbryt"))
	return km
}

// runForm runs form on the command's streams. An abort is reported as errQuit.
func runForm(cmd *cobra.Command, groups ...*huh.Group) error {
	form := huh.NewForm(groups...).
		WithTheme(kallanHuhTheme()).
		WithKeyMap(kallanKeyMap()).
		WithShowHelp(true).
		WithProgramOptions(
			tea.WithInput(cmd.InOrStdin()),
			tea.WithOutput(cmd.OutOrStdout()),
		)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errQuit
		}
		return fmt.Errorf("running form: %w", err)
	}
	return nil
}

// confirm asks a yes/no question.
func confirm(cmd *cobra.Command, title string) (bool, error) {
	var ok bool
	err := runForm(cmd, huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Ja").
			Negative("Nej").
			Value(&ok),
	))
	return ok, err
}

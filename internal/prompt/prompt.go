// Package prompt asks the user for the details a roster cannot supply:
// times and names for unrecognised entries and which person to export.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rostercal/internal/roster"
)

// ErrAborted is returned when the user cancels a prompt with Esc or Ctrl+C.
var ErrAborted = errors.New("prompt aborted")

// Asker is the set of questions the converter needs answered.
type Asker interface {
	// AskText returns the typed answer, or def when the answer is empty.
	AskText(question, def string) (string, error)
	// AskClock reads a 24h time such as 0830.
	AskClock(question string) (roster.Clock, error)
	// Choose returns one of options.
	Choose(question string, options []string) (string, error)
}

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	optionStyle   = lipgloss.NewStyle().PaddingLeft(2)
)

// inputModel is a single-line question answered with Enter.
type inputModel struct {
	question string
	hint     string
	options  []string
	def      string

	input textinput.Model
	check func(string) (string, error)

	answer  string
	err     error
	done    bool
	aborted bool
}

func newInputModel(question, def string, check func(string) (string, error)) inputModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = def
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()

	if check == nil {
		check = func(s string) (string, error) { return s, nil }
	}
	return inputModel{question: question, def: def, input: ti, check: check}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			v := strings.TrimSpace(m.input.Value())
			if v == "" {
				v = m.def
			}
			answer, err := m.check(v)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.answer, m.err, m.done = answer, nil, true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	var b strings.Builder
	b.WriteString(questionStyle.Render(m.question))
	b.WriteString("\n")
	for i, o := range m.options {
		b.WriteString(optionStyle.Render(fmt.Sprintf("%d) %s", i+1, o)))
		b.WriteString("\n")
	}
	if m.hint != "" {
		b.WriteString(hintStyle.Render(m.hint))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func clockCheck(s string) (string, error) {
	c, err := roster.ParseClock(s)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// choiceCheck accepts an option by number or by name, ignoring case.
func choiceCheck(options []string) func(string) (string, error) {
	return func(s string) (string, error) {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		for _, o := range options {
			if strings.EqualFold(strings.TrimSpace(o), s) {
				return o, nil
			}
		}
		return "", fmt.Errorf("%q is not one of the listed options", s)
	}
}

func newClockModel(question string) inputModel {
	m := newInputModel(question, "", clockCheck)
	m.hint = "Enter the time as four digits in 24hr format, e.g. 0830"
	m.input.CharLimit = 5
	return m
}

func newChoiceModel(question string, options []string) inputModel {
	m := newInputModel(question, "", choiceCheck(options))
	m.options = options
	m.hint = "Type a number or a name; Tab completes"
	m.input.ShowSuggestions = true
	m.input.SetSuggestions(options)
	return m
}

// Terminal asks questions on a terminal using bubbletea.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

// NewTerminal returns a Terminal reading in and drawing to out. Nil values
// default to stdin and stderr, which leaves stdout for command output.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}
	return &Terminal{in: in, out: out}
}

func (t *Terminal) run(m inputModel) (string, error) {
	p := tea.NewProgram(m, tea.WithInput(t.in), tea.WithOutput(t.out))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	fm := final.(inputModel)
	if fm.aborted || !fm.done {
		return "", ErrAborted
	}
	return fm.answer, nil
}

func (t *Terminal) AskText(question, def string) (string, error) {
	return t.run(newInputModel(question, def, nil))
}

func (t *Terminal) AskClock(question string) (roster.Clock, error) {
	s, err := t.run(newClockModel(question))
	if err != nil {
		return roster.Clock{}, err
	}
	return roster.ParseClock(s)
}

func (t *Terminal) Choose(question string, options []string) (string, error) {
	if len(options) == 0 {
		return "", errors.New("prompt: nothing to choose from")
	}
	return t.run(newChoiceModel(question, options))
}

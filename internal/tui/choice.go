package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	choiceLabelStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	choiceHintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	choiceSelectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("212")).Foreground(lipgloss.Color("0")).Padding(0, 1)
	choiceOptionStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// ChoiceResult is the outcome of a RunChoice prompt.
type ChoiceResult struct {
	Index   int
	Aborted bool
}

type choiceModel struct {
	message  string
	options  []string
	cursor   int
	done     bool
	result   ChoiceResult
}

func newChoiceModel(message string, options []string) choiceModel {
	return choiceModel{message: message, options: options}
}

func (m choiceModel) Init() tea.Cmd {
	return nil
}

func (m choiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.result.Aborted = true
			m.done = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
			return m, nil

		case "enter":
			m.result.Index = m.cursor
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m choiceModel) View() string {
	var sb strings.Builder
	sb.WriteString(choiceLabelStyle.Render(m.message) + "\n\n")

	for i, opt := range m.options {
		style := choiceOptionStyle
		if i == m.cursor {
			style = choiceSelectedStyle
		}
		sb.WriteString(fmt.Sprintf("  %s\n", style.Render(opt)))
	}

	sb.WriteString("\n" + choiceHintStyle.Render("↑/↓: select • enter: confirm • esc: cancel"))
	return sb.String()
}

// RunChoice prompts the operator to pick one of options, returning the
// chosen index. Used for the dirty-policy {stash, force, skip, abort} menu
// and git branch-disambiguation prompts (spec §4.10).
func RunChoice(message string, options []string) (ChoiceResult, error) {
	m := newChoiceModel(message, options)
	p := tea.NewProgram(m)

	finalModel, err := p.Run()
	if err != nil {
		return ChoiceResult{Aborted: true}, err
	}

	result := finalModel.(choiceModel).result
	return result, nil
}

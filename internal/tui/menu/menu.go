// Package menu is the interactive mode picker shown when fitsim starts on a
// terminal without an explicit mode flag.
package menu

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fitsim/internal/prompt"
	"fitsim/internal/tui/styles"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Choose, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Choose: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "select"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type Model struct {
	Title string
	Items []string

	cursor int
	chosen int
	done   bool
	help   help.Model
}

func New(title string, items []string) Model {
	return Model{
		Title:  title,
		Items:  items,
		chosen: -1,
		help:   help.New(),
	}
}

// Chosen is the selected index, or -1 when the menu was dismissed.
func (m Model) Chosen() int { return m.chosen }

func (m Model) Cursor() int { return m.cursor }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.Items)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Choose):
			if len(m.Items) > 0 {
				m.chosen = m.cursor
				m.done = true
				return m, tea.Quit
			}
		default:
			// Digits jump straight to an entry
			if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(m.Items) {
				m.cursor = n - 1
				m.chosen = m.cursor
				m.done = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(styles.Title.Render(m.Title))
	b.WriteString("\n\n")
	for i, item := range m.Items {
		label := fmt.Sprintf("[%d] %s", i+1, item)
		if i == m.cursor {
			b.WriteString(styles.ItemSelected.Render("> " + label))
		} else {
			b.WriteString(styles.Item.Render(label))
		}
		b.WriteString("\n")
	}
	b.WriteString(styles.Footer.Render(m.help.View(keys)))
	return styles.Panel.Render(b.String()) + "\n"
}

// Selector runs the menu as a bubbletea program.
type Selector struct {
	In  io.Reader
	Out io.Writer
}

// Select shows options and returns the chosen index. Dismissing the menu
// yields prompt.ErrAborted.
func (s Selector) Select(ctx context.Context, title string, options []string) (int, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if s.In != nil {
		opts = append(opts, tea.WithInput(s.In))
	}
	if s.Out != nil {
		opts = append(opts, tea.WithOutput(s.Out))
	}

	p := tea.NewProgram(New(title, options), opts...)
	final, err := p.Run()
	if err != nil {
		return -1, fmt.Errorf("menu: %w", err)
	}
	m, ok := final.(Model)
	if !ok || m.Chosen() < 0 {
		return -1, prompt.ErrAborted
	}
	return m.Chosen(), nil
}

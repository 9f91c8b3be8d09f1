package menu

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

var items = []string{"Full simulation", "Step by step", "Authentication only", "Exit"}

func send(t *testing.T, m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMenuNavigation(t *testing.T) {
	tests := []struct {
		name   string
		msgs   []tea.KeyMsg
		cursor int
		chosen int
		quit   bool
	}{
		{"initial enter", []tea.KeyMsg{{Type: tea.KeyEnter}}, 0, 0, true},
		{"down twice", []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyDown}}, 2, -1, false},
		{"vim keys", []tea.KeyMsg{runes("j"), runes("j"), runes("k")}, 1, -1, false},
		{"clamped top", []tea.KeyMsg{{Type: tea.KeyUp}}, 0, -1, false},
		{"clamped bottom", []tea.KeyMsg{
			{Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyDown},
		}, 3, -1, false},
		{"down then enter", []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyEnter}}, 1, 1, true},
		{"digit", []tea.KeyMsg{runes("3")}, 2, 2, true},
		{"digit out of range", []tea.KeyMsg{runes("9")}, 0, -1, false},
		{"quit", []tea.KeyMsg{runes("q")}, 0, -1, true},
		{"ctrl+c", []tea.KeyMsg{{Type: tea.KeyCtrlC}}, 0, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmd := send(t, New("Mode", items), tt.msgs...)
			if m.Cursor() != tt.cursor {
				t.Errorf("cursor = %d, want %d", m.Cursor(), tt.cursor)
			}
			if m.Chosen() != tt.chosen {
				t.Errorf("chosen = %d, want %d", m.Chosen(), tt.chosen)
			}
			if (cmd != nil) != tt.quit {
				t.Errorf("quit cmd = %v, want %v", cmd != nil, tt.quit)
			}
		})
	}
}

func TestMenuView(t *testing.T) {
	m := New("Choose a mode", items)
	view := m.View()
	for _, want := range []string{"Choose a mode", "[1] Full simulation", "[4] Exit", "quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.View() != "" {
		t.Errorf("view after choice = %q, want empty", m.View())
	}
}

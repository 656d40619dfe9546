package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestMultiChoice_SubmitFeedback(t *testing.T) {
	m := NewMultiChoice("2 + 2?", []string{"3", "4", "5"}, 1)
	m.Selected = 2
	m.Submitted = true
	m.ChosenIndex = 2

	view := m.View()
	if !strings.Contains(view, "✓") {
		t.Error("expected check mark on the correct option")
	}
	if !strings.Contains(view, "← your answer") {
		t.Error("expected the chosen wrong option to be marked")
	}
	if m.IsCorrect() {
		t.Error("wrong choice reported as correct")
	}
}

func TestMultiChoice_LabelsBeyondD(t *testing.T) {
	opts := []string{"a", "b", "c", "d", "e", "f"}
	m := NewMultiChoice("pick one", opts, 0)

	view := m.View()
	for _, label := range []string{"E)", "F)"} {
		if !strings.Contains(view, label) {
			t.Errorf("expected option label %s in view", label)
		}
	}
}

func TestMultiChoice_NavigationClampsAndSubmits(t *testing.T) {
	m := NewMultiChoice("q", []string{"x", "y"}, 0)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 0 {
		t.Errorf("Selected = %d, want clamped at 0", m.Selected)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 1 {
		t.Errorf("Selected = %d, want clamped at 1", m.Selected)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !m.Submitted || m.ChosenIndex != 1 {
		t.Errorf("after enter: Submitted=%v ChosenIndex=%d, want true/1", m.Submitted, m.ChosenIndex)
	}

	// Input is frozen once submitted.
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 1 {
		t.Error("selection moved after submission")
	}
}

package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func TestDefaultKeyMap_AllBindingsDefined(t *testing.T) {
	km := DefaultKeyMap()

	bindings := []struct {
		name    string
		binding key.Binding
	}{
		{"Quit", km.Quit},
		{"Enter", km.Enter},
		{"Cancel", km.Cancel},
		{"Back", km.Back},
		{"Reset", km.Reset},
		{"Search", km.Search},
		{"Up", km.Up},
		{"Down", km.Down},
		{"Edit", km.Edit},
		{"Remove", km.Remove},
		{"Compare", km.Compare},
		{"Save", km.Save},
		{"Health", km.Health},
	}

	for _, b := range bindings {
		t.Run(b.name, func(t *testing.T) {
			if !b.binding.Enabled() {
				t.Errorf("expected %s binding to be enabled", b.name)
			}
			if len(b.binding.Keys()) == 0 {
				t.Errorf("expected %s binding to have at least one key", b.name)
			}
			if b.binding.Help().Desc == "" {
				t.Errorf("expected %s binding to have help text", b.name)
			}
		})
	}
}

func TestDefaultKeyMap_QuitKeys(t *testing.T) {
	km := DefaultKeyMap()

	hasQ, hasCtrlC := false, false
	for _, k := range km.Quit.Keys() {
		switch k {
		case "q":
			hasQ = true
		case "ctrl+c":
			hasCtrlC = true
		}
	}
	if !hasQ {
		t.Error("expected Quit binding to include 'q'")
	}
	if !hasCtrlC {
		t.Error("expected Quit binding to include 'ctrl+c'")
	}
}

func TestDefaultKeyMap_NoOverlap(t *testing.T) {
	km := DefaultKeyMap()
	all := []key.Binding{km.Quit, km.Enter, km.Cancel, km.Back, km.Reset, km.Search,
		km.Up, km.Down, km.Edit, km.Remove, km.Compare, km.Save, km.Health}

	seen := map[string]int{}
	for _, b := range all {
		for _, k := range b.Keys() {
			seen[k]++
		}
	}
	for k, n := range seen {
		if n > 1 {
			t.Errorf("key %q bound %d times", k, n)
		}
	}
}

func TestKeyMatchesRunes(t *testing.T) {
	km := DefaultKeyMap()
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")}
	if !key.Matches(msg, km.Compare) {
		t.Error("'c' should match Compare")
	}
	if key.Matches(msg, km.Save) {
		t.Error("'c' should not match Save")
	}
}

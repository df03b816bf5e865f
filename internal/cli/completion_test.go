package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/agbru/billcheck/internal/config"
)

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		shell    string
		contains []string
	}{
		{"bash", []string{"_billcheck_completions", "--mode)", `modes="tui repl check sweep search health"`, "--file|-f|--output|-o", "complete -o filenames"}},
		{"zsh", []string{"#compdef billcheck", "'--mode[Run mode]:mode:($modes)'", "{-f,--file}", "Hospital ids for sweep mode (comma-separated)"}},
		{"fish", []string{"complete -c billcheck -l mode -d 'Run mode' -xa 'tui repl check sweep search health'", "complete -c billcheck -s o -l output", "-rF"}},
		{"powershell", []string{"$billcheckModes = @('tui', 'repl'", "'--log-level'", "Register-ArgumentCompleter -CommandName 'billcheck'"}},
		{"ps", []string{"Register-ArgumentCompleter"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.shell, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			if err := GenerateCompletion(&out, tt.shell, config.Modes); err != nil {
				t.Fatalf("GenerateCompletion: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out.String(), want) {
					t.Errorf("%s script missing %q", tt.shell, want)
				}
			}
		})
	}
}

func TestGenerateCompletionUnsupported(t *testing.T) {
	t.Parallel()
	err := GenerateCompletion(&bytes.Buffer{}, "tcsh", config.Modes)
	if err == nil || !strings.Contains(err.Error(), "unsupported shell: tcsh") {
		t.Errorf("err = %v", err)
	}
}

// Every flag the parser accepts must be offered by the completion scripts.
func TestFlagRegistryMatchesParser(t *testing.T) {
	t.Parallel()
	registered := map[string]bool{}
	for _, f := range flagRegistry {
		registered[flagKey(f)] = true
		if f.Short != "" {
			registered[f.Short] = true
		}
	}
	for _, name := range config.FlagNames() {
		if !registered[name] {
			t.Errorf("flag %q missing from the completion registry", name)
		}
	}
}

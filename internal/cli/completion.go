package cli

import (
	"fmt"
	"io"
	"strings"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// All shell completion functions generate from this registry, so adding
// a new flag only requires appending to flagRegistry.
type FlagCompletion struct {
	Long      string   // long flag name without "--" (e.g., "help")
	Short     string   // short flag without "-" (e.g., "h")
	Help      string   // description text
	Values    []string // suggested completion values (nil = boolean/no suggestions)
	ValueName string   // label for the value in zsh (e.g., "url", "duration")
	IsFile    bool     // true if the flag takes a file path
	IsMode    bool     // true if values come from the mode list (dynamic)
	BashGroup string   // flags with same non-empty BashGroup share a bash case entry
}

// flagRegistry is the central list of all CLI flags for completion generation.
var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message"},
	{Long: "version", Short: "V", Help: "Show version information"},
	{Long: "mode", Help: "Run mode", IsMode: true, ValueName: "mode"},
	{Long: "base-url", Help: "Backend base URL", Values: []string{"http://localhost:8000"}, ValueName: "url"},
	{Long: "timeout", Help: "Overall timeout for batch modes", Values: []string{"30s", "1m", "2m", "5m"}, ValueName: "duration"},
	{Long: "file", Short: "f", Help: "Bill PDF to check", IsFile: true, ValueName: "file"},
	{Long: "hospital", Help: "Hospital id to compare against", ValueName: "id"},
	{Long: "hospitals", Help: "Comma-separated hospital ids for sweep mode", ValueName: "ids"},
	{Long: "query", Help: "Hospital search query", ValueName: "query"},
	{Long: "radius", Help: "Regional comparison radius in miles", Values: []string{"10", "25", "50", "100"}, ValueName: "miles", BashGroup: "numeric"},
	{Long: "concurrency", Help: "Parallel comparisons in sweep mode", Values: []string{"1", "2", "4", "8"}, ValueName: "n", BashGroup: "numeric"},
	{Long: "rate-limit", Help: "Maximum backend requests per second", Values: []string{"0", "5", "10", "20"}, ValueName: "rps", BashGroup: "numeric"},
	{Long: "rate-burst", Help: "Burst size for the request limiter", Values: []string{"1", "5", "10"}, ValueName: "n", BashGroup: "numeric"},
	{Long: "no-cms", Help: "Compare without Medicare reference data"},
	{Long: "details", Short: "d", Help: "Show reference pricing per line item"},
	{Long: "output", Short: "o", Help: "Report file (.xlsx or text)", IsFile: true, ValueName: "file"},
	{Long: "quiet", Short: "q", Help: "Print only the verdict"},
	{Long: "theme", Help: "Color scheme", Values: []string{"dark", "light", "none"}, ValueName: "theme"},
	{Long: "no-color", Help: "Disable colored output"},
	{Long: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error", "disabled"}, ValueName: "level"},
	{Long: "log-file", Help: "Write logs to this file", IsFile: true, ValueName: "file"},
	{Long: "env-file", Help: "Dotenv file with BILLCHECK_* settings", IsFile: true, ValueName: "file"},
	{Long: "metrics-addr", Help: "Serve Prometheus metrics on this address", Values: []string{":9090"}, ValueName: "addr"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish", "powershell"}, ValueName: "shell"},
}

// bashGroupValues defines the completion values used in bash for grouped flags.
var bashGroupValues = map[string][]string{
	"numeric": {"1", "2", "4", "5", "8", "10", "25", "50", "100"},
}

// zshHelpOverrides provides shell-specific help text overrides for zsh.
var zshHelpOverrides = map[string]string{
	"hospitals": "Hospital ids for sweep mode (comma-separated)",
}

// GenerateCompletion generates a shell completion script for the specified
// shell ("bash", "zsh", "fish" or "powershell"). modes is the list offered
// for --mode.
func GenerateCompletion(out io.Writer, shell string, modes []string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out, modes)
	case "zsh":
		return generateZshCompletion(out, modes)
	case "fish":
		return generateFishCompletion(out, modes)
	case "powershell", "ps":
		return generatePowerShellCompletion(out, modes)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
}

// flagKey returns the identifier used for lookups: Long name if present, else Short.
func flagKey(f FlagCompletion) string {
	if f.Long != "" {
		return f.Long
	}
	return f.Short
}

// generateBashCompletion generates a Bash completion script.
func generateBashCompletion(out io.Writer, modes []string) error {
	var opts []string
	for _, f := range flagRegistry {
		if f.Long != "" {
			opts = append(opts, "--"+f.Long)
		}
		if f.Short != "" {
			opts = append(opts, "-"+f.Short)
		}
	}

	type caseEntry struct {
		patterns []string
		body     string
	}
	bashCaseEntry := func(f FlagCompletion) caseEntry {
		return caseEntry{
			patterns: []string{"--" + f.Long},
			body:     fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.Values, " ")),
		}
	}
	var orderedCases []caseEntry

	// 1. Mode flag
	for _, f := range flagRegistry {
		if f.IsMode {
			orderedCases = append(orderedCases, caseEntry{
				patterns: []string{"--" + f.Long},
				body:     `COMPREPLY=( $(compgen -W "${modes}" -- "${cur}") )`,
			})
		}
	}

	// 2. File completion flags
	var filePatterns []string
	for _, f := range flagRegistry {
		if f.IsFile {
			if f.Long != "" {
				filePatterns = append(filePatterns, "--"+f.Long)
			}
			if f.Short != "" {
				filePatterns = append(filePatterns, "-"+f.Short)
			}
		}
	}
	if len(filePatterns) > 0 {
		orderedCases = append(orderedCases, caseEntry{
			patterns: filePatterns,
			body: `# File/directory completion
            COMPREPLY=( $(compgen -f -- "${cur}") )`,
		})
	}

	// 3. Flags with static values
	for _, f := range flagRegistry {
		if !f.IsMode && !f.IsFile && f.BashGroup == "" && len(f.Values) > 0 {
			orderedCases = append(orderedCases, bashCaseEntry(f))
		}
	}

	// 4. Grouped flags
	seenGroups := map[string]bool{}
	for _, f := range flagRegistry {
		if f.BashGroup != "" && !seenGroups[f.BashGroup] {
			seenGroups[f.BashGroup] = true
			var patterns []string
			for _, gf := range flagRegistry {
				if gf.BashGroup == f.BashGroup {
					patterns = append(patterns, "--"+gf.Long)
				}
			}
			orderedCases = append(orderedCases, caseEntry{
				patterns: patterns,
				body:     fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(bashGroupValues[f.BashGroup], " ")),
			})
		}
	}

	var caseBody strings.Builder
	for _, c := range orderedCases {
		caseBody.WriteString("        ")
		caseBody.WriteString(strings.Join(c.patterns, "|"))
		caseBody.WriteString(")\n")
		caseBody.WriteString("            ")
		caseBody.WriteString(c.body)
		caseBody.WriteString("\n            return 0\n            ;;\n")
	}

	script := fmt.Sprintf(`# Bash completion script for billcheck
# Add this to your ~/.bashrc or ~/.bash_completion

_billcheck_completions() {
    local cur prev opts modes
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Main options
    opts="%s"

    # Run modes
    modes="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi

    COMPREPLY=( $(compgen -f -X '!*.pdf' -- "${cur}") )
}

complete -o filenames -F _billcheck_completions billcheck
`, strings.Join(opts, " "), strings.Join(modes, " "), caseBody.String())

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

// generateZshCompletion generates a Zsh completion script.
func generateZshCompletion(out io.Writer, modes []string) error {
	var args []string
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}
	args = append(args, "        '*:bill:_files -g \"*.pdf\"'")

	script := fmt.Sprintf(`#compdef billcheck

# Zsh completion script for billcheck
# Add this to your ~/.zshrc or place in $fpath

_billcheck() {
    local -a modes
    modes=(%s)

    _arguments -s \
%s
}

_billcheck "$@"
`, strings.Join(modes, " "), strings.Join(args, " \\\n"))

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

// zshHelp returns the help text for a flag in zsh, using an override if available.
func zshHelp(f FlagCompletion) string {
	if override, ok := zshHelpOverrides[flagKey(f)]; ok {
		return override
	}
	return f.Help
}

// zshArgEntry formats a single FlagCompletion as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	help := zshHelp(f)

	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case f.IsMode:
		valueSuffix = fmt.Sprintf(":%s:($modes)", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Long != "" && f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, help, valueSuffix)
	}
	if f.Long != "" {
		return fmt.Sprintf("        '--%s[%s]%s'", f.Long, help, valueSuffix)
	}
	return fmt.Sprintf("        '-%s[%s]%s'", f.Short, help, valueSuffix)
}

// generateFishCompletion generates a Fish completion script.
func generateFishCompletion(out io.Writer, modes []string) error {
	lines := []string{
		"# Fish completion script for billcheck",
		"# Add this to ~/.config/fish/completions/billcheck.fish",
		"",
	}

	type section struct {
		comment string
		flags   []FlagCompletion
	}
	sections := []section{
		{comment: "# Help and version", flags: filterFlags("help", "version")},
		{comment: "# Workflow", flags: filterFlags("mode", "file", "hospital", "hospitals", "query", "radius", "no-cms", "concurrency")},
		{comment: "# Backend", flags: filterFlags("base-url", "timeout", "rate-limit", "rate-burst")},
		{comment: "# Output", flags: filterFlags("details", "output", "quiet", "no-color")},
		{comment: "# Diagnostics", flags: filterFlags("log-level", "log-file", "env-file", "metrics-addr")},
		{comment: "# Completion", flags: filterFlags("completion")},
	}

	modeList := strings.Join(modes, " ")
	for _, sec := range sections {
		lines = append(lines, sec.comment)
		for _, f := range sec.flags {
			lines = append(lines, fishCompleteLine(f, modeList))
		}
		lines = append(lines, "")
	}

	if _, err := fmt.Fprint(out, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}

// filterFlags returns flags from the registry matching the given long names.
func filterFlags(ids ...string) []FlagCompletion {
	var result []FlagCompletion
	for _, id := range ids {
		for _, f := range flagRegistry {
			if f.Long == id {
				result = append(result, f)
				break
			}
		}
	}
	return result
}

// fishCompleteLine formats a single FlagCompletion as a fish complete command.
func fishCompleteLine(f FlagCompletion, modeList string) string {
	parts := []string{"complete -c billcheck"}
	if f.Short != "" {
		parts = append(parts, fmt.Sprintf("-s %s", f.Short))
	}
	if f.Long != "" {
		parts = append(parts, fmt.Sprintf("-l %s", f.Long))
	}
	parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))

	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case f.IsMode:
		parts = append(parts, fmt.Sprintf("-xa '%s'", modeList))
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}

// generatePowerShellCompletion generates a PowerShell completion script.
func generatePowerShellCompletion(out io.Writer, modes []string) error {
	var optionEntries []string
	for _, f := range flagRegistry {
		if f.Short != "" {
			optionEntries = append(optionEntries, fmt.Sprintf(
				"        @{Name = '-%s'; Description = '%s' }", f.Short, f.Help))
		}
		if f.Long != "" {
			optionEntries = append(optionEntries, fmt.Sprintf(
				"        @{Name = '--%s'; Description = '%s' }", f.Long, f.Help))
		}
	}

	quote := func(vals []string) string {
		q := make([]string, len(vals))
		for i, v := range vals {
			q[i] = fmt.Sprintf("'%s'", v)
		}
		return strings.Join(q, ", ")
	}
	psSwitchEntry := func(long, values string) string {
		return fmt.Sprintf(`        '--%s' {
            @(%s) | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }`, long, values)
	}

	var switchEntries []string
	for _, f := range flagRegistry {
		switch {
		case f.IsMode:
			switchEntries = append(switchEntries, psSwitchEntry(f.Long, "$billcheckModes"))
		case !f.IsFile && f.BashGroup == "" && len(f.Values) > 0:
			switchEntries = append(switchEntries, psSwitchEntry(f.Long, quote(f.Values)))
		}
	}

	script := fmt.Sprintf(`# PowerShell completion script for billcheck
# Add this to your $PROFILE

$billcheckModes = @(%s)

Register-ArgumentCompleter -CommandName 'billcheck' -Native -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $options = @(
%s
    )

    $elements = $commandAst.CommandElements
    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }

    # Context-aware completions
    switch ($prevElement) {
%s
    }

    # Default: show options
    $options | Where-Object { $_.Name -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)
    }
}
`, quote(modes), strings.Join(optionEntries, "\n"), strings.Join(switchEntries, "\n"))

	_, err := fmt.Fprint(out, script)
	return err
}

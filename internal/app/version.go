package app

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Build metadata, set with -ldflags "-X github.com/agbru/billcheck/internal/app.Version=...".
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

func init() {
	if Version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
}

// HasVersionFlag reports whether args ask for the version. It is checked
// before flag parsing so that --version works even with otherwise invalid
// arguments.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--version", "-version", "-V":
			return true
		case "--":
			return false
		}
	}
	return false
}

// PrintVersion writes the program name, version and build details.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "billcheck %s\n", Version)
	if Commit != "" {
		fmt.Fprintf(out, "  commit:  %s\n", Commit)
	}
	if BuildDate != "" {
		fmt.Fprintf(out, "  built:   %s\n", BuildDate)
	}
	fmt.Fprintf(out, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

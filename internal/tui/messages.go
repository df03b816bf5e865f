package tui

import (
	"time"

	"github.com/agbru/billcheck/internal/workflow"
)

// eventMsg carries a remote response back into Update.
type eventMsg struct {
	Event workflow.Event
}

// fileReadMsg is the result of reading the bill chosen on the upload step.
type fileReadMsg struct {
	Name string
	Data []byte
	Err  error
}

// searchDebounceMsg fires after typing pauses in the search box. Only the
// message whose Tag matches the latest keystroke issues a search.
type searchDebounceMsg struct {
	Tag int
}

// reportSavedMsg is the result of writing the report to disk.
type reportSavedMsg struct {
	Path string
	Err  error
}

// TickMsg refreshes the header clock.
type TickMsg time.Time

// ContextCancelledMsg is sent when the parent context is done.
type ContextCancelledMsg struct {
	Err error
}

package epic

import (
	"fmt"
	"strings"
)

// RunError is a fatal failure raised after the epic branch exists. The
// branch and completed commits are deliberately left intact; the guidance
// tells the user how to resume or discard them.
type RunError struct {
	Err         error
	Branch      string
	Base        string
	ContextPath string
}

// Error returns the underlying error message.
func (e *RunError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *RunError) Unwrap() error {
	return e.Err
}

// CleanupGuidance describes how to recover after the aborted run.
func (e *RunError) CleanupGuidance() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Branch %q and completed commits were left intact.\n", e.Branch)
	b.WriteString("To resume where the run stopped:\n")
	b.WriteString("  stride run\n")
	b.WriteString("To discard the epic instead:\n")
	if e.Base != "" {
		fmt.Fprintf(&b, "  git checkout %s\n", e.Base)
	}
	fmt.Fprintf(&b, "  git branch -D %s\n", e.Branch)
	if e.ContextPath != "" {
		fmt.Fprintf(&b, "  rm %s\n", e.ContextPath)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

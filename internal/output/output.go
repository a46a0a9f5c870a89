// Package output formats run progress for stdout.
//
// Two modes: human-readable with styled [TAG] prefixes (default), and JSON
// Lines for machine consumption.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	tagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	planStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	branchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// Printer formats run progress.
type Printer struct {
	jsonl  bool
	writer io.Writer
}

// NewPrinter creates a printer. If jsonl is true, events are emitted as
// JSON Lines instead of human-readable text.
func NewPrinter(jsonl bool) *Printer {
	return &Printer{jsonl: jsonl, writer: os.Stdout}
}

// SetWriter sets a custom writer (mainly for testing).
func (p *Printer) SetWriter(w io.Writer) {
	p.writer = w
}

// Start announces the beginning of a run.
func (p *Printer) Start(task string, resumed bool) {
	if p.jsonl {
		p.writeJSON(map[string]any{"type": "start", "task": task, "resumed": resumed})
		return
	}
	if resumed {
		fmt.Fprintf(p.writer, "%s Resuming epic: %s\n", tagStyle.Render("[START]"), task)
	} else {
		fmt.Fprintf(p.writer, "%s Epic: %s\n", tagStyle.Render("[START]"), task)
	}
}

// Plan displays an approved or proposed plan with its branch name.
func (p *Printer) Plan(plan, branch string) {
	if p.jsonl {
		p.writeJSON(map[string]any{"type": "plan", "plan": plan, "branch": branch})
		return
	}
	fmt.Fprintf(p.writer, "%s Proposed plan (branch %s):\n\n%s\n\n",
		tagStyle.Render("[PLAN]"), branchStyle.Render(branch), planStyle.Render(strings.TrimSpace(plan)))
}

// NoOp reports that the planner concluded there is nothing to implement.
func (p *Printer) NoOp(reason string) {
	if p.jsonl {
		p.writeJSON(map[string]any{"type": "noop", "reason": reason})
		return
	}
	fmt.Fprintf(p.writer, "%s Nothing to implement: %s\n", okStyle.Render("[DONE]"), reason)
}

// Branch reports the branch the run is executing on.
func (p *Printer) Branch(name string) {
	if p.jsonl {
		p.writeJSON(map[string]any{"type": "branch", "branch": name})
		return
	}
	fmt.Fprintf(p.writer, "%s Working on branch %s\n", tagStyle.Render("[BRANCH]"), branchStyle.Render(name))
}

// Task announces the start of one task.
func (p *Printer) Task(n, total int, title string) {
	if p.jsonl {
		p.writeJSON(map[string]any{"type": "task", "n": n, "total": total, "title": title})
		return
	}
	fmt.Fprintf(p.writer, "%s (%d/%d) %s\n", tagStyle.Render("[TASK]"), n, total, title)
}

// Commit reports a recorded commit.
func (p *Printer) Commit(message string) {
	if p.jsonl {
		p.writeJSON(map[string]any{"type": "commit", "message": message})
		return
	}
	fmt.Fprintf(p.writer, "%s %s\n", tagStyle.Render("[COMMIT]"), message)
}

// ReviewSkipped reports that review was skipped for an empty or
// non-reviewable diff.
func (p *Printer) ReviewSkipped() {
	if p.jsonl {
		p.writeJSON(map[string]any{"type": "review_skipped"})
		return
	}
	fmt.Fprintf(p.writer, "%s No reviewable changes, skipping review\n", tagStyle.Render("[REVIEW]"))
}

// ReviewClean reports a review pass with zero findings.
func (p *Printer) ReviewClean(attempt int) {
	if p.jsonl {
		p.writeJSON(map[string]any{"type": "review_clean", "attempt": attempt})
		return
	}
	fmt.Fprintf(p.writer, "%s Clean after %d pass(es)\n", okStyle.Render("[REVIEW]"), attempt)
}

// ReviewFindings reports the number of findings in one review pass.
func (p *Printer) ReviewFindings(attempt, count int) {
	if p.jsonl {
		p.writeJSON(map[string]any{"type": "review_findings", "attempt": attempt, "count": count})
		return
	}
	fmt.Fprintf(p.writer, "%s Pass %d found %d issue(s), fixing\n", tagStyle.Render("[REVIEW]"), attempt, count)
}

// Warning reports a non-fatal problem.
func (p *Printer) Warning(msg string) {
	if p.jsonl {
		p.writeJSON(map[string]any{"type": "warning", "message": msg})
		return
	}
	fmt.Fprintf(p.writer, "%s %s\n", warnStyle.Render("[WARN]"), msg)
}

// Error reports a failure.
func (p *Printer) Error(err error) {
	if p.jsonl {
		p.writeJSON(map[string]any{"type": "error", "error": err.Error()})
		return
	}
	fmt.Fprintf(p.writer, "%s %s\n", errStyle.Render("[ERROR]"), err.Error())
}

// Cancelled reports a user-directed graceful termination.
func (p *Printer) Cancelled() {
	if p.jsonl {
		p.writeJSON(map[string]any{"type": "cancelled"})
		return
	}
	fmt.Fprintf(p.writer, "%s Cancelled by user\n", tagStyle.Render("[CANCELLED]"))
}

// Summary is the final run report.
type Summary struct {
	Task     string
	Branch   string
	Base     string
	Tasks    int
	Commits  []string
	Flagged  []string
	Duration time.Duration
}

// Complete prints the final summary with suggested next steps.
func (p *Printer) Complete(s Summary) {
	if p.jsonl {
		p.writeJSON(map[string]any{
			"type":        "complete",
			"task":        s.Task,
			"branch":      s.Branch,
			"base":        s.Base,
			"tasks":       s.Tasks,
			"commits":     s.Commits,
			"flagged":     s.Flagged,
			"duration_ms": s.Duration.Milliseconds(),
		})
		return
	}

	fmt.Fprintf(p.writer, "%s Epic finished in %v\n", okStyle.Render("[COMPLETE]"), s.Duration.Round(time.Second))
	fmt.Fprintf(p.writer, "%s %d task(s), %d commit(s) on %s\n",
		okStyle.Render("[COMPLETE]"), s.Tasks, len(s.Commits), branchStyle.Render(s.Branch))
	for _, msg := range s.Commits {
		fmt.Fprintf(p.writer, "  - %s\n", msg)
	}
	for _, title := range s.Flagged {
		fmt.Fprintf(p.writer, "%s Task %q finished with unresolved review findings\n", warnStyle.Render("[WARN]"), title)
	}
	fmt.Fprintf(p.writer, "\nNext steps:\n")
	fmt.Fprintf(p.writer, "  git push -u origin %s\n", s.Branch)
	base := s.Base
	if base == "" {
		base = "main"
	}
	fmt.Fprintf(p.writer, "  open a pull request against %s\n", base)
}

// writeJSON writes one event as a single JSON line.
func (p *Printer) writeJSON(data map[string]any) {
	b, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintln(p.writer, string(b))
}

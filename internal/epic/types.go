package epic

import (
	"time"

	"github.com/stride-sh/stride/internal/budget"
	"github.com/stride-sh/stride/internal/console"
	"github.com/stride-sh/stride/internal/git"
	"github.com/stride-sh/stride/internal/todo"
)

// DefaultMaxFixRetries bounds the review-fix cycle per task.
const DefaultMaxFixRetries = 5

// RunConfig configures an engine run.
type RunConfig struct {
	// Task is the free-text feature request. Ignored when a resumable
	// context is already persisted.
	Task string

	// MaxFixRetries bounds the review-fix cycle per task (0 = 5 default).
	MaxFixRetries int
}

// RunResult contains the outcome of an engine run.
type RunResult struct {
	// Task is the feature request that was worked on.
	Task string

	// Branch is the branch the work landed on.
	Branch string

	// Base is the branch the epic branch was created from.
	Base string

	// NoOp is true when the planner concluded there is nothing to implement.
	NoOp bool

	// NoOpReason explains a no-op outcome.
	NoOpReason string

	// Cancelled is true when the user cancelled during planning or feedback.
	Cancelled bool

	// Tasks is the number of tasks executed in this run.
	Tasks int

	// Commits lists the commit messages recorded in this run, in order.
	Commits []string

	// Flagged lists tasks that finished with unresolved review findings.
	Flagged []string

	// Duration is the total wall-clock time.
	Duration time.Duration

	// Usage is the cumulative agent usage for this run.
	Usage budget.Usage
}

// GitClient is the version-control surface the engine depends on.
// *git.Repo is the production implementation.
type GitClient interface {
	Preflight() error
	CurrentBranch() (string, error)
	EnsureBranch(name string, resume bool) error
	StageAll() error
	Commit(message string) error
	AmendCommit() error
	DiffNameStatus(from, to string) ([]git.ChangedFile, error)
}

// TodoStore is the task store the engine queries and updates.
// *todo.Store is the production implementation.
type TodoStore interface {
	Add(title string) (*todo.Item, error)
	ListByStatus(status todo.Status) ([]todo.Item, error)
	Complete(id string) error
}

// Console collects user input during plan negotiation.
// *console.Terminal is the production implementation.
type Console interface {
	Ask(title string) (console.Answer, error)
}

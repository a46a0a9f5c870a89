// Package epicctx persists the resumable state of an epic run.
package epicctx

import (
	"errors"
	"fmt"
	"time"
)

// ErrPartialContext is returned when a persisted context has an invalid
// combination of fields. A context in this state must never be silently
// re-planned over possibly-completed work.
var ErrPartialContext = errors.New("persisted epic context is incomplete")

// UsageSnapshot is a cost/time checkpoint recorded after each completed task.
type UsageSnapshot struct {
	Timestamp time.Time `json:"timestamp"`
	TokensIn  int       `json:"tokens_in"`
	TokensOut int       `json:"tokens_out"`
	Cost      float64   `json:"cost"`
}

// EpicContext is the persisted state of an epic run. It is created on the
// first run, rewritten wholesale at every phase transition, and removed only
// after a fully successful run.
type EpicContext struct {
	Task       string          `json:"task"`
	Plan       string          `json:"plan,omitempty"`
	BranchName string          `json:"branch_name,omitempty"`
	BaseBranch string          `json:"base_branch,omitempty"`
	Overview   string          `json:"overview,omitempty"`
	Usages     []UsageSnapshot `json:"usages,omitempty"`
}

// IsEmpty reports whether the context carries no prior run at all.
func (c *EpicContext) IsEmpty() bool {
	return c.Task == ""
}

// Resumable reports whether the context represents an approved plan with a
// resolved branch, meaning planning and breakdown must be skipped.
func (c *EpicContext) Resumable() bool {
	return c.Task != "" && c.Plan != "" && c.BranchName != ""
}

// Validate rejects partial field combinations. The valid states are: empty,
// task only (restart at planning), and task+plan+branch (resume execution).
// A plan without a branch, or a branch without a plan, means a prior run was
// cut off mid-transition and the file cannot be trusted.
func (c *EpicContext) Validate() error {
	if c.IsEmpty() {
		return nil
	}
	if c.Plan != "" && c.BranchName == "" {
		return fmt.Errorf("%w: plan is set but branch name is missing", ErrPartialContext)
	}
	if c.BranchName != "" && c.Plan == "" {
		return fmt.Errorf("%w: branch %q is set but plan is missing", ErrPartialContext, c.BranchName)
	}
	return nil
}

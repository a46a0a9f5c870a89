// Package epic drives a feature request from free text to a reviewed,
// committed sequence of changes on a dedicated branch.
//
// The engine is strictly sequential: one run, one branch, one task at a
// time. Every external call (agent, user prompt, git) is a suspension point,
// and the persisted context is rewritten wholesale after each phase
// transition so a crash loses at most one in-flight task.
package epic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stride-sh/stride/internal/agent"
	"github.com/stride-sh/stride/internal/budget"
	"github.com/stride-sh/stride/internal/epicctx"
	"github.com/stride-sh/stride/internal/output"
	"github.com/stride-sh/stride/internal/todo"
)

// Engine orchestrates one epic run.
type Engine struct {
	agent   agent.Agent
	git     GitClient
	store   *epicctx.Store
	todos   TodoStore
	console Console
	out     *output.Printer
	budget  *budget.Tracker
}

// NewEngine creates an engine with the given collaborators.
func NewEngine(a agent.Agent, g GitClient, store *epicctx.Store, todos TodoStore, c Console, out *output.Printer) *Engine {
	return &Engine{
		agent:   a,
		git:     g,
		store:   store,
		todos:   todos,
		console: c,
		out:     out,
		budget:  budget.NewTracker(),
	}
}

// Run executes the epic workflow: preflight, plan negotiation, task
// breakdown, branch creation, the per-task executor loop, and finalization.
// A resumable persisted context skips straight to the executor loop.
func (e *Engine) Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	if cfg.MaxFixRetries == 0 {
		cfg.MaxFixRetries = DefaultMaxFixRetries
	}
	start := time.Now()

	ec, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	if err := ec.Validate(); err != nil {
		return nil, err
	}

	resume := ec.Resumable()
	if !resume {
		if ec.IsEmpty() {
			task := strings.TrimSpace(cfg.Task)
			if task == "" {
				return nil, fmt.Errorf("no task given and no saved epic to resume")
			}
			ec.Task = task
		}
	}
	e.out.Start(ec.Task, resume)

	if resume {
		// Never duplicate a branch or re-run completed phases: the run
		// must already be sitting on the stored branch.
		if err := e.git.EnsureBranch(ec.BranchName, true); err != nil {
			return nil, err
		}
		e.out.Branch(ec.BranchName)
	} else {
		if err := e.git.Preflight(); err != nil {
			return nil, err
		}

		// Checkpoint the bare task before planning so a crash resumes
		// at the planning phase.
		if err := e.store.Save(ec); err != nil {
			return nil, err
		}

		decision, reason, err := e.negotiatePlan(ctx, ec)
		if err != nil {
			return nil, err
		}
		switch decision {
		case planCancelled:
			e.out.Cancelled()
			return &RunResult{Task: ec.Task, Cancelled: true, Duration: time.Since(start)}, nil
		case planNoOp:
			e.out.NoOp(reason)
			if err := e.store.Remove(); err != nil {
				return nil, err
			}
			return &RunResult{Task: ec.Task, NoOp: true, NoOpReason: reason, Duration: time.Since(start)}, nil
		case planApproved:
		}

		base, err := e.git.CurrentBranch()
		if err != nil {
			return nil, err
		}
		ec.BaseBranch = base
		if err := e.store.Save(ec); err != nil {
			return nil, err
		}

		overview, tasks, err := e.decompose(ctx, ec.Plan)
		if err != nil {
			return nil, err
		}
		ec.Overview = overview
		if err := e.store.Save(ec); err != nil {
			return nil, err
		}
		for _, title := range tasks {
			if _, err := e.todos.Add(title); err != nil {
				return nil, err
			}
		}

		if err := e.git.EnsureBranch(ec.BranchName, false); err != nil {
			return nil, err
		}
		e.out.Branch(ec.BranchName)
	}

	open, err := e.todos.ListByStatus(todo.StatusOpen)
	if err != nil {
		return nil, e.fatal(ec, err)
	}

	var commits []string
	var flagged []string
	for i, item := range open {
		e.out.Task(i+1, len(open), item.Title)

		// A failed implementation is not retried: the epic aborts and
		// the branch is left for manual recovery or resume.
		if _, err := e.invoke(ctx, "code", buildImplementPrompt(item.Title, ec.Overview)); err != nil {
			return nil, e.fatal(ec, err)
		}

		msg := "feat: " + item.Title
		if err := e.git.StageAll(); err != nil {
			return nil, e.fatal(ec, err)
		}
		if err := e.git.Commit(msg); err != nil {
			return nil, e.fatal(ec, err)
		}
		commits = append(commits, msg)
		e.out.Commit(msg)

		clean, err := e.reviewFix(ctx, item.Title, ec.Overview, cfg.MaxFixRetries)
		if err != nil {
			return nil, e.fatal(ec, err)
		}
		if !clean {
			flagged = append(flagged, item.Title)
		}

		// Completion tracks implement+commit, independent of the review
		// outcome.
		if err := e.todos.Complete(item.ID); err != nil {
			return nil, e.fatal(ec, err)
		}

		u := e.budget.Usage()
		ec.Usages = append(ec.Usages, epicctx.UsageSnapshot{
			Timestamp: time.Now().UTC(),
			TokensIn:  u.TokensIn,
			TokensOut: u.TokensOut,
			Cost:      u.Cost,
		})
		if err := e.store.Save(ec); err != nil {
			return nil, e.fatal(ec, err)
		}
	}

	result := &RunResult{
		Task:     ec.Task,
		Branch:   ec.BranchName,
		Base:     ec.BaseBranch,
		Tasks:    len(open),
		Commits:  commits,
		Flagged:  flagged,
		Duration: time.Since(start),
		Usage:    e.budget.Usage(),
	}

	e.out.Complete(output.Summary{
		Task:     result.Task,
		Branch:   result.Branch,
		Base:     result.Base,
		Tasks:    result.Tasks,
		Commits:  result.Commits,
		Flagged:  result.Flagged,
		Duration: result.Duration,
	})

	if err := e.store.Remove(); err != nil {
		return nil, err
	}
	return result, nil
}

// invoke runs the agent once and maps the tagged result onto an error for
// collaborators whose failure is fatal to the run.
func (e *Engine) invoke(ctx context.Context, name, prompt string) (string, error) {
	res := e.agent.Run(ctx, prompt, agent.RunOpts{})
	e.budget.Add(res.Usage.TokensIn, res.Usage.TokensOut, res.Usage.Cost)

	switch res.Kind {
	case agent.KindExit:
		return res.Output, nil
	case agent.KindUsageExceeded:
		return "", fmt.Errorf("%s agent: usage limit exceeded", name)
	case agent.KindInterrupted:
		return "", fmt.Errorf("%s agent: interrupted", name)
	case agent.KindError:
		return "", fmt.Errorf("%s agent: %w", name, res.Err)
	default:
		return "", fmt.Errorf("%s agent: unexpected result kind %q", name, res.Kind)
	}
}

// fatal wraps an error with manual-cleanup guidance once the epic branch
// exists. Persisted state stays on disk so a later run can resume.
func (e *Engine) fatal(ec *epicctx.EpicContext, err error) error {
	if ec.BranchName == "" {
		return err
	}
	return &RunError{
		Err:         err,
		Branch:      ec.BranchName,
		Base:        ec.BaseBranch,
		ContextPath: e.store.Path(),
	}
}

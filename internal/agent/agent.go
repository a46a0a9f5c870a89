// Package agent defines the boundary to external AI coding agents.
//
// Every agent invocation returns a Result tagged with a Kind. Callers are
// expected to switch over all four kinds; the zero Kind (KindExit) is only
// valid when the agent process finished normally.
package agent

import (
	"context"
	"time"
)

// Kind discriminates the outcome of an agent invocation.
type Kind int

const (
	// KindExit means the agent finished normally; Output holds its response.
	KindExit Kind = iota

	// KindUsageExceeded means the backend refused the request due to usage
	// or rate limits.
	KindUsageExceeded

	// KindError means the agent process failed; Err holds the cause.
	KindError

	// KindInterrupted means the invocation was cancelled before completion.
	KindInterrupted
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindExit:
		return "exit"
	case KindUsageExceeded:
		return "usage_exceeded"
	case KindError:
		return "error"
	case KindInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Usage holds token and cost figures reported by an agent run.
type Usage struct {
	TokensIn  int
	TokensOut int
	Cost      float64
}

// TotalTokens returns input plus output tokens.
func (u Usage) TotalTokens() int {
	return u.TokensIn + u.TokensOut
}

// RunOpts configures an agent run.
type RunOpts struct {
	// Stream receives chunks of output for real-time display.
	// If nil, output is buffered and returned in Result.Output.
	Stream chan<- string

	// Timeout for the entire run. If zero, no timeout is applied
	// beyond any context deadline.
	Timeout time.Duration
}

// Result is the outcome of an agent invocation.
type Result struct {
	// Kind tags the outcome. Output is only meaningful for KindExit;
	// Err is only meaningful for KindError.
	Kind Kind

	// Output is the full text output from the agent.
	Output string

	// Usage holds token and cost figures, when the agent reported them.
	Usage Usage

	// Err is the underlying failure for KindError.
	Err error

	// Duration is how long the run took.
	Duration time.Duration
}

// Agent defines the interface for AI coding agents.
type Agent interface {
	// Name returns the agent's display name.
	Name() string

	// Available checks if the agent's CLI is installed and accessible.
	Available() bool

	// Run executes the agent with the given prompt and options.
	// The returned Result is never nil; failures are tagged, not thrown.
	Run(ctx context.Context, prompt string, opts RunOpts) *Result
}

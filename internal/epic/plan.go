package epic

import (
	"context"
	"fmt"

	"github.com/stride-sh/stride/internal/epicctx"
)

// planDecision is the terminal state of the plan negotiation loop.
type planDecision int

const (
	planApproved planDecision = iota
	planNoOp
	planCancelled
)

// planResponse is the JSON shape the planning agent replies with. Exactly
// one of three shapes is expected: a clarifying question, a reason why
// nothing needs implementing, or a plan with its branch name.
type planResponse struct {
	Plan       string `json:"plan,omitempty"`
	BranchName string `json:"branchName,omitempty"`
	Question   string `json:"question,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// negotiatePlan drives the plan/feedback loop until the user approves a
// plan, the planner declares a no-op, or the user cancels. On approval the
// plan and branch name are written into ec. Clarifying questions loop
// unbounded; they are not counted against any retry budget.
func (e *Engine) negotiatePlan(ctx context.Context, ec *epicctx.EpicContext) (planDecision, string, error) {
	var priorPlan, feedback string

	for {
		raw, err := e.invoke(ctx, "plan", buildPlanPrompt(ec.Task, priorPlan, feedback))
		if err != nil {
			return 0, "", err
		}

		var pr planResponse
		if err := decodeJSONBlock(raw, &pr); err != nil {
			return 0, "", fmt.Errorf("unreadable plan response: %w", err)
		}

		switch {
		case pr.Question != "":
			ans, err := e.console.Ask(pr.Question)
			if err != nil {
				return 0, "", err
			}
			if ans.Cancelled {
				return planCancelled, "", nil
			}
			feedback = appendFeedback(feedback, fmt.Sprintf("Q: %s\nA: %s", pr.Question, ans.Text))
			continue

		case pr.Plan == "":
			if pr.Reason == "" {
				return 0, "", fmt.Errorf("planner returned neither a plan, a question, nor a reason")
			}
			return planNoOp, pr.Reason, nil

		case pr.BranchName == "":
			// Breakdown and branching cannot proceed without a branch.
			return 0, "", fmt.Errorf("planner returned a plan without a branch name")
		}

		e.out.Plan(pr.Plan, pr.BranchName)

		ans, err := e.console.Ask("Feedback on this plan (leave empty to approve)")
		if err != nil {
			return 0, "", err
		}
		if ans.Cancelled {
			return planCancelled, "", nil
		}
		if ans.Text == "" {
			ec.Plan = pr.Plan
			ec.BranchName = pr.BranchName
			return planApproved, "", nil
		}

		priorPlan = pr.Plan
		feedback = ans.Text
	}
}

// appendFeedback joins feedback fragments with a blank line.
func appendFeedback(existing, addition string) string {
	if existing == "" {
		return addition
	}
	return existing + "\n\n" + addition
}

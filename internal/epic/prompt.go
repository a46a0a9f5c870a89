package epic

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/stride-sh/stride/internal/git"
)

// Prompt builders for the four agent collaborators. Each template asks for
// a bare JSON reply where the engine needs to parse one.

var (
	planTmpl      = template.Must(template.New("plan").Parse(planTemplate))
	breakdownTmpl = template.Must(template.New("breakdown").Parse(breakdownTemplate))
	implementTmpl = template.Must(template.New("implement").Parse(implementTemplate))
	reviewTmpl    = template.Must(template.New("review").Parse(reviewTemplate))
	fixTmpl       = template.Must(template.New("fix").Parse(fixTemplate))
)

func render(tmpl *template.Template, data any) string {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		// Templates are static; execution only fails on a bad template.
		return fmt.Sprintf("Error generating prompt: %v", err)
	}
	return buf.String()
}

func buildPlanPrompt(task, priorPlan, feedback string) string {
	return render(planTmpl, struct {
		Task, PriorPlan, Feedback string
	}{task, priorPlan, feedback})
}

func buildBreakdownPrompt(plan string) string {
	return render(breakdownTmpl, struct{ Plan string }{plan})
}

func buildImplementPrompt(task, overview string) string {
	return render(implementTmpl, struct{ Task, Overview string }{task, overview})
}

func buildReviewPrompt(commitRange string, files []git.ChangedFile) string {
	var list strings.Builder
	for _, f := range files {
		fmt.Fprintf(&list, "%s\t%s\n", f.Status, f.Path)
	}
	return render(reviewTmpl, struct {
		CommitRange, Files string
	}{commitRange, strings.TrimSuffix(list.String(), "\n")})
}

func buildFixPrompt(task, overview string, findings []ReviewFinding) string {
	var list strings.Builder
	for _, f := range findings {
		fmt.Fprintf(&list, "- %s (%s): %s\n", f.File, f.Lines, f.Review)
	}
	return render(fixTmpl, struct {
		Task, Overview, Findings string
	}{task, overview, strings.TrimSuffix(list.String(), "\n")})
}

const planTemplate = `You are planning a feature for this repository.

## Feature request

{{.Task}}
{{if .PriorPlan}}
## Previous plan

{{.PriorPlan}}
{{end}}{{if .Feedback}}
## User feedback

{{.Feedback}}
{{end}}
## Instructions

Explore the repository and produce an implementation plan.

Respond with a single JSON object and nothing else. Use exactly one of
these shapes:

1. You need information only the user has:
   {"question": "<one specific question>"}
2. The request needs no changes (already implemented, out of scope, etc.):
   {"reason": "<why there is nothing to implement>"}
3. You have a plan:
   {"plan": "<numbered implementation plan>", "branchName": "<branch name, e.g. feat/dark-mode, using only letters, digits, /, _ and ->"}

Do not modify any files. Do not run git commands that change state.
`

const breakdownTemplate = `Break this implementation plan into an ordered list of atomic tasks.

## Plan

{{.Plan}}

## Instructions

Each task will be implemented by an agent that sees ONLY the task text and
the shared overview - no other task, no conversation history. Tasks must
therefore be fully self-contained: never reference another task by number
or say "as above". Order tasks so each builds on the repository state left
by the previous ones.

Respond with a single JSON object and nothing else:
{"overview": "<short shared context every task needs>", "tasks": ["<task 1>", "<task 2>", ...]}

Do not modify any files.
`

const implementTemplate = `Implement the following task in this repository.

## Overview

{{.Overview}}

## Task

{{.Task}}

## Instructions

1. Implement exactly this task. Do not work ahead.
2. Run the existing tests for the code you touch and fix what you break.
3. You are autonomous: make reasonable decisions, ask no questions.
4. Do NOT commit. Leave all changes in the working tree; committing is
   handled for you.
`

const reviewTemplate = `Review the changes in commit range {{.CommitRange}}.

## Changed files (status, path)

{{.Files}}

## Instructions

Inspect the diff for bugs, broken invariants, and deviations from the
surrounding code's conventions. Only report issues worth fixing; style nits
are not findings.

Respond with a single JSON object and nothing else:
{"overview": "<one-paragraph assessment>", "specificReviews": [{"file": "<path>", "lines": "<line range>", "review": "<the issue and how to fix it>"}]}

Use an empty "specificReviews" array when the changes are clean.
Do not modify any files.
`

const fixTemplate = `Fix the review findings below.

## Overview

{{.Overview}}

## Task being implemented

{{.Task}}

## Findings

{{.Findings}}

## Instructions

Address every finding. Do not expand scope beyond them.
Do NOT commit. Leave all changes in the working tree.
`

package epic

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/stride-sh/stride/internal/agent"
	"github.com/stride-sh/stride/internal/git"
)

// ReviewFinding is one issue reported by the review agent. Findings are
// ephemeral: they drive the fix cycle and are never persisted.
type ReviewFinding struct {
	File   string `json:"file"`
	Lines  string `json:"lines"`
	Review string `json:"review"`
}

// reviewResponse is the JSON shape the review agent replies with.
type reviewResponse struct {
	Overview        string          `json:"overview"`
	SpecificReviews []ReviewFinding `json:"specificReviews"`
}

// reviewableExtensions is the allowlist of source and config extensions the
// review agent is asked to look at.
var reviewableExtensions = map[string]bool{
	".go": true, ".ts": true, ".tsx": true, ".js": true, ".jsx": true,
	".py": true, ".rb": true, ".rs": true, ".java": true, ".kt": true,
	".c": true, ".h": true, ".cc": true, ".cpp": true, ".hpp": true,
	".cs": true, ".swift": true, ".sh": true, ".sql": true,
	".yaml": true, ".yml": true, ".toml": true, ".json": true,
	".css": true, ".scss": true, ".html": true, ".vue": true, ".svelte": true,
}

// excludedFiles are generated files that match a reviewable extension but
// never warrant review.
var excludedFiles = map[string]bool{
	"go.sum":            true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"Cargo.lock":        true,
	"Gemfile.lock":      true,
	"composer.lock":     true,
	"poetry.lock":       true,
}

// reviewableFiles filters a diff down to the files worth reviewing.
// Deletions carry no content to review and are dropped.
func reviewableFiles(files []git.ChangedFile) []git.ChangedFile {
	var out []git.ChangedFile
	for _, f := range files {
		if f.Status == "D" {
			continue
		}
		if excludedFiles[filepath.Base(f.Path)] {
			continue
		}
		if !reviewableExtensions[strings.ToLower(filepath.Ext(f.Path))] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// reviewFix runs the bounded review-fix cycle for the task's commit.
// It returns true when a review pass came back clean (or there was nothing
// to review). Returning false is never fatal: a non-normal review result or
// an exhausted fix budget just means the task proceeds without a clean
// guarantee. The only errors raised are from git and the fix agent, both of
// which abort the run.
func (e *Engine) reviewFix(ctx context.Context, taskTitle, overview string, maxRetries int) (bool, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		files, err := e.git.DiffNameStatus("HEAD~1", "HEAD")
		if err != nil {
			return false, err
		}
		subset := reviewableFiles(files)
		if len(subset) == 0 {
			e.out.ReviewSkipped()
			return true, nil
		}

		res := e.agent.Run(ctx, buildReviewPrompt("HEAD~1..HEAD", subset), agent.RunOpts{})
		e.budget.Add(res.Usage.TokensIn, res.Usage.TokensOut, res.Usage.Cost)
		if res.Kind != agent.KindExit {
			e.out.Warning(fmt.Sprintf("review did not complete (%s), continuing without a clean pass", res.Kind))
			return false, nil
		}

		var rr reviewResponse
		if err := decodeJSONBlock(res.Output, &rr); err != nil {
			e.out.Warning(fmt.Sprintf("unreadable review response, continuing without a clean pass: %v", err))
			return false, nil
		}

		if len(rr.SpecificReviews) == 0 {
			e.out.ReviewClean(attempt + 1)
			return true, nil
		}
		e.out.ReviewFindings(attempt+1, len(rr.SpecificReviews))

		if attempt == maxRetries-1 {
			e.out.Warning(fmt.Sprintf("review findings remain after %d fix attempt(s), moving on", attempt))
			return false, nil
		}

		if _, err := e.invoke(ctx, "fix", buildFixPrompt(taskTitle, overview, rr.SpecificReviews)); err != nil {
			return false, err
		}
		if err := e.git.StageAll(); err != nil {
			return false, err
		}
		// Fixes fold into the task's commit so history stays one logical
		// commit per task.
		if err := e.git.AmendCommit(); err != nil {
			return false, err
		}
	}
	return false, nil
}

// Package git wraps the git CLI operations the orchestrator depends on.
//
// Every mutation happens through a Repo handle bound to one directory; the
// orchestrator is the only writer of the working tree it manages.
package git

import (
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// ErrNotRepo is returned when the directory is not a git repository.
var ErrNotRepo = errors.New("not a git repository")

// ErrDirtyWorktree is returned when the working tree has uncommitted changes.
var ErrDirtyWorktree = errors.New("working tree has uncommitted changes")

// ErrBranchExists is returned when a branch to be created already exists.
var ErrBranchExists = errors.New("branch already exists")

// ErrInvalidBranchName is returned for branch names outside the allowed set.
var ErrInvalidBranchName = errors.New("invalid branch name")

// branchNamePattern is the allowed character set for branch names. Names are
// validated before any git command sees them.
var branchNamePattern = regexp.MustCompile(`^[A-Za-z0-9/_-]+$`)

// ValidBranchName reports whether name matches the allowed pattern.
func ValidBranchName(name string) bool {
	return branchNamePattern.MatchString(name)
}

// ChangedFile is one entry of a name-status diff.
type ChangedFile struct {
	Path   string // path after the change (rename target for renames)
	Status string // single-letter git status: A, M, D, R, C, ...
}

// Repo is a handle on one git repository.
type Repo struct {
	dir string
}

// Open returns a Repo for the given directory. No probing happens here;
// Preflight verifies the repository before any mutation.
func Open(dir string) *Repo {
	return &Repo{dir: dir}
}

// Dir returns the repository directory.
func (r *Repo) Dir() string {
	return r.dir
}

// run executes a git command in the repo directory and returns its combined
// output, wrapping failures with the trimmed output for context.
func (r *Repo) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(string(output)), err)
	}
	return string(output), nil
}

// Preflight runs the read-only checks required before any mutation: the
// directory must be a git repository and the working tree must be clean.
func (r *Repo) Preflight() error {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = r.dir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", ErrNotRepo, r.dir)
	}

	status, err := r.Status()
	if err != nil {
		return err
	}
	if status != "" {
		return fmt.Errorf("%w:\n%s", ErrDirtyWorktree, status)
	}
	return nil
}

// Status returns the porcelain status output, trimmed. Empty means clean.
func (r *Repo) Status() (string, error) {
	out, err := r.run("status", "--porcelain")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the name of the currently checked-out branch.
func (r *Repo) CurrentBranch() (string, error) {
	out, err := r.run("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// BranchExists checks whether a local branch with the given name exists.
func (r *Repo) BranchExists(name string) bool {
	cmd := exec.Command("git", "rev-parse", "--verify", "--quiet", "refs/heads/"+name)
	cmd.Dir = r.dir
	return cmd.Run() == nil
}

// EnsureBranch validates the branch name and puts the repository on it.
//
// On a fresh run the branch must not already exist; it is created from the
// current HEAD and checked out. On a resumed run the branch must already be
// the current branch: re-invoking the orchestrator must never duplicate a
// branch or silently continue on the wrong one.
func (r *Repo) EnsureBranch(name string, resume bool) error {
	if !ValidBranchName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
	}

	if resume {
		current, err := r.CurrentBranch()
		if err != nil {
			return err
		}
		if current != name {
			return fmt.Errorf("currently on branch %q, switch to %q to resume", current, name)
		}
		return nil
	}

	if r.BranchExists(name) {
		return fmt.Errorf("%w: %s", ErrBranchExists, name)
	}
	_, err := r.run("checkout", "-b", name)
	return err
}

// StageAll stages every change in the working tree.
func (r *Repo) StageAll() error {
	_, err := r.run("add", ".")
	return err
}

// Commit records the staged changes with the given message.
func (r *Repo) Commit(message string) error {
	_, err := r.run("commit", "-m", message)
	return err
}

// AmendCommit folds the staged changes into the previous commit, keeping
// its message. History stays one logical commit per task even after fixes.
func (r *Repo) AmendCommit() error {
	_, err := r.run("commit", "--amend", "--no-edit")
	return err
}

// DiffNameStatus returns the files changed between two revisions.
func (r *Repo) DiffNameStatus(from, to string) ([]ChangedFile, error) {
	out, err := r.run("diff", "--name-status", from, to)
	if err != nil {
		return nil, err
	}
	return parseNameStatus(out), nil
}

// parseNameStatus parses `git diff --name-status` output. Lines are
// tab-separated: "M\tpath" for most statuses, "R100\told\tnew" for renames
// and copies, where the last field is the resulting path.
func parseNameStatus(out string) []ChangedFile {
	var files []ChangedFile
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0]
		if len(status) > 1 {
			// Rename/copy scores like R100 collapse to the letter.
			status = status[:1]
		}
		files = append(files, ChangedFile{
			Path:   fields[len(fields)-1],
			Status: status,
		})
	}
	return files
}

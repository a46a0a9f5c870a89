package git

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
)

// initRepo creates a git repository with one initial commit on branch main.
func initRepo(t *testing.T) *Repo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test")
	run("checkout", "-q", "-b", "main")

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test\n"), 0644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-q", "-m", "initial commit")

	return Open(dir)
}

func writeFile(t *testing.T, r *Repo, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(r.Dir(), name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestValidBranchName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"feat/dark-mode", true},
		{"fix_typo", true},
		{"release/v1/2", true},
		{"ABC-123", true},
		{"", false},
		{"feat dark mode", false},
		{"feat/dark..mode", false},
		{"feat~1", false},
		{"héllo", false},
		{"feat:mode", false},
	}

	for _, tt := range tests {
		if got := ValidBranchName(tt.name); got != tt.valid {
			t.Errorf("ValidBranchName(%q) = %v, want %v", tt.name, got, tt.valid)
		}
	}
}

func TestPreflight_NotRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	r := Open(t.TempDir())
	err := r.Preflight()
	if !errors.Is(err, ErrNotRepo) {
		t.Errorf("Preflight() error = %v, want ErrNotRepo", err)
	}
}

func TestPreflight_Clean(t *testing.T) {
	r := initRepo(t)
	if err := r.Preflight(); err != nil {
		t.Errorf("Preflight() error = %v, want nil", err)
	}
}

func TestPreflight_DirtyWorktree(t *testing.T) {
	r := initRepo(t)
	writeFile(t, r, "dirty.txt", "uncommitted")

	err := r.Preflight()
	if !errors.Is(err, ErrDirtyWorktree) {
		t.Errorf("Preflight() error = %v, want ErrDirtyWorktree", err)
	}
}

func TestCurrentBranch(t *testing.T) {
	r := initRepo(t)
	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch() error = %v", err)
	}
	if branch != "main" {
		t.Errorf("CurrentBranch() = %q, want %q", branch, "main")
	}
}

func TestEnsureBranch_Fresh(t *testing.T) {
	r := initRepo(t)

	if err := r.EnsureBranch("feat/dark-mode", false); err != nil {
		t.Fatalf("EnsureBranch() error = %v", err)
	}

	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatal(err)
	}
	if branch != "feat/dark-mode" {
		t.Errorf("CurrentBranch() = %q, want %q", branch, "feat/dark-mode")
	}
	if !r.BranchExists("feat/dark-mode") {
		t.Error("BranchExists() = false after create")
	}
}

func TestEnsureBranch_Fresh_AlreadyExists(t *testing.T) {
	r := initRepo(t)

	if err := r.EnsureBranch("feat/x", false); err != nil {
		t.Fatal(err)
	}
	err := r.EnsureBranch("feat/x", false)
	if !errors.Is(err, ErrBranchExists) {
		t.Errorf("EnsureBranch() error = %v, want ErrBranchExists", err)
	}
}

func TestEnsureBranch_InvalidName(t *testing.T) {
	r := initRepo(t)

	err := r.EnsureBranch("bad name", false)
	if !errors.Is(err, ErrInvalidBranchName) {
		t.Errorf("EnsureBranch() error = %v, want ErrInvalidBranchName", err)
	}
	// Validation must happen before any VCS mutation.
	if r.BranchExists("bad name") {
		t.Error("invalid branch should never be created")
	}
}

func TestEnsureBranch_Resume(t *testing.T) {
	r := initRepo(t)
	if err := r.EnsureBranch("feat/x", false); err != nil {
		t.Fatal(err)
	}

	if err := r.EnsureBranch("feat/x", true); err != nil {
		t.Errorf("EnsureBranch(resume) on matching branch error = %v", err)
	}
}

func TestEnsureBranch_Resume_WrongBranch(t *testing.T) {
	r := initRepo(t)

	err := r.EnsureBranch("feat/x", true)
	if err == nil {
		t.Fatal("EnsureBranch(resume) on wrong branch should error")
	}
}

func TestCommitAndAmend(t *testing.T) {
	r := initRepo(t)

	writeFile(t, r, "a.go", "package a\n")
	if err := r.StageAll(); err != nil {
		t.Fatalf("StageAll() error = %v", err)
	}
	if err := r.Commit("feat: add a"); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	status, err := r.Status()
	if err != nil {
		t.Fatal(err)
	}
	if status != "" {
		t.Errorf("Status() = %q, want clean after commit", status)
	}

	// Amending folds further changes into the same commit.
	writeFile(t, r, "a.go", "package a\n\nvar X = 1\n")
	if err := r.StageAll(); err != nil {
		t.Fatal(err)
	}
	if err := r.AmendCommit(); err != nil {
		t.Fatalf("AmendCommit() error = %v", err)
	}

	files, err := r.DiffNameStatus("HEAD~1", "HEAD")
	if err != nil {
		t.Fatalf("DiffNameStatus() error = %v", err)
	}
	want := []ChangedFile{{Path: "a.go", Status: "A"}}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("DiffNameStatus() = %v, want %v", files, want)
	}
}

func TestDiffNameStatus_Modify(t *testing.T) {
	r := initRepo(t)

	writeFile(t, r, "README.md", "# changed\n")
	if err := r.StageAll(); err != nil {
		t.Fatal(err)
	}
	if err := r.Commit("docs: update readme"); err != nil {
		t.Fatal(err)
	}

	files, err := r.DiffNameStatus("HEAD~1", "HEAD")
	if err != nil {
		t.Fatalf("DiffNameStatus() error = %v", err)
	}
	want := []ChangedFile{{Path: "README.md", Status: "M"}}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("DiffNameStatus() = %v, want %v", files, want)
	}
}

func TestParseNameStatus(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []ChangedFile
	}{
		{
			name: "empty",
			in:   "",
			want: nil,
		},
		{
			name: "mixed statuses",
			in:   "M\tmain.go\nA\tnew.go\nD\tgone.go\n",
			want: []ChangedFile{
				{Path: "main.go", Status: "M"},
				{Path: "new.go", Status: "A"},
				{Path: "gone.go", Status: "D"},
			},
		},
		{
			name: "rename collapses score and takes target path",
			in:   "R100\told/name.go\tnew/name.go\n",
			want: []ChangedFile{{Path: "new/name.go", Status: "R"}},
		},
		{
			name: "blank lines ignored",
			in:   "\nM\ta.go\n\n",
			want: []ChangedFile{{Path: "a.go", Status: "M"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseNameStatus(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseNameStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

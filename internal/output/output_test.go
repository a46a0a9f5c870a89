package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newBufferPrinter(jsonl bool) (*Printer, *bytes.Buffer) {
	p := NewPrinter(jsonl)
	buf := &bytes.Buffer{}
	p.SetWriter(buf)
	return p, buf
}

func TestPrinter_JSONL_EventShapes(t *testing.T) {
	p, buf := newBufferPrinter(true)

	p.Start("add dark mode", false)
	p.Plan("1. Do it", "feat/dark-mode")
	p.Branch("feat/dark-mode")
	p.Task(1, 2, "Add toggle")
	p.Commit("feat: Add toggle")
	p.ReviewSkipped()
	p.ReviewClean(1)
	p.ReviewFindings(2, 3)
	p.Warning("something odd")
	p.Error(errors.New("it broke"))
	p.Cancelled()
	p.NoOp("already done")
	p.Complete(Summary{
		Task:     "add dark mode",
		Branch:   "feat/dark-mode",
		Base:     "main",
		Tasks:    2,
		Commits:  []string{"feat: Add toggle"},
		Duration: 3 * time.Second,
	})

	wantTypes := []string{
		"start", "plan", "branch", "task", "commit",
		"review_skipped", "review_clean", "review_findings",
		"warning", "error", "cancelled", "noop", "complete",
	}

	scanner := bufio.NewScanner(buf)
	var gotTypes []string
	for scanner.Scan() {
		var event map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("line is not valid JSON: %q: %v", scanner.Text(), err)
		}
		typ, ok := event["type"].(string)
		if !ok {
			t.Fatalf("event has no type: %q", scanner.Text())
		}
		gotTypes = append(gotTypes, typ)
	}

	if len(gotTypes) != len(wantTypes) {
		t.Fatalf("emitted %d events, want %d: %v", len(gotTypes), len(wantTypes), gotTypes)
	}
	for i, want := range wantTypes {
		if gotTypes[i] != want {
			t.Errorf("event[%d].type = %q, want %q", i, gotTypes[i], want)
		}
	}
}

func TestPrinter_JSONL_CompletePayload(t *testing.T) {
	p, buf := newBufferPrinter(true)

	p.Complete(Summary{
		Task:     "t",
		Branch:   "feat/x",
		Base:     "develop",
		Tasks:    1,
		Commits:  []string{"feat: one"},
		Flagged:  []string{"one"},
		Duration: 1500 * time.Millisecond,
	})

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatal(err)
	}
	if event["branch"] != "feat/x" || event["base"] != "develop" {
		t.Errorf("branch/base = %v/%v", event["branch"], event["base"])
	}
	if event["duration_ms"] != float64(1500) {
		t.Errorf("duration_ms = %v, want 1500", event["duration_ms"])
	}
}

func TestPrinter_Human_StartAndResume(t *testing.T) {
	p, buf := newBufferPrinter(false)
	p.Start("add dark mode", false)
	if !strings.Contains(buf.String(), "Epic: add dark mode") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	p.Start("add dark mode", true)
	if !strings.Contains(buf.String(), "Resuming epic: add dark mode") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrinter_Human_CompleteNextSteps(t *testing.T) {
	p, buf := newBufferPrinter(false)
	p.Complete(Summary{
		Branch:   "feat/x",
		Base:     "develop",
		Tasks:    1,
		Commits:  []string{"feat: one"},
		Flagged:  []string{"one"},
		Duration: 2 * time.Second,
	})

	out := buf.String()
	if !strings.Contains(out, "git push -u origin feat/x") {
		t.Error("missing push suggestion")
	}
	if !strings.Contains(out, "pull request against develop") {
		t.Error("missing PR suggestion with base branch")
	}
	if !strings.Contains(out, "unresolved review findings") {
		t.Error("missing flagged-task warning")
	}
}

func TestPrinter_Human_CompleteDefaultsBaseToMain(t *testing.T) {
	p, buf := newBufferPrinter(false)
	p.Complete(Summary{Branch: "feat/x", Duration: time.Second})

	if !strings.Contains(buf.String(), "pull request against main") {
		t.Errorf("output = %q", buf.String())
	}
}

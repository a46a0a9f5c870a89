package agent

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ClaudeAgent implements the Agent interface for the Claude Code CLI.
type ClaudeAgent struct {
	// Command is the path to the claude binary. Defaults to "claude".
	Command string
}

// NewClaudeAgent creates a new Claude Code agent with default settings.
func NewClaudeAgent() *ClaudeAgent {
	return &ClaudeAgent{Command: "claude"}
}

// Name returns "claude".
func (a *ClaudeAgent) Name() string {
	return "claude"
}

// Available checks if the claude CLI is installed and accessible.
func (a *ClaudeAgent) Available() bool {
	_, err := exec.LookPath(a.command())
	return err == nil
}

// usageLimitPattern matches backend refusals caused by usage or rate limits.
var usageLimitPattern = regexp.MustCompile(`(?i)(usage limit|rate limit|quota exceeded|credit balance)`)

// Run executes claude with the given prompt.
// Uses --dangerously-skip-permissions for autonomous operation and --print
// to get output without interactive mode. The outcome is always reported
// through the Result kind, never through a returned error.
func (a *ClaudeAgent) Run(ctx context.Context, prompt string, opts RunOpts) *Result {
	start := time.Now()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	args := []string{
		"--dangerously-skip-permissions",
		"--print",
		prompt,
	}

	cmd := exec.CommandContext(ctx, a.command(), args...)

	var stdout, stderr bytes.Buffer
	var runErr error

	if opts.Stream != nil {
		runErr = a.runStreaming(ctx, cmd, &stdout, &stderr, opts.Stream)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		runErr = cmd.Run()
	}

	duration := time.Since(start)
	usage := parseUsage(stderr.String())

	if runErr != nil {
		switch {
		case ctx.Err() == context.Canceled:
			return &Result{Kind: KindInterrupted, Usage: usage, Duration: duration}
		case ctx.Err() == context.DeadlineExceeded:
			return &Result{
				Kind:     KindError,
				Usage:    usage,
				Err:      fmt.Errorf("claude timed out after %v", opts.Timeout),
				Duration: duration,
			}
		case usageLimitPattern.MatchString(stderr.String()):
			return &Result{Kind: KindUsageExceeded, Usage: usage, Duration: duration}
		default:
			return &Result{
				Kind:     KindError,
				Usage:    usage,
				Err:      fmt.Errorf("claude exited with error: %w\nstderr: %s", runErr, stderr.String()),
				Duration: duration,
			}
		}
	}

	return &Result{
		Kind:     KindExit,
		Output:   stdout.String(),
		Usage:    usage,
		Duration: duration,
	}
}

// runStreaming runs cmd, copying each stdout line to the stream channel as
// it arrives while retaining the full output in stdout.
func (a *ClaudeAgent) runStreaming(ctx context.Context, cmd *exec.Cmd, stdout, stderr *bytes.Buffer, stream chan<- string) error {
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start claude: %w", err)
	}

	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text() + "\n"
		stdout.WriteString(line)
		select {
		case stream <- line:
		case <-ctx.Done():
			// stop forwarding, keep draining so Wait can finish
		}
	}
	return cmd.Wait()
}

// command returns the claude binary path.
func (a *ClaudeAgent) command() string {
	if a.Command != "" {
		return a.Command
	}
	return "claude"
}

// Usage report formats vary across claude versions, so each field gets a
// small list of candidate patterns tried in order.
var (
	tokensInPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[Ii]nput\s*(?:tokens)?[:\s]+(\d+)`),
		regexp.MustCompile(`(\d+)\s*input\s*tokens?`),
	}
	tokensOutPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[Oo]utput\s*(?:tokens)?[:\s]+(\d+)`),
		regexp.MustCompile(`(\d+)\s*output\s*tokens?`),
	}
	costPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[Cc]ost[:\s]+\$?([\d.]+)`),
		regexp.MustCompile(`\$([\d.]+)\s*(?:total|cost)?`),
	}
)

// parseUsage extracts token counts and cost from claude's stderr. Missing
// fields stay zero; usage reporting is best effort.
func parseUsage(output string) Usage {
	var u Usage
	u.TokensIn = firstInt(tokensInPatterns, output)
	u.TokensOut = firstInt(tokensOutPatterns, output)

	for _, re := range costPatterns {
		m := re.FindStringSubmatch(output)
		if len(m) < 2 {
			continue
		}
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			u.Cost = v
			break
		}
	}
	return u
}

func firstInt(patterns []*regexp.Regexp, s string) int {
	for _, re := range patterns {
		m := re.FindStringSubmatch(s)
		if len(m) < 2 {
			continue
		}
		if v, err := strconv.Atoi(m[1]); err == nil {
			return v
		}
	}
	return 0
}

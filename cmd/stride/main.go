package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stride-sh/stride/internal/agent"
	"github.com/stride-sh/stride/internal/config"
	"github.com/stride-sh/stride/internal/console"
	"github.com/stride-sh/stride/internal/epic"
	"github.com/stride-sh/stride/internal/epicctx"
	"github.com/stride-sh/stride/internal/git"
	"github.com/stride-sh/stride/internal/output"
	"github.com/stride-sh/stride/internal/todo"
	"github.com/stride-sh/stride/internal/update"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "stride",
	Short: "Autonomous epic runner for AI coding agents",
	Long: `Stride takes a free-text feature request and drives it to completion:
it negotiates a plan with you, breaks it into tasks, then implements,
commits, and reviews each task on a dedicated branch. A run interrupted
mid-epic resumes where it stopped.`,
	Version: version,
}

var runCmd = &cobra.Command{
	Use:   "run [task...]",
	Short: "Run an epic for the given feature request",
	Long: `Run starts (or resumes) an epic. With a saved epic in progress the task
argument is not needed; the run picks up at the first open task on the
stored branch.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := config.Load(".")
		if err != nil {
			return err
		}
		if jsonl, _ := cmd.Flags().GetBool("jsonl"); jsonl {
			cfg.JSONL = true
		}
		if n, _ := cmd.Flags().GetInt("max-fix-retries"); n > 0 {
			cfg.MaxFixRetries = n
		}

		claude := &agent.ClaudeAgent{Command: cfg.AgentCommand}
		if !claude.Available() {
			return fmt.Errorf("agent command %q not found in PATH", cfg.AgentCommand)
		}

		engine := epic.NewEngine(
			claude,
			git.Open("."),
			epicctx.NewStoreWithDir(cfg.StateDir),
			todo.NewStoreWithPath(filepath.Join(cfg.StateDir, "todos.json")),
			console.New(),
			output.NewPrinter(cfg.JSONL),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		result, err := engine.Run(ctx, epic.RunConfig{
			Task:          strings.Join(args, " "),
			MaxFixRetries: cfg.MaxFixRetries,
		})
		if err != nil {
			var runErr *epic.RunError
			if errors.As(err, &runErr) {
				fmt.Fprintln(os.Stderr, "Error:", runErr.Error())
				fmt.Fprintln(os.Stderr)
				fmt.Fprintln(os.Stderr, runErr.CleanupGuidance())
				os.Exit(1)
			}
			return err
		}

		_ = result
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved epic, if any",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := config.Load(".")
		if err != nil {
			return err
		}
		store := epicctx.NewStoreWithDir(cfg.StateDir)
		ec, err := store.Load()
		if err != nil {
			return err
		}
		if ec.IsEmpty() {
			fmt.Println("No epic in progress.")
			return nil
		}

		fmt.Printf("Task:   %s\n", ec.Task)
		if ec.BranchName != "" {
			fmt.Printf("Branch: %s (from %s)\n", ec.BranchName, ec.BaseBranch)
		} else {
			fmt.Println("Phase:  planning (no plan approved yet)")
		}

		todos := todo.NewStoreWithPath(filepath.Join(cfg.StateDir, "todos.json"))
		open, err := todos.ListByStatus(todo.StatusOpen)
		if err != nil {
			return err
		}
		done, err := todos.ListByStatus(todo.StatusCompleted)
		if err != nil {
			return err
		}
		fmt.Printf("Tasks:  %d completed, %d open\n", len(done), len(open))
		for _, item := range open {
			fmt.Printf("  - %s\n", item.Title)
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the saved epic state",
	Long: `Reset removes the persisted epic context so the next run starts fresh.
Branches and commits are not touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := config.Load(".")
		if err != nil {
			return err
		}
		if err := epicctx.NewStoreWithDir(cfg.StateDir).Remove(); err != nil {
			return err
		}
		if err := os.Remove(filepath.Join(cfg.StateDir, "todos.json")); err != nil && !os.IsNotExist(err) {
			return err
		}
		fmt.Println("Epic state cleared.")
		return nil
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade stride to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		ctx := context.Background()
		check, err := update.Check(ctx, version)
		if err != nil {
			return err
		}
		if !check.Available() {
			fmt.Printf("stride %s is up to date.\n", version)
			return nil
		}
		fmt.Printf("Upgrading %s -> %s...\n", version, check.LatestVersion)
		if err := update.Apply(ctx, check.UpdateTo); err != nil {
			return err
		}
		fmt.Println("Done.")
		return nil
	},
}

func init() {
	runCmd.Flags().Int("max-fix-retries", 0, "Maximum review-fix attempts per task (default from config)")
	runCmd.Flags().Bool("jsonl", false, "Emit progress as JSON Lines")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(upgradeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

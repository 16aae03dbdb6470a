package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"nrtrewriter/internal/annotator"
	"nrtrewriter/internal/config"
	"nrtrewriter/internal/pipeline"
	"nrtrewriter/internal/storage"
	"nrtrewriter/internal/workspace"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// loadSettings reads the configuration and applies the flags the user set
// explicitly on top of it.
func loadSettings(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("audit-db") {
		cfg.AuditDB = auditDB
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("no-properties") {
		cfg.Properties = !noProperties
	}
	if flags.Lookup("dry-run") != nil && flags.Changed("dry-run") {
		cfg.DryRun = dryRun
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, newLogger(cfg.LogLevel), nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func newPipeline(cfg *config.Config, writer pipeline.Writer, logger *slog.Logger) *pipeline.Pipeline {
	return pipeline.New(pipeline.Options{
		Workers: cfg.Workers,
		DryRun:  cfg.DryRun,
		Annotators: annotator.Default(annotator.Options{
			NullableAttributes: cfg.NullableAttributes,
			Properties:         cfg.Properties,
		}),
		Writer: writer,
		Logger: logger,
	})
}

func runRewrite(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()
	root, project := args[0], args[1]

	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("📂 Loading project %s under %s\n", project, root)
	ws, err := workspace.Open(ctx, root, project, workspace.Options{Ignored: cfg.Ignore, Logger: logger})
	if err != nil {
		return err
	}

	run := storage.NewRun(root, ws.Project, cfg.DryRun)
	res, runErr := newPipeline(cfg, ws.Writer(), logger).Run(ctx, ws)
	if res != nil {
		printSummary(res, cfg.DryRun)
		if cfg.AuditDB != "" {
			if err := recordRun(ctx, cfg.AuditDB, run, res); err != nil {
				logger.Error("failed to record run", "db", cfg.AuditDB, "error", err)
			}
		}
	}
	return runErr
}

func printSummary(res *pipeline.Result, dry bool) {
	fmt.Printf("📝 %d documents, %d changed, %d annotations added in %v\n",
		res.Documents, len(res.Changes), res.TotalEdits(), res.Duration)

	passes := make([]string, 0, len(res.Edits))
	for name := range res.Edits {
		passes = append(passes, name)
	}
	sort.Strings(passes)
	for _, name := range passes {
		fmt.Printf("  -> %s: %d\n", name, res.Edits[name])
	}

	missing := 0
	for _, s := range res.Skipped {
		if pipeline.IsSkippable(s.Err) {
			missing++
		}
	}
	if len(res.Skipped) > 0 {
		fmt.Printf("⚠️  Skipped %d files (%d without semantic context)\n", len(res.Skipped), missing)
	}
	if dry {
		fmt.Println("✅ Dry run: no files written.")
		return
	}
	fmt.Printf("✅ Wrote %d files.\n", res.Written)
}

func recordRun(ctx context.Context, dbPath string, run storage.Run, res *pipeline.Result) error {
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	run.Documents = res.Documents
	run.Changed = len(res.Changes)
	run.Edits = res.TotalEdits()
	run.Skipped = len(res.Skipped)
	files, err := storage.FileRecords(run.ID, res.Changes)
	if err != nil {
		return err
	}
	return store.SaveRun(ctx, run, files)
}

// plan is the YAML document printed by the plan command.
type plan struct {
	Project string            `yaml:"project"`
	Edits   map[string]int    `yaml:"edits_by_pass"`
	Files   []pipeline.Change `yaml:"files"`
	Skipped []string          `yaml:"skipped,omitempty"`
}

var planCmd = &cobra.Command{
	Use:   "plan <solution-root> <project>",
	Short: "Print the planned annotations as YAML without writing",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		ctx := cmd.Context()

		cfg, logger, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		cfg.DryRun = true

		ws, err := workspace.Open(ctx, args[0], args[1], workspace.Options{Ignored: cfg.Ignore, Logger: logger})
		if err != nil {
			return err
		}
		res, err := newPipeline(cfg, nil, logger).Run(ctx, ws)
		if err != nil {
			return err
		}

		out := plan{Project: ws.Project, Edits: res.Edits, Files: res.Changes}
		for _, s := range res.Skipped {
			out.Skipped = append(out.Skipped, s.Path)
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded runs, or the files changed by one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg, _, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if cfg.AuditDB == "" {
			return fmt.Errorf("no audit database configured; pass --audit-db")
		}
		store, err := storage.NewSQLiteStore(cfg.AuditDB)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			files, err := store.Files(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(out, "%s\t%s -> %s\t%d edits\n", f.Path, f.Before, f.After, len(f.Edits))
			}
			return nil
		}

		runs, err := store.Runs(cmd.Context(), 20)
		if err != nil {
			return err
		}
		for _, r := range runs {
			mode := "write"
			if r.DryRun {
				mode = "dry-run"
			}
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%d changed, %d edits\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Project, mode, r.Changed, r.Edits)
		}
		return nil
	},
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "nrtrewriter <solution-root> <project>",
		Short: "Add nullable reference annotations to a C# project",
		Long: `nrtrewriter finds the project <project>.csproj under <solution-root>, decides
which declarations can hold null and rewrites them to their nullable form.`,
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		RunE:          runRewrite,
	}

	configPath   string
	dryRun       bool
	workers      int
	auditDB      string
	logLevel     string
	noProperties bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "nrtrewriter.yaml", "Path to the YAML configuration file")
	flags.IntVarP(&workers, "workers", "w", 0, "Number of files annotated in parallel (default from config)")
	flags.StringVar(&auditDB, "audit-db", "", "SQLite database recording every run (disabled when empty)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.BoolVar(&noProperties, "no-properties", false, "Do not annotate properties")
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report the edits without writing any file")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(historyCmd)
}

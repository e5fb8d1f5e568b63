package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hrboard",
	Short: "hrboard - weekly HR dashboard",
	Long: `hrboard keeps weekly hiring priorities, candidate pipelines, weekly and
monthly reports and semester goals in one terminal dashboard, saving them
automatically to a local medium.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

var (
	flagDir      string
	flagBackend  string
	flagLogLevel string
	flagJSON     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "data directory (default per OS, or HRBOARD_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage medium: file, sqlite, redis or memory")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "print machine-readable JSON")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(searchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

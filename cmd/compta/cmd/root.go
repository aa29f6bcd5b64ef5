// Package cmd provides CLI commands for compta.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/moteur-compta/moteur/pkg/config"
	"github.com/moteur-compta/moteur/pkg/db"
	"github.com/moteur-compta/moteur/pkg/pathutil"
	"github.com/moteur-compta/moteur/pkg/purchase"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "compta",
	Short: "Purchases and general-ledger bookkeeping core",
	Long: `compta manages a double-entry purchase ledger in a local SQLite
database: balanced journal entries, per-journal document sequences,
supplier statements and the FEC-style fiscal-year export.

Example:
  compta init
  compta export-fec --year 2025 --out fec-2025.csv
  compta balances`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logging
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(payCmd)
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(balancesCmd)
}

// openStore loads the configuration and opens the database, which also
// runs schema initialization and migration.
func openStore() (*config.Config, *db.Connection, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	dbPath := pathResolver(cfg).GetDatabasePath()
	slog.Debug("Opening database", "path", dbPath)
	conn, err := db.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, conn, nil
}

// pathResolver builds the data-directory resolver from configuration.
func pathResolver(cfg *config.Config) *pathutil.PathResolver {
	return pathutil.New(pathutil.Config{
		DataRoot:     cfg.Root,
		DatabasePath: cfg.DBPath,
	})
}

// loadPolicy returns the posting policy, applying a YAML override when
// configured.
func loadPolicy(cfg *config.Config) (purchase.PostingPolicy, error) {
	if cfg.PolicyPath == "" {
		return purchase.DefaultPolicy(), nil
	}
	return purchase.LoadPolicy(cfg.PolicyPath)
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}

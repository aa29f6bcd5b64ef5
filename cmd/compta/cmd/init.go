package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize or migrate the database",
	Long: `Create the database schema if it does not exist, and migrate an
older installation to the current purchases shape. Safe to run
repeatedly.

Example:
  compta init`,
	Run: runInit,
}

func runInit(cmd *cobra.Command, args []string) {
	cfg, conn, err := openStore()
	exitOnError(err, "failed to open database")
	defer conn.Close()

	paths := pathResolver(cfg)
	exitOnError(paths.EnsureDirs(), "failed to create data directories")

	dbPath := paths.GetDatabasePath()
	slog.Info("Database ready", "path", dbPath)
	fmt.Printf("Database initialized at %s\n", dbPath)
}

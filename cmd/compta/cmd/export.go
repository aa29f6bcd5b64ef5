package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/moteur-compta/moteur/pkg/report"
)

var (
	exportYear int
	exportOut  string
)

// exportCmd represents the export-fec command.
var exportCmd = &cobra.Command{
	Use:   "export-fec",
	Short: "Export a fiscal year in the FEC-style format",
	Long: `Write all journal entries of a fiscal year to a semicolon-delimited
file, one row per entry line, in the fixed 7-column FEC-style format.

Example:
  compta export-fec --year 2025 --out fec-2025.csv`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().IntVar(&exportYear, "year", 0, "fiscal year to export (required)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "destination file (required)")
	exportCmd.MarkFlagRequired("year")
	exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, args []string) {
	_, conn, err := openStore()
	exitOnError(err, "failed to open database")
	defer conn.Close()

	slog.Info("Exporting fiscal year", "year", exportYear, "out", exportOut)
	err = report.ExportFECFile(conn, exportYear, exportOut)
	exitOnError(err, "failed to export")

	fmt.Printf("Exported year %d to %s\n", exportYear, exportOut)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moteur-compta/moteur/pkg/purchase"
)

var attachFlags struct {
	id   int64
	file string
}

// attachCmd represents the attach command.
var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Attach a document to a purchase",
	Long: `Copy an invoice scan or receipt into the attachments directory and
record its path on the purchase.

Example:
  compta attach --id 3 --file invoice.pdf`,
	Run: runAttach,
}

func init() {
	attachCmd.Flags().Int64Var(&attachFlags.id, "id", 0, "purchase id (required)")
	attachCmd.Flags().StringVar(&attachFlags.file, "file", "", "document to attach (required)")
	attachCmd.MarkFlagRequired("id")
	attachCmd.MarkFlagRequired("file")
}

func runAttach(cmd *cobra.Command, args []string) {
	cfg, conn, err := openStore()
	exitOnError(err, "failed to open database")
	defer conn.Close()

	policy, err := loadPolicy(cfg)
	exitOnError(err, "failed to load posting policy")

	svc := purchase.NewService(conn, policy)
	dest, err := svc.Attach(attachFlags.id, attachFlags.file, pathResolver(cfg))
	exitOnError(err, "failed to attach document")

	fmt.Printf("Attached %s\n", dest)
}

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/moteur-compta/moteur/pkg/purchase"
)

var addFlags struct {
	date        string
	piece       string
	supplierID  int64
	label       string
	ttc         float64
	vatRate     float64
	account     string
	dueDate     string
	advance     bool
	notReceived bool
}

// addCmd represents the add command.
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a purchase and its journal entry",
	Long: `Record a purchase. The balanced "ACH" journal entry is created in
the same transaction; a piece of AUTO allocates the next document
number for the year.

Example:
  compta add --date 2025-03-01 --supplier 1 --label "Fournitures" \
    --ttc 120 --vat-rate 20 --account 601 --due 2025-03-31`,
	Run: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addFlags.date, "date", "", "purchase date YYYY-MM-DD (required)")
	addCmd.Flags().StringVar(&addFlags.piece, "piece", purchase.AutoPiece, "document number, AUTO to allocate")
	addCmd.Flags().Int64Var(&addFlags.supplierID, "supplier", 0, "supplier id (required)")
	addCmd.Flags().StringVar(&addFlags.label, "label", "", "purchase label (required)")
	addCmd.Flags().Float64Var(&addFlags.ttc, "ttc", 0, "tax-inclusive amount (required)")
	addCmd.Flags().Float64Var(&addFlags.vatRate, "vat-rate", 20, "VAT rate (0, 2.1, 5.5, 10 or 20)")
	addCmd.Flags().StringVar(&addFlags.account, "account", "", "expense account code (required)")
	addCmd.Flags().StringVar(&addFlags.dueDate, "due", "", "due date YYYY-MM-DD (required)")
	addCmd.Flags().BoolVar(&addFlags.advance, "advance", false, "record as supplier advance")
	addCmd.Flags().BoolVar(&addFlags.notReceived, "not-received", false, "invoice not yet received")

	addCmd.MarkFlagRequired("date")
	addCmd.MarkFlagRequired("supplier")
	addCmd.MarkFlagRequired("label")
	addCmd.MarkFlagRequired("ttc")
	addCmd.MarkFlagRequired("account")
	addCmd.MarkFlagRequired("due")
}

func runAdd(cmd *cobra.Command, args []string) {
	cfg, conn, err := openStore()
	exitOnError(err, "failed to open database")
	defer conn.Close()

	policy, err := loadPolicy(cfg)
	exitOnError(err, "failed to load posting policy")

	svc := purchase.NewService(conn, policy)
	svc.SetCreatedBy(cfg.CreatedBy)

	p := purchase.Purchase{
		Date:              addFlags.date,
		Piece:             addFlags.piece,
		SupplierID:        addFlags.supplierID,
		Label:             addFlags.label,
		TTCAmount:         addFlags.ttc,
		VATRate:           addFlags.vatRate,
		AccountCode:       addFlags.account,
		DueDate:           addFlags.dueDate,
		IsAdvance:         addFlags.advance,
		IsInvoiceReceived: !addFlags.notReceived,
	}

	id, err := svc.Add(&p)
	exitOnError(err, "failed to record purchase")

	slog.Info("Purchase recorded", "id", id, "piece", p.Piece)
	fmt.Printf("Purchase %d recorded, piece %s\n", id, p.Piece)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moteur-compta/moteur/pkg/purchase"
)

var payFlags struct {
	id     int64
	date   string
	method string
	amount float64
}

// payCmd represents the pay command.
var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Record a payment against a purchase",
	Long: `Record a payment. The payment status advances with the cumulative
amount paid and a "BQ" journal entry is posted in the same
transaction.

Example:
  compta pay --id 3 --date 2025-03-15 --method VIR --amount 60`,
	Run: runPay,
}

func init() {
	payCmd.Flags().Int64Var(&payFlags.id, "id", 0, "purchase id (required)")
	payCmd.Flags().StringVar(&payFlags.date, "date", "", "payment date YYYY-MM-DD (required)")
	payCmd.Flags().StringVar(&payFlags.method, "method", "VIR", "payment method")
	payCmd.Flags().Float64Var(&payFlags.amount, "amount", 0, "amount paid (required)")

	payCmd.MarkFlagRequired("id")
	payCmd.MarkFlagRequired("date")
	payCmd.MarkFlagRequired("amount")
}

func runPay(cmd *cobra.Command, args []string) {
	cfg, conn, err := openStore()
	exitOnError(err, "failed to open database")
	defer conn.Close()

	policy, err := loadPolicy(cfg)
	exitOnError(err, "failed to load posting policy")

	svc := purchase.NewService(conn, policy)
	err = svc.Pay(payFlags.id, payFlags.date, payFlags.method, payFlags.amount)
	exitOnError(err, "failed to record payment")

	fmt.Printf("Payment of %.2f recorded for purchase %d\n", payFlags.amount, payFlags.id)
}

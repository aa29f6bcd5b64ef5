package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moteur-compta/moteur/pkg/report"
)

var balancesSuppliers bool

// balancesCmd represents the balances command.
var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Display account or supplier balances",
	Long: `Display the running balance of every account, computed live from
the entry lines. With --suppliers, display supplier balances instead.

Example:
  compta balances
  compta balances --suppliers`,
	Run: runBalances,
}

func init() {
	balancesCmd.Flags().BoolVar(&balancesSuppliers, "suppliers", false, "show supplier balances")
}

func runBalances(cmd *cobra.Command, args []string) {
	_, conn, err := openStore()
	exitOnError(err, "failed to open database")
	defer conn.Close()

	if balancesSuppliers {
		balances, err := report.SupplierBalances(conn)
		exitOnError(err, "failed to compute supplier balances")
		for _, b := range balances {
			fmt.Printf("%-6d %-30s %12.2f\n", b.SupplierID, b.Name, b.Balance)
		}
		return
	}

	balances, err := report.AccountBalances(conn)
	exitOnError(err, "failed to compute account balances")
	for _, b := range balances {
		fmt.Printf("%-8s %-30s %12.2f\n", b.Code, b.Name, b.Balance)
	}
}

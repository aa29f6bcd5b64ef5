// Package report computes the ledger's read-only views: account and
// supplier balances, transaction histories with running balances, and
// the FEC export. Everything is derived live from entries and entry
// lines; nothing here writes or caches.
package report

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/moteur-compta/moteur/pkg/db"
)

// Supplier statements look only at the payable-side accounts.
var supplierAccounts = []string{"401", "408", "4091"}

// AccountBalance is one row of the account balance view.
type AccountBalance struct {
	Code    string
	Name    string
	Balance float64
}

// TransactionRow is one movement of an account or supplier statement,
// with the running balance up to and including this row.
type TransactionRow struct {
	Date    string
	Journal string
	Ref     string
	Label   string
	Debit   float64
	Credit  float64
	Balance float64
}

// SupplierBalance is one row of the supplier balance view.
type SupplierBalance struct {
	SupplierID int64
	Name       string
	Balance    float64
}

// AccountBalances returns every account with its balance
// (sum of debits minus credits, rounded to 2 decimals), ordered by
// code. Accounts with no lines appear with a zero balance.
func AccountBalances(conn *db.Connection) ([]AccountBalance, error) {
	rows, err := conn.Query(`
		SELECT a.code, a.name, COALESCE(SUM(el.debit - el.credit), 0)
		FROM accounts a
		LEFT JOIN entry_lines el ON el.account = a.code
		GROUP BY a.code, a.name
		ORDER BY a.code`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account balances: %w", err)
	}
	defer rows.Close()

	var balances []AccountBalance
	for rows.Next() {
		var (
			b   AccountBalance
			raw float64
		)
		if err := rows.Scan(&b.Code, &b.Name, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan account balance: %w", err)
		}
		b.Balance, _ = decimal.NewFromFloat(raw).Round(2).Float64()
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// AccountTransactions returns the movements of one account ordered by
// (date, entry id), the entry id breaking ties so same-day rows keep
// their insertion order, with a running balance folded row by row.
func AccountTransactions(conn *db.Connection, code string) ([]TransactionRow, error) {
	rows, err := conn.Query(`
		SELECT e.date, e.journal, e.ref, e.memo, el.debit, el.credit
		FROM entries e JOIN entry_lines el ON el.entry_id = e.id
		WHERE el.account = ?
		ORDER BY e.date, e.id`, code)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account transactions: %w", err)
	}
	defer rows.Close()

	return scanHistory(rows)
}

// SupplierBalances returns every supplier with the balance of the
// payable-side lines whose entries reference one of the supplier's
// purchase pieces. Suppliers with no activity appear with zero.
func SupplierBalances(conn *db.Connection) ([]SupplierBalance, error) {
	rows, err := conn.Query(`
		SELECT s.id, s.name, COALESCE(SUM(el.debit - el.credit), 0)
		FROM suppliers s
		LEFT JOIN purchases p ON p.supplier_id = s.id
		LEFT JOIN entries e ON e.ref = p.piece
		LEFT JOIN entry_lines el ON el.entry_id = e.id
			AND el.account IN (`+accountPlaceholders()+`)
		GROUP BY s.id, s.name
		ORDER BY s.name`, accountArgs()...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier balances: %w", err)
	}
	defer rows.Close()

	var balances []SupplierBalance
	for rows.Next() {
		var (
			b   SupplierBalance
			raw float64
		)
		if err := rows.Scan(&b.SupplierID, &b.Name, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan supplier balance: %w", err)
		}
		b.Balance, _ = decimal.NewFromFloat(raw).Round(2).Float64()
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// SupplierTransactions returns one supplier's payable-side movements
// ordered by (date, entry id) with a running balance, computed exactly
// like the account history.
func SupplierTransactions(conn *db.Connection, supplierID int64) ([]TransactionRow, error) {
	args := append(accountArgs(), supplierID)
	rows, err := conn.Query(`
		SELECT e.date, e.journal, e.ref, e.memo, el.debit, el.credit
		FROM entries e JOIN entry_lines el ON el.entry_id = e.id
		WHERE el.account IN (`+accountPlaceholders()+`)
		  AND e.ref IN (SELECT piece FROM purchases WHERE supplier_id = ?)
		ORDER BY e.date, e.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier transactions: %w", err)
	}
	defer rows.Close()

	return scanHistory(rows)
}

// scanHistory folds debit-credit into a running balance with 2-decimal
// rounding on each output row.
func scanHistory(rows *sql.Rows) ([]TransactionRow, error) {
	var (
		history []TransactionRow
		balance = decimal.Zero
	)
	for rows.Next() {
		var (
			row  TransactionRow
			ref  sql.NullString
			memo sql.NullString
		)
		if err := rows.Scan(&row.Date, &row.Journal, &ref, &memo, &row.Debit, &row.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		row.Ref = ref.String
		row.Label = memo.String
		balance = balance.Add(decimal.NewFromFloat(row.Debit)).Sub(decimal.NewFromFloat(row.Credit))
		row.Balance, _ = balance.Round(2).Float64()
		history = append(history, row)
	}
	return history, rows.Err()
}

func accountPlaceholders() string {
	s := ""
	for i := range supplierAccounts {
		if i > 0 {
			s += ","
		}
		s += "?"
	}
	return s
}

func accountArgs() []interface{} {
	args := make([]interface{}, len(supplierAccounts))
	for i, a := range supplierAccounts {
		args[i] = a
	}
	return args
}

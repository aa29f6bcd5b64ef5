package ledger

import (
	"database/sql"
	"fmt"

	"github.com/moteur-compta/moteur/pkg/db"
)

// Account is one row of the chart of accounts.
type Account struct {
	Code       string
	Name       string
	ParentCode sql.NullString
}

// AddAccount inserts or replaces an account.
func AddAccount(conn *db.Connection, code, name string, parentCode string) error {
	_, err := conn.Exec(
		`INSERT OR REPLACE INTO accounts(code, name, parent_code) VALUES (?,?,?)`,
		code, name, nullString(parentCode),
	)
	if err != nil {
		return fmt.Errorf("failed to add account %s: %w", code, err)
	}
	return nil
}

// UpdateAccount updates the name or parent of an account.
func UpdateAccount(conn *db.Connection, code, name string, parentCode string) error {
	_, err := conn.Exec(
		`UPDATE accounts SET name=?, parent_code=? WHERE code=?`,
		name, nullString(parentCode), code,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", code, err)
	}
	return nil
}

// DeleteAccount removes the account with the given code.
func DeleteAccount(conn *db.Connection, code string) error {
	_, err := conn.Exec(`DELETE FROM accounts WHERE code=?`, code)
	if err != nil {
		return fmt.Errorf("failed to delete account %s: %w", code, err)
	}
	return nil
}

// FetchAccounts returns all accounts ordered by code, optionally
// filtered by a code prefix ("6" lists expense accounts).
func FetchAccounts(conn *db.Connection, prefix string) ([]Account, error) {
	query := `SELECT code, name, parent_code FROM accounts`
	var args []interface{}
	if prefix != "" {
		query += ` WHERE code LIKE ?`
		args = append(args, prefix+"%")
	}
	query += ` ORDER BY code`

	rows, err := conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.Code, &a.Name, &a.ParentCode); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// EnsureAccountTx creates a stub account row if the code is missing, so
// a posting never fails for lack of an account name.
func EnsureAccountTx(tx *sql.Tx, code string) error {
	_, err := tx.Exec(`INSERT OR IGNORE INTO accounts(code, name) VALUES (?, '')`, code)
	if err != nil {
		return fmt.Errorf("failed to ensure account %s: %w", code, err)
	}
	return nil
}

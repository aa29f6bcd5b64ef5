// Package ledger implements the double-entry bookkeeping primitives:
// balanced journal entries, per-journal document sequences and the chart
// of accounts.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/moteur-compta/moteur/pkg/db"
)

// ErrUnbalanced is returned when an entry's debits and credits do not
// match at commit time.
var ErrUnbalanced = errors.New("entry not balanced")

// ErrEntryNotFound is returned when an entry id does not exist.
var ErrEntryNotFound = errors.New("entry not found")

// Line is one side of a journal entry. Debit and credit are both
// non-negative; a well-formed line uses only one of them.
type Line struct {
	Account     string
	Debit       float64
	Credit      float64
	Description string
}

// Entry is a journal entry header.
type Entry struct {
	ID      int64
	Journal string
	Ref     string
	Date    string // YYYY-MM-DD
	Memo    string
}

// CreateEntry creates a journal entry with its lines in its own
// transaction and returns the new entry id. Workflows that pair an entry
// with other writes use CreateEntryTx inside their own transaction
// instead, so an unbalanced entry rolls everything back.
func CreateEntry(conn *db.Connection, journal, date, ref, memo string, lines []Line) (int64, error) {
	var entryID int64
	err := conn.Transaction(func(tx *sql.Tx) error {
		var err error
		entryID, err = CreateEntryTx(tx, journal, date, ref, memo, lines)
		return err
	})
	if err != nil {
		return 0, err
	}
	return entryID, nil
}

// CreateEntryTx inserts an entry header and its lines within tx, then
// validates the balance invariant: round(sum(debit) - sum(credit), 2)
// must be zero. On violation it returns ErrUnbalanced and the caller's
// transaction must roll back.
func CreateEntryTx(tx *sql.Tx, journal, date, ref, memo string, lines []Line) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO entries (journal, ref, date, memo) VALUES (?,?,?,?)`,
		journal, ref, date, memo,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert entry: %w", err)
	}

	entryID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get entry id: %w", err)
	}

	for _, line := range lines {
		_, err := tx.Exec(
			`INSERT INTO entry_lines (entry_id, account, debit, credit, description) VALUES (?,?,?,?,?)`,
			entryID, line.Account, line.Debit, line.Credit, nullString(line.Description),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert entry line: %w", err)
		}
	}

	balanced, err := checkBalanced(tx, entryID)
	if err != nil {
		return 0, err
	}
	if !balanced {
		return 0, fmt.Errorf("entry %d (%s %s): %w", entryID, journal, ref, ErrUnbalanced)
	}

	return entryID, nil
}

// IsBalanced recomputes the balance check for an existing entry,
// independently of how it was created.
func IsBalanced(conn *db.Connection, entryID int64) (bool, error) {
	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM entries WHERE id=?`, entryID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to look up entry: %w", err)
	}
	if count == 0 {
		return false, fmt.Errorf("entry %d: %w", entryID, ErrEntryNotFound)
	}

	rows, err := conn.Query(`SELECT debit, credit FROM entry_lines WHERE entry_id=?`, entryID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch entry lines: %w", err)
	}
	defer rows.Close()

	return sumBalanced(rows)
}

// checkBalanced reads the entry's lines back within tx and verifies the
// invariant against what was actually persisted.
func checkBalanced(tx *sql.Tx, entryID int64) (bool, error) {
	rows, err := tx.Query(`SELECT debit, credit FROM entry_lines WHERE entry_id=?`, entryID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch entry lines: %w", err)
	}
	defer rows.Close()

	return sumBalanced(rows)
}

// sumBalanced folds debit-credit over the rows with 2-decimal rounding
// to absorb floating-point noise.
func sumBalanced(rows *sql.Rows) (bool, error) {
	sum := decimal.Zero
	for rows.Next() {
		var debit, credit float64
		if err := rows.Scan(&debit, &credit); err != nil {
			return false, fmt.Errorf("failed to scan entry line: %w", err)
		}
		sum = sum.Add(decimal.NewFromFloat(debit)).Sub(decimal.NewFromFloat(credit))
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	return sum.Round(2).IsZero(), nil
}

// DeleteEntryByRefTx deletes the entry matching (journal, ref) and its
// lines within tx. Missing entries are not an error; it reports whether
// an entry was deleted.
func DeleteEntryByRefTx(tx *sql.Tx, journal, ref string) (bool, error) {
	var entryID int64
	err := tx.QueryRow(
		`SELECT id FROM entries WHERE journal=? AND ref=?`, journal, ref,
	).Scan(&entryID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up entry %s/%s: %w", journal, ref, err)
	}

	if _, err := tx.Exec(`DELETE FROM entry_lines WHERE entry_id=?`, entryID); err != nil {
		return false, fmt.Errorf("failed to delete entry lines: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM entries WHERE id=?`, entryID); err != nil {
		return false, fmt.Errorf("failed to delete entry: %w", err)
	}
	return true, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

package ledger

import (
	"database/sql"
	"fmt"
)

// NextSequence allocates the next document number for (journal, fiscal
// year) and returns it formatted as {journal}{YY}{NNNNN}, e.g. "AC" for
// 2025 starts at "AC2500001". The counter is created lazily on first use
// and the read-increment-write runs inside the caller's transaction, so
// concurrent allocations for the same key serialize through SQLite's
// locking and a failed increment aborts the allocation.
func NextSequence(tx *sql.Tx, journal string, fiscalYear int) (string, error) {
	var next int
	err := tx.QueryRow(
		`SELECT next_number FROM sequences WHERE journal=? AND fiscal_year=?`,
		journal, fiscalYear,
	).Scan(&next)

	switch {
	case err == sql.ErrNoRows:
		next = 1
		_, err = tx.Exec(
			`INSERT INTO sequences (journal, fiscal_year, next_number) VALUES (?,?,?)`,
			journal, fiscalYear, next+1,
		)
		if err != nil {
			return "", fmt.Errorf("failed to create sequence %s/%d: %w", journal, fiscalYear, err)
		}
	case err != nil:
		return "", fmt.Errorf("failed to read sequence %s/%d: %w", journal, fiscalYear, err)
	default:
		_, err = tx.Exec(
			`UPDATE sequences SET next_number=? WHERE journal=? AND fiscal_year=?`,
			next+1, journal, fiscalYear,
		)
		if err != nil {
			return "", fmt.Errorf("failed to increment sequence %s/%d: %w", journal, fiscalYear, err)
		}
	}

	return FormatPiece(journal, fiscalYear, next), nil
}

// FormatPiece renders a document number: journal tag, last two digits of
// the fiscal year, then the counter zero-padded to five digits.
func FormatPiece(journal string, fiscalYear, number int) string {
	return fmt.Sprintf("%s%02d%05d", journal, fiscalYear%100, number)
}

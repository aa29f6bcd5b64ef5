package ledger

import (
	"fmt"

	"github.com/moteur-compta/moteur/pkg/db"
)

// CloseFiscalYear marks a fiscal year as closed. This records the flag
// only; no closing entries are generated.
func CloseFiscalYear(conn *db.Connection, year int) error {
	_, err := conn.Exec(`INSERT OR IGNORE INTO closed_years(year) VALUES (?)`, year)
	if err != nil {
		return fmt.Errorf("failed to close fiscal year %d: %w", year, err)
	}
	return nil
}

// IsFiscalYearClosed reports whether a fiscal year has been marked closed.
func IsFiscalYearClosed(conn *db.Connection, year int) (bool, error) {
	var count int
	err := conn.QueryRow(`SELECT COUNT(*) FROM closed_years WHERE year=?`, year).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check fiscal year %d: %w", year, err)
	}
	return count > 0, nil
}

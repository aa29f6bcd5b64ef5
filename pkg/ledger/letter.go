package ledger

import (
	"fmt"
	"strings"

	"github.com/moteur-compta/moteur/pkg/db"
)

// ApplyLetter assigns a reconciliation letter code to every line of the
// given entries, marking them as matched against an external statement.
func ApplyLetter(conn *db.Connection, code string, entryIDs []int64) error {
	if len(entryIDs) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(entryIDs)), ",")
	args := make([]interface{}, 0, len(entryIDs)+1)
	args = append(args, code)
	for _, id := range entryIDs {
		args = append(args, id)
	}

	_, err := conn.Exec(
		fmt.Sprintf(`UPDATE entry_lines SET letter_code=? WHERE entry_id IN (%s)`, placeholders),
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to apply letter %s: %w", code, err)
	}
	return nil
}

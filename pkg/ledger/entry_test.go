package ledger

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moteur-compta/moteur/pkg/db"
)

func openTestDB(t *testing.T) *db.Connection {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "compta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestCreateEntryBalanced(t *testing.T) {
	conn := openTestDB(t)

	entryID, err := CreateEntry(conn, "ACH", "2025-01-05", "INV1", "Fournitures", []Line{
		{Account: "601", Debit: 100},
		{Account: "44566", Debit: 20},
		{Account: "401", Credit: 120},
	})
	require.NoError(t, err)
	assert.Greater(t, entryID, int64(0))

	balanced, err := IsBalanced(conn, entryID)
	require.NoError(t, err)
	assert.True(t, balanced)
}

func TestCreateEntryUnbalancedRejected(t *testing.T) {
	conn := openTestDB(t)

	_, err := CreateEntry(conn, "ACH", "2025-01-05", "INV1", "Bad", []Line{
		{Account: "601", Debit: 100},
		{Account: "401", Credit: 90},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnbalanced))

	// Nothing may be persisted, header or lines.
	var entries, lines int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&entries))
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM entry_lines`).Scan(&lines))
	assert.Equal(t, 0, entries)
	assert.Equal(t, 0, lines)
}

func TestCreateEntryAbsorbsFloatNoise(t *testing.T) {
	conn := openTestDB(t)

	// 0.1+0.2 style float noise must not fail the 2-decimal balance check.
	entryID, err := CreateEntry(conn, "OD", "2025-01-05", "", "", []Line{
		{Account: "601", Debit: 0.1},
		{Account: "601", Debit: 0.2},
		{Account: "401", Credit: 0.3},
	})
	require.NoError(t, err)

	balanced, err := IsBalanced(conn, entryID)
	require.NoError(t, err)
	assert.True(t, balanced)
}

func TestIsBalancedUnknownEntry(t *testing.T) {
	conn := openTestDB(t)

	_, err := IsBalanced(conn, 999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEntryNotFound))
}

func TestDeleteEntryByRef(t *testing.T) {
	conn := openTestDB(t)

	entryID, err := CreateEntry(conn, "ACH", "2025-01-05", "INV1", "Fournitures", []Line{
		{Account: "601", Debit: 100},
		{Account: "401", Credit: 100},
	})
	require.NoError(t, err)

	var deleted bool
	err = conn.Transaction(func(tx *sql.Tx) error {
		var err error
		deleted, err = DeleteEntryByRefTx(tx, "ACH", "INV1")
		return err
	})
	require.NoError(t, err)
	assert.True(t, deleted)

	var lines int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM entry_lines WHERE entry_id=?`, entryID).Scan(&lines))
	assert.Equal(t, 0, lines)

	// Deleting a missing entry is not an error.
	err = conn.Transaction(func(tx *sql.Tx) error {
		var err error
		deleted, err = DeleteEntryByRefTx(tx, "ACH", "INV1")
		return err
	})
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestApplyLetter(t *testing.T) {
	conn := openTestDB(t)

	entryID, err := CreateEntry(conn, "BQ", "2025-01-05", "INV1", "", []Line{
		{Account: "401", Debit: 100},
		{Account: "512", Credit: 100},
	})
	require.NoError(t, err)

	require.NoError(t, ApplyLetter(conn, "A", []int64{entryID}))

	var lettered int
	require.NoError(t, conn.QueryRow(
		`SELECT COUNT(*) FROM entry_lines WHERE entry_id=? AND letter_code='A'`, entryID,
	).Scan(&lettered))
	assert.Equal(t, 2, lettered)
}

func TestCloseFiscalYear(t *testing.T) {
	conn := openTestDB(t)

	closed, err := IsFiscalYearClosed(conn, 2024)
	require.NoError(t, err)
	assert.False(t, closed)

	require.NoError(t, CloseFiscalYear(conn, 2024))
	require.NoError(t, CloseFiscalYear(conn, 2024)) // idempotent

	closed, err = IsFiscalYearClosed(conn, 2024)
	require.NoError(t, err)
	assert.True(t, closed)
}

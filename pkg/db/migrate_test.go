package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// legacySchema is the purchases shape of the previous release: separate
// invoice number and stored HT/VAT amounts.
const legacySchema = `
CREATE TABLE suppliers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);
CREATE TABLE purchases (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL,
    invoice_number TEXT NOT NULL,
    supplier_id INTEGER NOT NULL,
    label TEXT NOT NULL,
    ht_amount REAL NOT NULL,
    vat_amount REAL NOT NULL,
    vat_rate REAL NOT NULL,
    account_code TEXT NOT NULL,
    due_date TEXT NOT NULL,
    payment_status TEXT NOT NULL
);
CREATE UNIQUE INDEX unq_supplier_invoice ON purchases(supplier_id, invoice_number);
CREATE TRIGGER trg_purchase_vat
BEFORE INSERT ON purchases
FOR EACH ROW
BEGIN
  SELECT CASE
    WHEN ROUND(NEW.ht_amount * NEW.vat_rate / 100, 2) <> NEW.vat_amount
    THEN RAISE(FAIL, 'VAT amount inconsistent with HT x rate')
  END;
END;
`

func createLegacyDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.db")

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer raw.Close()

	_, err = raw.Exec(legacySchema)
	require.NoError(t, err)

	_, err = raw.Exec(`INSERT INTO suppliers (name) VALUES ('Test')`)
	require.NoError(t, err)
	_, err = raw.Exec(`
		INSERT INTO purchases (
			date, invoice_number, supplier_id, label, ht_amount, vat_amount,
			vat_rate, account_code, due_date, payment_status
		) VALUES ('2024-01-05', 'INV1', 1, 'Test', 100, 20, 20, '601', '2024-02-05', 'A_PAYER')`)
	require.NoError(t, err)

	return path
}

func TestMigrateRebuildsCurrentShape(t *testing.T) {
	path := createLegacyDB(t)

	conn, err := Open(path)
	require.NoError(t, err)
	defer conn.Close()

	var (
		id     int64
		piece  string
		ttc    float64
		status string
	)
	err = conn.QueryRow(`SELECT id, piece, ttc_amount, payment_status FROM purchases WHERE piece='INV1'`).
		Scan(&id, &piece, &ttc, &status)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, "INV1", piece)
	assert.Equal(t, 120.0, ttc)
	assert.Equal(t, "A_PAYER", status)

	// The legacy columns and their NOT NULL constraints are gone.
	cols, err := tableColumns(conn, "purchases")
	require.NoError(t, err)
	assert.False(t, cols["invoice_number"])
	assert.False(t, cols["ht_amount"])
	assert.False(t, cols["vat_amount"])
	assert.True(t, cols["is_invoice_received"])
}

func TestMigrateDropsLegacyObjects(t *testing.T) {
	path := createLegacyDB(t)

	conn, err := Open(path)
	require.NoError(t, err)
	defer conn.Close()

	var count int
	err = conn.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE name IN ('trg_purchase_vat', 'trg_purchase_vat_up', 'unq_supplier_invoice')`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	err = conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE name='unq_supplier_piece'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMigrateIdempotent(t *testing.T) {
	path := createLegacyDB(t)

	conn, err := Open(path)
	require.NoError(t, err)
	defer conn.Close()

	colsBefore, err := tableColumns(conn, "purchases")
	require.NoError(t, err)

	// Running migration again must change nothing.
	require.NoError(t, Migrate(conn))

	colsAfter, err := tableColumns(conn, "purchases")
	require.NoError(t, err)
	assert.Equal(t, colsBefore, colsAfter)

	var ttc float64
	err = conn.QueryRow(`SELECT ttc_amount FROM purchases WHERE piece='INV1'`).Scan(&ttc)
	require.NoError(t, err)
	assert.Equal(t, 120.0, ttc)
}

func TestMigrateFreshDatabaseNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.db")

	conn, err := Open(path)
	require.NoError(t, err)
	defer conn.Close()

	// Open already ran Migrate + InitializeSchema; both must be safe to
	// repeat on every startup.
	require.NoError(t, Migrate(conn))
	require.NoError(t, InitializeSchema(conn))

	cols, err := tableColumns(conn, "purchases")
	require.NoError(t, err)
	assert.True(t, cols["piece"])
	assert.True(t, cols["ttc_amount"])
	assert.False(t, cols["invoice_number"])
}

func TestTransactionRollsBackOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tx.db")

	conn, err := Open(path)
	require.NoError(t, err)
	defer conn.Close()

	err = conn.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO accounts (code, name) VALUES ('601', 'Achats')`); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	var count int
	err = conn.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

package purchase

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moteur-compta/moteur/pkg/db"
)

// openMigratedDB builds a database with the previous release's purchases
// shape, one recorded purchase included, and opens it through db.Open so
// the migration runs.
func openMigratedDB(t *testing.T) *db.Connection {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.db")

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(`
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
		INSERT INTO suppliers (name) VALUES ('Test');
		INSERT INTO purchases (
		    date, invoice_number, supplier_id, label, ht_amount, vat_amount,
		    vat_rate, account_code, due_date, payment_status
		) VALUES ('2024-01-05', 'INV1', 1, 'Ancien', 100, 20, 20, '601', '2024-02-05', 'A_PAYER');
	`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	conn, err := db.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestAddAfterMigration(t *testing.T) {
	conn := openMigratedDB(t)
	svc := NewService(conn, DefaultPolicy())

	p := testPurchase()
	p.Piece = "INV2"
	id, err := svc.Add(p)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	// Both the migrated row and the new one are readable.
	all, err := svc.Fetch(Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "INV1", all[0].Piece)
	assert.Equal(t, 120.0, all[0].TTCAmount)
	assert.Equal(t, "INV2", all[1].Piece)

	count, debit, credit := entrySums(t, conn, "ACH", "INV2")
	assert.Equal(t, 1, count)
	assert.Equal(t, 120.0, debit)
	assert.Equal(t, 120.0, credit)
}

func TestPayAfterMigration(t *testing.T) {
	conn := openMigratedDB(t)
	svc := NewService(conn, DefaultPolicy())

	var id int64
	require.NoError(t, conn.QueryRow(`SELECT id FROM purchases WHERE piece='INV1'`).Scan(&id))

	require.NoError(t, svc.Pay(id, "2024-02-01", "VIR", 120))

	var status string
	require.NoError(t, conn.QueryRow(`SELECT payment_status FROM purchases WHERE id=?`, id).Scan(&status))
	assert.Equal(t, string(StatusPaid), status)
}

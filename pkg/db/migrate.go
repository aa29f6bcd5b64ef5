package db

import (
	"database/sql"
	"fmt"
)

// Migrate upgrades a database created by an older release to the current
// purchases shape. The legacy table stored invoice_number, ht_amount and
// vat_amount with NOT NULL constraints, so the current shape cannot be
// reached by adding columns alone: the table is rebuilt. A table with the
// current shape is created under a scratch name, every row is copied into
// it (piece = invoice_number, ttc_amount = ht_amount + vat_amount,
// columns the legacy shape lacks take their defaults), then the legacy
// table is dropped, which also removes its VAT triggers and the old
// unique index, and the rebuilt table takes its name.
//
// No row is lost and running it repeatedly is a no-op.
func Migrate(conn *Connection) error {
	exists, err := tableExists(conn, "purchases")
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	cols, err := tableColumns(conn, "purchases")
	if err != nil {
		return err
	}
	if !cols["invoice_number"] {
		return nil
	}

	suppliersExist, err := tableExists(conn, "suppliers")
	if err != nil {
		return err
	}
	var supplierCols map[string]bool
	if suppliersExist {
		if supplierCols, err = tableColumns(conn, "suppliers"); err != nil {
			return err
		}
	}

	// A partially upgraded table may already carry piece or ttc_amount;
	// prefer those values and fall back to the legacy columns.
	pieceExpr := "invoice_number"
	if cols["piece"] {
		pieceExpr = "COALESCE(piece, invoice_number)"
	}
	ttcExpr := "ROUND(ht_amount + vat_amount, 2)"
	if cols["ttc_amount"] {
		ttcExpr = "COALESCE(ttc_amount, " + ttcExpr + ")"
	}

	return conn.Transaction(func(tx *sql.Tx) error {
		// Parent tables must exist before rows are copied into the
		// rebuilt table, since the copy enforces the foreign keys.
		if _, err := tx.Exec(Schema); err != nil {
			return fmt.Errorf("failed to create parent tables: %w", err)
		}
		if suppliersExist {
			for _, col := range []string{"vat_number", "address", "created_at"} {
				if supplierCols[col] {
					continue
				}
				if _, err := tx.Exec(fmt.Sprintf(`ALTER TABLE suppliers ADD COLUMN %s TEXT`, col)); err != nil {
					return fmt.Errorf("failed to add suppliers.%s: %w", col, err)
				}
			}
		}
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO accounts(code, name) SELECT DISTINCT account_code, '' FROM purchases`,
		); err != nil {
			return fmt.Errorf("failed to create stub accounts: %w", err)
		}

		if _, err := tx.Exec(fmt.Sprintf(purchasesTable, "purchases_migrated")); err != nil {
			return fmt.Errorf("failed to create rebuilt purchases table: %w", err)
		}

		copyStmt := fmt.Sprintf(`
			INSERT INTO purchases_migrated (
				id, date, piece, supplier_id, label, ttc_amount, vat_rate,
				account_code, due_date, payment_status, payment_date,
				payment_method, is_advance, is_invoice_received,
				attachment_path, created_by, updated_at
			)
			SELECT id, date, %s, supplier_id, label, %s, vat_rate,
			       account_code, due_date, payment_status, %s, %s, %s, %s,
			       %s, %s, %s
			FROM purchases`,
			pieceExpr,
			ttcExpr,
			legacyExpr(cols, "payment_date", "NULL"),
			legacyExpr(cols, "payment_method", "NULL"),
			legacyExpr(cols, "is_advance", "0"),
			legacyExpr(cols, "is_invoice_received", "1"),
			legacyExpr(cols, "attachment_path", "NULL"),
			legacyExpr(cols, "created_by", "NULL"),
			legacyExpr(cols, "updated_at", "CURRENT_TIMESTAMP"),
		)
		if _, err := tx.Exec(copyStmt); err != nil {
			return fmt.Errorf("failed to copy purchases: %w", err)
		}

		// Dropping the legacy table also drops its VAT triggers and the
		// unq_supplier_invoice index.
		if _, err := tx.Exec(`DROP TABLE purchases`); err != nil {
			return fmt.Errorf("failed to drop legacy purchases table: %w", err)
		}
		if _, err := tx.Exec(`ALTER TABLE purchases_migrated RENAME TO purchases`); err != nil {
			return fmt.Errorf("failed to rename rebuilt purchases table: %w", err)
		}
		if _, err := tx.Exec(purchasesIndexes); err != nil {
			return fmt.Errorf("failed to create purchases indexes: %w", err)
		}
		return nil
	})
}

// legacyExpr picks the copy expression for an optional column: the
// column itself when the legacy table already has it, the fallback
// otherwise.
func legacyExpr(cols map[string]bool, name, fallback string) string {
	if cols[name] {
		return name
	}
	return fallback
}

// tableExists reports whether a table is present in the database.
func tableExists(conn *Connection, name string) (bool, error) {
	var count int
	err := conn.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return count > 0, nil
}

// tableColumns returns the set of column names of a table.
func tableColumns(conn *Connection, name string) (map[string]bool, error) {
	rows, err := conn.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			colName    string
			colType    string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		cols[colName] = true
	}
	return cols, rows.Err()
}

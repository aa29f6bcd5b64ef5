// Package db provides SQLite storage for the double-entry bookkeeping core:
// accounts, journal entries and their lines, document sequences, suppliers
// and purchases.
package db

import "fmt"

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Chart of accounts. Codes follow the French plan comptable
-- ("601", "44566", ...). parent_code gives an optional hierarchy.
CREATE TABLE IF NOT EXISTS accounts (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    parent_code TEXT REFERENCES accounts(code)
);

-- Journal entry headers. journal is a short tag grouping entries by
-- source process ('ACH' purchases, 'BQ' bank). ref carries the piece
-- (document) number.
CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    journal TEXT NOT NULL,
    ref TEXT,
    date TEXT NOT NULL,               -- YYYY-MM-DD
    memo TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Entry lines. Owned by their entry; letter_code tags lines reconciled
-- against an external statement.
CREATE TABLE IF NOT EXISTS entry_lines (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_id INTEGER NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
    account TEXT NOT NULL,
    debit REAL NOT NULL DEFAULT 0 CHECK(debit>=0),
    credit REAL NOT NULL DEFAULT 0 CHECK(credit>=0),
    description TEXT,
    letter_code TEXT
);

-- Document number counters, one per (journal, fiscal year).
CREATE TABLE IF NOT EXISTS sequences (
    journal TEXT NOT NULL,
    fiscal_year INTEGER NOT NULL,
    next_number INTEGER NOT NULL,
    PRIMARY KEY (journal, fiscal_year)
);

CREATE TABLE IF NOT EXISTS suppliers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    vat_number TEXT,
    address TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Fiscal years marked closed. Closing is a flag only, not a closing
-- entry process.
CREATE TABLE IF NOT EXISTS closed_years (
    year INTEGER PRIMARY KEY
);

CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(date);
CREATE INDEX IF NOT EXISTS idx_entries_ref ON entries(ref);
CREATE INDEX IF NOT EXISTS idx_el_account ON entry_lines(account);
`

// purchasesTable is the current purchases shape: the TTC (tax-inclusive)
// amount is authoritative and HT/VAT are derived from it and vat_rate
// when needed. The table name is a parameter so the migration can
// instantiate the same shape under a scratch name when rebuilding a
// legacy table.
const purchasesTable = `
CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL,
    piece TEXT NOT NULL,
    supplier_id INTEGER NOT NULL REFERENCES suppliers(id),
    label TEXT NOT NULL,
    ttc_amount REAL NOT NULL CHECK(ttc_amount >= 0),
    vat_rate REAL NOT NULL CHECK(vat_rate IN (0,2.1,5.5,10,20)),
    account_code TEXT NOT NULL REFERENCES accounts(code),
    due_date TEXT NOT NULL,
    payment_status TEXT NOT NULL CHECK(
        payment_status IN ('A_PAYER','PAYE','PARTIEL')
    ),
    payment_date TEXT,
    payment_method TEXT,
    is_advance INTEGER DEFAULT 0 CHECK(is_advance IN (0,1)),
    is_invoice_received INTEGER DEFAULT 1 CHECK(is_invoice_received IN (0,1)),
    attachment_path TEXT,
    created_by TEXT,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);
`

const purchasesIndexes = `
CREATE UNIQUE INDEX IF NOT EXISTS unq_supplier_piece
    ON purchases(supplier_id, piece);
CREATE INDEX IF NOT EXISTS idx_purchases_date ON purchases(date);
CREATE INDEX IF NOT EXISTS idx_purchases_supplier ON purchases(supplier_id);
`

// InitializeSchema initializes the database schema.
// It creates all tables and indexes if they don't exist.
func InitializeSchema(conn *Connection) error {
	stmts := []string{
		Schema,
		fmt.Sprintf(purchasesTable, "purchases"),
		purchasesIndexes,
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

package purchase

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/moteur-compta/moteur/pkg/db"
)

// ErrSupplierNotFound is returned when a supplier id does not exist.
var ErrSupplierNotFound = errors.New("supplier not found")

// Supplier identifies a trade counterparty. Suppliers are referenced by
// purchases and are never cascade-deleted.
type Supplier struct {
	ID        int64
	Name      string
	VATNumber string
	Address   string
}

// AddSupplier inserts a supplier and returns its id.
func AddSupplier(conn *db.Connection, s Supplier) (int64, error) {
	res, err := conn.Exec(
		`INSERT INTO suppliers (name, vat_number, address) VALUES (?,?,?)`,
		s.Name, nullString(s.VATNumber), nullString(s.Address),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to add supplier: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get supplier id: %w", err)
	}
	return id, nil
}

// UpdateSupplier updates a supplier's details.
func UpdateSupplier(conn *db.Connection, s Supplier) error {
	res, err := conn.Exec(
		`UPDATE suppliers SET name=?, vat_number=?, address=? WHERE id=?`,
		s.Name, nullString(s.VATNumber), nullString(s.Address), s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update supplier: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("supplier %d: %w", s.ID, ErrSupplierNotFound)
	}
	return nil
}

// DeleteSupplier removes a supplier. Fails if purchases still reference
// it, since the foreign key is enforced.
func DeleteSupplier(conn *db.Connection, id int64) error {
	_, err := conn.Exec(`DELETE FROM suppliers WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete supplier %d: %w", id, err)
	}
	return nil
}

// GetSupplier returns one supplier by id.
func GetSupplier(conn *db.Connection, id int64) (Supplier, error) {
	var (
		s         Supplier
		vatNumber sql.NullString
		address   sql.NullString
	)
	err := conn.QueryRow(
		`SELECT id, name, vat_number, address FROM suppliers WHERE id=?`, id,
	).Scan(&s.ID, &s.Name, &vatNumber, &address)
	if err == sql.ErrNoRows {
		return Supplier{}, fmt.Errorf("supplier %d: %w", id, ErrSupplierNotFound)
	}
	if err != nil {
		return Supplier{}, fmt.Errorf("failed to get supplier %d: %w", id, err)
	}
	s.VATNumber = vatNumber.String
	s.Address = address.String
	return s, nil
}

// FetchSuppliers returns all suppliers ordered by name.
func FetchSuppliers(conn *db.Connection) ([]Supplier, error) {
	rows, err := conn.Query(`SELECT id, name, vat_number, address FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var (
			s         Supplier
			vatNumber sql.NullString
			address   sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Name, &vatNumber, &address); err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		s.VATNumber = vatNumber.String
		s.Address = address.String
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

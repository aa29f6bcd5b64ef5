package purchase

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a purchase id does not exist.
var ErrNotFound = errors.New("purchase not found")

// ErrDuplicatePiece is returned when a purchase reuses a document number
// already recorded for the same supplier.
var ErrDuplicatePiece = errors.New("duplicate document number for this supplier")

// ErrIDRequired is returned when an update is attempted without an id.
var ErrIDRequired = errors.New("purchase id required")

// isUniqueViolation reports whether err is a SQLite unique constraint
// violation, so the store-enforced (supplier_id, piece) uniqueness can be
// surfaced as a recognizable error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

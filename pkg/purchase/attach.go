package purchase

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/moteur-compta/moteur/pkg/pathutil"
)

// Attach copies a document (invoice scan, receipt) into the attachments
// store, grouped under the purchase's piece number, and records its path
// on the purchase row. Returns the stored path.
func (s *Service) Attach(purchaseID int64, srcPath string, paths *pathutil.PathResolver) (string, error) {
	var piece string
	err := s.conn.QueryRow(`SELECT piece FROM purchases WHERE id=?`, purchaseID).Scan(&piece)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("purchase %d: %w", purchaseID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load purchase: %w", err)
	}

	dest := paths.AttachmentPath(piece, srcPath)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create attachment directory: %w", err)
	}
	if err := copyFile(srcPath, dest); err != nil {
		return "", err
	}

	_, err = s.conn.Exec(
		`UPDATE purchases SET attachment_path=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`,
		dest, purchaseID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record attachment: %w", err)
	}
	return dest, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open attachment: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create attachment copy: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy attachment: %w", err)
	}
	return out.Close()
}

// Package pathutil provides centralized path management for the compta
// data directory: the database file and purchase attachments.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathResolver manages paths under the compta data root.
type PathResolver struct {
	dataRoot       string
	databasePath   string
	attachmentsDir string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// DataRoot is the root directory for compta data (e.g. ~/compta)
	DataRoot string
	// DatabasePath is the path to the SQLite database file
	DatabasePath string
	// AttachmentsDir is the directory for invoice documents
	AttachmentsDir string
}

// New creates a new PathResolver with the given configuration.
// If DatabasePath is empty, it defaults to {DataRoot}/compta.db.
// If AttachmentsDir is empty, it defaults to {DataRoot}/attachments.
func New(config Config) *PathResolver {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.DataRoot, "compta.db")
	}

	attachmentsDir := config.AttachmentsDir
	if attachmentsDir == "" {
		attachmentsDir = filepath.Join(config.DataRoot, "attachments")
	}

	return &PathResolver{
		dataRoot:       config.DataRoot,
		databasePath:   dbPath,
		attachmentsDir: attachmentsDir,
	}
}

// GetDataRoot returns the data root directory.
func (p *PathResolver) GetDataRoot() string {
	return p.dataRoot
}

// GetDatabasePath returns the database file path.
func (p *PathResolver) GetDatabasePath() string {
	return p.databasePath
}

// GetAttachmentsDir returns the attachments directory.
func (p *PathResolver) GetAttachmentsDir() string {
	return p.attachmentsDir
}

// AttachmentPath returns the storage path for a purchase document,
// grouped per piece number.
func (p *PathResolver) AttachmentPath(piece, filename string) string {
	return filepath.Join(p.attachmentsDir, piece, filepath.Base(filename))
}

// EnsureDirs creates the data root and attachments directory if needed.
func (p *PathResolver) EnsureDirs() error {
	for _, dir := range []string{p.dataRoot, p.attachmentsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

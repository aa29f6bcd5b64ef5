package report

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/moteur-compta/moteur/pkg/db"
)

// fecHeader is the fixed 7-column header of the FEC-style export. The
// format is a tax-authority file contract and must not change: one
// semicolon-delimited row per entry line, amounts with two decimals.
var fecHeader = []string{
	"JournalCode",
	"EcritureNum",
	"EcritureDate",
	"CompteNum",
	"Libelle",
	"Debit",
	"Credit",
}

// ExportFEC writes all entries of a fiscal year to w in the FEC-style
// format. EcritureNum is the composite {entry id}-{line number}; the
// label falls back to the entry ref when a line has no description.
func ExportFEC(conn *db.Connection, year int, w io.Writer) error {
	bw := bufio.NewWriter(w)

	for i, col := range fecHeader {
		if i > 0 {
			if _, err := bw.WriteString(";"); err != nil {
				return fmt.Errorf("failed to write FEC header: %w", err)
			}
		}
		if _, err := bw.WriteString(col); err != nil {
			return fmt.Errorf("failed to write FEC header: %w", err)
		}
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write FEC header: %w", err)
	}

	entries, err := conn.Query(
		`SELECT id, journal, ref, date FROM entries WHERE substr(date,1,4)=? ORDER BY id`,
		fmt.Sprintf("%04d", year),
	)
	if err != nil {
		return fmt.Errorf("failed to fetch entries for year %d: %w", year, err)
	}
	defer entries.Close()

	for entries.Next() {
		var (
			entryID int64
			journal string
			ref     sql.NullString
			date    string
		)
		if err := entries.Scan(&entryID, &journal, &ref, &date); err != nil {
			return fmt.Errorf("failed to scan entry: %w", err)
		}
		if err := writeEntryLines(conn, bw, entryID, journal, ref.String, date); err != nil {
			return err
		}
	}
	if err := entries.Err(); err != nil {
		return err
	}

	return bw.Flush()
}

// ExportFECFile writes the export of a fiscal year to a file.
func ExportFECFile(conn *db.Connection, year int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create FEC file: %w", err)
	}
	defer f.Close()

	if err := ExportFEC(conn, year, f); err != nil {
		return err
	}
	return f.Close()
}

func writeEntryLines(conn *db.Connection, bw *bufio.Writer, entryID int64, journal, ref, date string) error {
	lines, err := conn.Query(
		`SELECT account, debit, credit, description FROM entry_lines WHERE entry_id=? ORDER BY id`,
		entryID,
	)
	if err != nil {
		return fmt.Errorf("failed to fetch lines of entry %d: %w", entryID, err)
	}
	defer lines.Close()

	lineNum := 1
	for lines.Next() {
		var (
			account     string
			debit       float64
			credit      float64
			description sql.NullString
		)
		if err := lines.Scan(&account, &debit, &credit, &description); err != nil {
			return fmt.Errorf("failed to scan entry line: %w", err)
		}

		label := description.String
		if label == "" {
			label = ref
		}

		_, err := fmt.Fprintf(bw, "%s;%d-%d;%s;%s;%s;%.2f;%.2f\n",
			journal, entryID, lineNum, date, account, label, debit, credit)
		if err != nil {
			return fmt.Errorf("failed to write FEC row: %w", err)
		}
		lineNum++
	}
	return lines.Err()
}

package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFECRowCount(t *testing.T) {
	conn, svc := newTestLedger(t)

	// One purchase posts three lines (HT, VAT, counter-account).
	addPurchase(t, svc, "2024-01-05", "INV1", 1, 100)

	var buf bytes.Buffer
	require.NoError(t, ExportFEC(conn, 2024, &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4) // header + 3 rows
	assert.Equal(t, "JournalCode;EcritureNum;EcritureDate;CompteNum;Libelle;Debit;Credit", lines[0])
}

func TestExportFECRowFormat(t *testing.T) {
	conn, svc := newTestLedger(t)

	addPurchase(t, svc, "2024-01-05", "INV1", 1, 100)

	var entryID int64
	require.NoError(t, conn.QueryRow(`SELECT id FROM entries WHERE ref='INV1'`).Scan(&entryID))

	var buf bytes.Buffer
	require.NoError(t, ExportFEC(conn, 2024, &buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)

	// Lines without a description fall back to the entry ref as label.
	assert.Equal(t, fmt.Sprintf("ACH;%d-1;2024-01-05;606300;INV1;100.00;0.00", entryID), lines[1])
	assert.Equal(t, fmt.Sprintf("ACH;%d-2;2024-01-05;44566;INV1;0.00;0.00", entryID), lines[2])
	assert.Equal(t, fmt.Sprintf("ACH;%d-3;2024-01-05;401;INV1;0.00;100.00", entryID), lines[3])
}

func TestExportFECFiltersByYear(t *testing.T) {
	conn, svc := newTestLedger(t)

	addPurchase(t, svc, "2024-01-05", "INV1", 1, 100)
	addPurchase(t, svc, "2025-01-05", "INV2", 1, 50)

	var buf bytes.Buffer
	require.NoError(t, ExportFEC(conn, 2025, &buf))

	out := buf.String()
	assert.NotContains(t, out, "INV1")
	assert.Contains(t, out, "INV2")
}

func TestExportFECFile(t *testing.T) {
	conn, svc := newTestLedger(t)

	addPurchase(t, svc, "2024-01-05", "INV1", 1, 100)

	dest := filepath.Join(t.TempDir(), "fec.csv")
	require.NoError(t, ExportFECFile(conn, 2024, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(data), "\n"))
}

package purchase

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moteur-compta/moteur/pkg/db"
	"github.com/moteur-compta/moteur/pkg/ledger"
)

// Journal codes used by the workflow.
const (
	JournalPurchases = "ACH" // purchase entries
	JournalBank      = "BQ"  // payment entries
	SequenceJournal  = "AC"  // document number sequence key
)

// EventKind identifies what a Service notification reports.
type EventKind string

const (
	EventAdded   EventKind = "purchase_added"
	EventUpdated EventKind = "purchase_updated"
	EventPaid    EventKind = "purchase_paid"
	EventDeleted EventKind = "purchase_deleted"
)

// Event is published to subscribers after a workflow commits. Supplier
// balances and histories are stale after any of these.
type Event struct {
	Kind       EventKind
	PurchaseID int64
	Piece      string
}

// Service is the only writer of purchase rows. Every compound operation
// runs as a single transaction pairing the row change with its
// bookkeeping entry.
type Service struct {
	conn      *db.Connection
	policy    PostingPolicy
	createdBy string
	observers []func(Event)
}

// NewService creates a purchase Service using the given posting policy.
func NewService(conn *db.Connection, policy PostingPolicy) *Service {
	return &Service{conn: conn, policy: policy}
}

// SetCreatedBy sets the audit user recorded on new purchases.
func (s *Service) SetCreatedBy(user string) {
	s.createdBy = user
}

// Subscribe registers a callback invoked after each committed workflow
// operation. Callbacks run synchronously on the calling goroutine.
func (s *Service) Subscribe(fn func(Event)) {
	s.observers = append(s.observers, fn)
}

func (s *Service) notify(kind EventKind, id int64, piece string) {
	for _, fn := range s.observers {
		fn(Event{Kind: kind, PurchaseID: id, Piece: piece})
	}
}

// Add records a purchase and its balanced "ACH" journal entry in one
// transaction. A Piece of AutoPiece is resolved through the sequence
// generator for the year of the purchase date. Returns the new id;
// a (supplier, piece) collision returns ErrDuplicatePiece and nothing
// is written.
func (s *Service) Add(p *Purchase) (int64, error) {
	year, err := fiscalYear(p.Date)
	if err != nil {
		return 0, err
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = StatusToPay
	}
	if p.CreatedBy == "" {
		p.CreatedBy = s.createdBy
	}

	err = s.conn.Transaction(func(tx *sql.Tx) error {
		if p.Piece == AutoPiece {
			piece, err := ledger.NextSequence(tx, SequenceJournal, year)
			if err != nil {
				return err
			}
			p.Piece = piece
		}

		if err := ledger.EnsureAccountTx(tx, p.AccountCode); err != nil {
			return err
		}

		res, err := tx.Exec(`
			INSERT INTO purchases (
				date, piece, supplier_id, label, ttc_amount, vat_rate,
				account_code, due_date, payment_status, payment_date,
				payment_method, is_advance, is_invoice_received,
				attachment_path, created_by
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			p.Date, p.Piece, p.SupplierID, p.Label, p.TTCAmount, p.VATRate,
			p.AccountCode, p.DueDate, string(p.PaymentStatus), nullString(p.PaymentDate),
			nullString(p.PaymentMethod), boolToInt(p.IsAdvance), boolToInt(p.IsInvoiceReceived),
			nullString(p.AttachmentPath), nullString(p.CreatedBy),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("piece %s for supplier %d: %w", p.Piece, p.SupplierID, ErrDuplicatePiece)
			}
			return fmt.Errorf("failed to insert purchase: %w", err)
		}

		p.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get purchase id: %w", err)
		}

		_, err = ledger.CreateEntryTx(tx, JournalPurchases, p.Date, p.Piece, p.Label, s.purchaseLines(p))
		return err
	})
	if err != nil {
		return 0, err
	}

	s.notify(EventAdded, p.ID, p.Piece)
	return p.ID, nil
}

// Update replaces both the purchase row and its "ACH" entry in one
// transaction, so a stale entry is never observable next to an updated
// row.
func (s *Service) Update(p *Purchase) error {
	if p.ID == 0 {
		return ErrIDRequired
	}
	year, err := fiscalYear(p.Date)
	if err != nil {
		return err
	}

	err = s.conn.Transaction(func(tx *sql.Tx) error {
		if p.Piece == AutoPiece {
			piece, err := ledger.NextSequence(tx, SequenceJournal, year)
			if err != nil {
				return err
			}
			p.Piece = piece
		}

		if err := ledger.EnsureAccountTx(tx, p.AccountCode); err != nil {
			return err
		}

		res, err := tx.Exec(`
			UPDATE purchases SET
				date=?, piece=?, supplier_id=?, label=?, ttc_amount=?,
				vat_rate=?, account_code=?, due_date=?, payment_status=?,
				payment_date=?, payment_method=?, is_advance=?,
				is_invoice_received=?, attachment_path=?,
				updated_at=CURRENT_TIMESTAMP
			WHERE id=?`,
			p.Date, p.Piece, p.SupplierID, p.Label, p.TTCAmount,
			p.VATRate, p.AccountCode, p.DueDate, string(p.PaymentStatus),
			nullString(p.PaymentDate), nullString(p.PaymentMethod), boolToInt(p.IsAdvance),
			boolToInt(p.IsInvoiceReceived), nullString(p.AttachmentPath),
			p.ID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("piece %s for supplier %d: %w", p.Piece, p.SupplierID, ErrDuplicatePiece)
			}
			return fmt.Errorf("failed to update purchase: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("purchase %d: %w", p.ID, ErrNotFound)
		}

		if _, err := ledger.DeleteEntryByRefTx(tx, JournalPurchases, p.Piece); err != nil {
			return err
		}

		_, err = ledger.CreateEntryTx(tx, JournalPurchases, p.Date, p.Piece, p.Label, s.purchaseLines(p))
		return err
	})
	if err != nil {
		return err
	}

	s.notify(EventUpdated, p.ID, p.Piece)
	return nil
}

// Pay records a payment against a purchase: the status advances
// according to the cumulative amount credited to the bank account for
// this piece, and a two-line "BQ" entry is written. Prior payment
// entries are kept; one entry is posted per payment event.
func (s *Service) Pay(purchaseID int64, paymentDate, method string, amount float64) error {
	var piece string

	err := s.conn.Transaction(func(tx *sql.Tx) error {
		var (
			ttc               float64
			status            string
			isAdvance         int
			isInvoiceReceived int
		)
		err := tx.QueryRow(`
			SELECT ttc_amount, piece, payment_status, is_advance, is_invoice_received
			FROM purchases WHERE id=?`, purchaseID,
		).Scan(&ttc, &piece, &status, &isAdvance, &isInvoiceReceived)
		if err == sql.ErrNoRows {
			return fmt.Errorf("purchase %d: %w", purchaseID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load purchase: %w", err)
		}

		var alreadyPaid float64
		err = tx.QueryRow(`
			SELECT COALESCE(SUM(credit), 0) FROM entry_lines
			WHERE account=? AND entry_id IN
				(SELECT id FROM entries WHERE journal=? AND ref=?)`,
			s.policy.BankAccount, JournalBank, piece,
		).Scan(&alreadyPaid)
		if err != nil {
			return fmt.Errorf("failed to sum prior payments: %w", err)
		}

		newStatus := StatusPartial
		paid := decimal.NewFromFloat(alreadyPaid).Add(decimal.NewFromFloat(amount))
		if paid.Round(2).GreaterThanOrEqual(decimal.NewFromFloat(ttc).Round(2)) {
			newStatus = StatusPaid
		}

		_, err = tx.Exec(`
			UPDATE purchases SET payment_status=?, payment_date=?, payment_method=?
			WHERE id=?`,
			string(newStatus), paymentDate, method, purchaseID,
		)
		if err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}

		counter := s.policy.CounterAccount(isAdvance != 0, isInvoiceReceived != 0)
		lines := []ledger.Line{
			{Account: counter, Debit: amount},
			{Account: s.policy.BankAccount, Credit: amount},
		}
		memo := fmt.Sprintf("Paiement facture %s", piece)
		_, err = ledger.CreateEntryTx(tx, JournalBank, paymentDate, piece, memo, lines)
		return err
	})
	if err != nil {
		return err
	}

	s.notify(EventPaid, purchaseID, piece)
	return nil
}

// Delete removes a purchase and its "ACH" entry in one transaction.
// "BQ" payment entries already posted against the piece are kept, so
// payment history survives the deletion.
func (s *Service) Delete(purchaseID int64) error {
	var piece string

	err := s.conn.Transaction(func(tx *sql.Tx) error {
		err := tx.QueryRow(`SELECT piece FROM purchases WHERE id=?`, purchaseID).Scan(&piece)
		if err == sql.ErrNoRows {
			return fmt.Errorf("purchase %d: %w", purchaseID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load purchase: %w", err)
		}

		if _, err := tx.Exec(`DELETE FROM purchases WHERE id=?`, purchaseID); err != nil {
			return fmt.Errorf("failed to delete purchase: %w", err)
		}

		_, err = ledger.DeleteEntryByRefTx(tx, JournalPurchases, piece)
		return err
	})
	if err != nil {
		return err
	}

	s.notify(EventDeleted, purchaseID, piece)
	return nil
}

// Fetch returns purchases matching the filter, ordered by date
// ascending.
func (s *Service) Fetch(flt Filter) ([]Purchase, error) {
	query := `
		SELECT id, date, piece, supplier_id, label, ttc_amount, vat_rate,
		       account_code, due_date, payment_status, payment_date,
		       payment_method, is_advance, is_invoice_received,
		       attachment_path, created_by, updated_at
		FROM purchases WHERE 1=1`
	var args []interface{}

	if flt.Start != "" {
		query += ` AND date >= ?`
		args = append(args, flt.Start)
	}
	if flt.End != "" {
		query += ` AND date <= ?`
		args = append(args, flt.End)
	}
	if flt.SupplierID != 0 {
		query += ` AND supplier_id = ?`
		args = append(args, flt.SupplierID)
	}
	if flt.Status != "" {
		query += ` AND payment_status = ?`
		args = append(args, string(flt.Status))
	}
	query += ` ORDER BY date`

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch purchases: %w", err)
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		var (
			p                 Purchase
			status            string
			paymentDate       sql.NullString
			paymentMethod     sql.NullString
			isAdvance         int
			isInvoiceReceived int
			attachmentPath    sql.NullString
			createdBy         sql.NullString
			updatedAt         sql.NullString
		)
		err := rows.Scan(
			&p.ID, &p.Date, &p.Piece, &p.SupplierID, &p.Label, &p.TTCAmount,
			&p.VATRate, &p.AccountCode, &p.DueDate, &status, &paymentDate,
			&paymentMethod, &isAdvance, &isInvoiceReceived, &attachmentPath,
			&createdBy, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		p.PaymentStatus = Status(status)
		p.PaymentDate = paymentDate.String
		p.PaymentMethod = paymentMethod.String
		p.IsAdvance = isAdvance != 0
		p.IsInvoiceReceived = isInvoiceReceived != 0
		p.AttachmentPath = attachmentPath.String
		p.CreatedBy = createdBy.String
		p.UpdatedAt = updatedAt.String
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// Summaries returns the condensed purchase listing ordered by date.
func (s *Service) Summaries() ([]Summary, error) {
	rows, err := s.conn.Query(`
		SELECT id, date, label, ttc_amount, due_date, payment_status
		FROM purchases ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch purchase summaries: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			sum    Summary
			status string
		)
		if err := rows.Scan(&sum.ID, &sum.Date, &sum.Label, &sum.TTC, &sum.DueDate, &status); err != nil {
			return nil, fmt.Errorf("failed to scan purchase summary: %w", err)
		}
		sum.Status = Status(status)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// VATSummary totals the HT base and VAT per rate for purchases dated
// within [start, end]. Both figures are derived from the stored TTC
// amounts and rates.
func (s *Service) VATSummary(start, end string) ([]VATLine, error) {
	rows, err := s.conn.Query(
		`SELECT vat_rate, ttc_amount FROM purchases WHERE date BETWEEN ? AND ?`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch VAT summary: %w", err)
	}
	defer rows.Close()

	type totals struct{ base, vat decimal.Decimal }
	byRate := make(map[float64]*totals)
	for rows.Next() {
		var rate, ttc float64
		if err := rows.Scan(&rate, &ttc); err != nil {
			return nil, fmt.Errorf("failed to scan VAT row: %w", err)
		}
		ht, vat := DeriveAmounts(ttc, rate)
		t, ok := byRate[rate]
		if !ok {
			t = &totals{}
			byRate[rate] = t
		}
		t.base = t.base.Add(decimal.NewFromFloat(ht))
		t.vat = t.vat.Add(decimal.NewFromFloat(vat))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lines := make([]VATLine, 0, len(byRate))
	for rate, t := range byRate {
		base, _ := t.base.Round(2).Float64()
		vat, _ := t.vat.Round(2).Float64()
		lines = append(lines, VATLine{Rate: rate, Base: base, VAT: vat})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Rate < lines[j].Rate })
	return lines, nil
}

// purchaseLines builds the three posting lines of a purchase entry:
// expense HT and VAT on the debit side, the counter-account for the
// full TTC on the credit side.
func (s *Service) purchaseLines(p *Purchase) []ledger.Line {
	ht, vat := DeriveAmounts(p.TTCAmount, p.VATRate)
	counter := s.policy.CounterAccount(p.IsAdvance, p.IsInvoiceReceived)
	vatAccount := s.policy.VATAccount(p.AccountCode)

	return []ledger.Line{
		{Account: p.AccountCode, Debit: ht},
		{Account: vatAccount, Debit: vat},
		{Account: counter, Credit: p.TTCAmount},
	}
}

// fiscalYear parses the year out of an ISO date.
func fiscalYear(date string) (int, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return strconv.Atoi(date[:4])
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

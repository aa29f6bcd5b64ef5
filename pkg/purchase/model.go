// Package purchase implements the purchase workflow: recording,
// updating, paying and deleting purchases while keeping each one's
// bookkeeping entry consistent with it.
package purchase

// Status is the payment status of a purchase. It only moves forward:
// A_PAYER -> PARTIEL -> PAYE.
type Status string

const (
	StatusToPay   Status = "A_PAYER"
	StatusPartial Status = "PARTIEL"
	StatusPaid    Status = "PAYE"
)

// VATRates is the enumerated set of accepted French VAT rates.
var VATRates = []float64{0, 2.1, 5.5, 10, 20}

// AutoPiece requests allocation of the document number from the
// sequence generator.
const AutoPiece = "AUTO"

// Purchase is a purchase record. TTCAmount (tax inclusive) is the
// authoritative stored amount; HT and VAT are derived from it and
// VATRate when posting.
type Purchase struct {
	ID                int64
	Date              string // YYYY-MM-DD
	Piece             string // document number, or AutoPiece
	SupplierID        int64
	Label             string
	TTCAmount         float64
	VATRate           float64
	AccountCode       string // expense account, conventionally 6xx
	DueDate           string
	PaymentStatus     Status
	PaymentDate       string
	PaymentMethod     string
	IsAdvance         bool
	IsInvoiceReceived bool
	AttachmentPath    string
	CreatedBy         string
	UpdatedAt         string
}

// Filter narrows Fetch results. Zero values mean "no constraint".
type Filter struct {
	Start      string
	End        string
	SupplierID int64
	Status     Status
}

// Summary is the condensed purchase listing used by tables and
// dashboards.
type Summary struct {
	ID      int64
	Date    string
	Label   string
	TTC     float64
	DueDate string
	Status  Status
}

// VATLine is one row of the per-rate VAT summary.
type VATLine struct {
	Rate float64
	Base float64 // HT total
	VAT  float64
}

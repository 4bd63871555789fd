package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is catalog reference data. The order core never mutates it;
// prices live only here until a sale is finalized, at which point the
// current price is captured into the transaction.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// Customer is external reference data owned by the customer book.
type Customer struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	TaxNumber string          `json:"tax_number"`
	Address   string          `json:"address"`
	Phone     string          `json:"phone"`
	Balance   decimal.Decimal `json:"balance"`
}

// CustomerSnapshot is the copy embedded into a transaction. Editing the
// customer record later never changes transaction history.
type CustomerSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TaxNumber string `json:"tax_number"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

func SnapshotOf(c Customer) CustomerSnapshot {
	return CustomerSnapshot{
		ID:        c.ID,
		Name:      c.Name,
		TaxNumber: c.TaxNumber,
		Address:   c.Address,
		Phone:     c.Phone,
	}
}

// CartLine is one product entry in an in-progress order. A cart holds at
// most one line per product id.
type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note,omitempty"`
}

type CartTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// InstrumentKind is the closed set of payment instrument variants.
type InstrumentKind string

const (
	InstrumentCash           InstrumentKind = "cash"
	InstrumentCheck          InstrumentKind = "check"
	InstrumentPromissoryNote InstrumentKind = "promissory_note"
	InstrumentCard           InstrumentKind = "card"
)

func (k InstrumentKind) Valid() bool {
	switch k {
	case InstrumentCash, InstrumentCheck, InstrumentPromissoryNote, InstrumentCard:
		return true
	default:
		return false
	}
}

// Label returns the operator-facing name used on receipts.
func (k InstrumentKind) Label() string {
	switch k {
	case InstrumentCash:
		return "Nakit"
	case InstrumentCheck:
		return "Çek"
	case InstrumentPromissoryNote:
		return "Senet"
	case InstrumentCard:
		return "Kredi Kartı"
	default:
		return string(k)
	}
}

type CheckDetail struct {
	Bank          string `json:"bank"`
	Branch        string `json:"branch"`
	CheckNumber   string `json:"check_number"`
	AccountNumber string `json:"account_number"`
	DueDate       string `json:"due_date"`
}

type PromissoryNoteDetail struct {
	DebtorName string `json:"debtor_name"`
	DebtorID   string `json:"debtor_id"`
	BondNumber string `json:"bond_number"`
	IssueDate  string `json:"issue_date"`
	DueDate    string `json:"due_date"`
}

// PaymentInstrument is one entry in the payment composer. Amount holds the
// raw operator input; an empty or unparsable value aggregates as zero.
// Check and PromissoryNote are populated only for the matching kind.
type PaymentInstrument struct {
	Kind           InstrumentKind        `json:"kind"`
	Amount         string                `json:"amount"`
	Check          *CheckDetail          `json:"check,omitempty"`
	PromissoryNote *PromissoryNoteDetail `json:"promissory_note,omitempty"`
}

// AmountValue parses the raw amount. Empty or unparsable input counts as
// zero so a half-filled row never blocks the running total.
func (p PaymentInstrument) AmountValue() decimal.Decimal {
	value, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return decimal.Zero
	}
	return value
}

// InstrumentPatch updates an instrument in place. Only fields belonging to
// the instrument's own variant are applied; changing the kind is not
// supported (remove and re-add instead).
type InstrumentPatch struct {
	Amount         *string                    `json:"amount,omitempty"`
	Check          *CheckDetailPatch          `json:"check,omitempty"`
	PromissoryNote *PromissoryNoteDetailPatch `json:"promissory_note,omitempty"`
}

type CheckDetailPatch struct {
	Bank          *string `json:"bank,omitempty"`
	Branch        *string `json:"branch,omitempty"`
	CheckNumber   *string `json:"check_number,omitempty"`
	AccountNumber *string `json:"account_number,omitempty"`
	DueDate       *string `json:"due_date,omitempty"`
}

type PromissoryNoteDetailPatch struct {
	DebtorName *string `json:"debtor_name,omitempty"`
	DebtorID   *string `json:"debtor_id,omitempty"`
	BondNumber *string `json:"bond_number,omitempty"`
	IssueDate  *string `json:"issue_date,omitempty"`
	DueDate    *string `json:"due_date,omitempty"`
}

// PaymentDirection distinguishes money collected from a customer (tahsilat)
// from money paid out (tediye).
type PaymentDirection string

const (
	DirectionCollection   PaymentDirection = "collection"
	DirectionDisbursement PaymentDirection = "disbursement"
)

func (d PaymentDirection) Valid() bool {
	return d == DirectionCollection || d == DirectionDisbursement
}

// TransactionKind is the closed set of ledger entry types.
type TransactionKind string

const (
	TxSale    TransactionKind = "sale"
	TxPayment TransactionKind = "payment"
	TxExpense TransactionKind = "expense"
)

func (k TransactionKind) Valid() bool {
	switch k {
	case TxSale, TxPayment, TxExpense:
		return true
	default:
		return false
	}
}

// TransactionItem captures a sold product as it was at finalize time.
type TransactionItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Note      string          `json:"note,omitempty"`
}

// TransactionDraft is a transaction before the ledger assigns its id and
// timestamp. Finalize operations produce drafts so a preview can be shown
// before anything is committed.
type TransactionDraft struct {
	Kind            TransactionKind   `json:"kind"`
	Description     string            `json:"description"`
	Customer        CustomerSnapshot  `json:"customer"`
	Amount          decimal.Decimal   `json:"amount"`
	Items           []TransactionItem `json:"items,omitempty"`
	PaymentMethod   string            `json:"payment_method,omitempty"`
	Note            string            `json:"note,omitempty"`
	DiscountPercent decimal.Decimal   `json:"discount_percent"`
}

// Transaction is an immutable ledger entry. Amount sign convention: sales
// and collections are positive, disbursements are negative.
type Transaction struct {
	ID              string            `json:"id"`
	Date            time.Time         `json:"date"`
	Kind            TransactionKind   `json:"kind"`
	Description     string            `json:"description"`
	Customer        CustomerSnapshot  `json:"customer"`
	Amount          decimal.Decimal   `json:"amount"`
	Items           []TransactionItem `json:"items,omitempty"`
	PaymentMethod   string            `json:"payment_method,omitempty"`
	Note            string            `json:"note,omitempty"`
	DiscountPercent decimal.Decimal   `json:"discount_percent"`
}

// ReceiptRow is one body line of a receipt document. Product rows fill
// every column; instrument rows carry only Label and Amount.
type ReceiptRow struct {
	Label     string `json:"label"`
	UnitPrice string `json:"unit_price,omitempty"`
	Quantity  string `json:"quantity,omitempty"`
	Amount    string `json:"amount"`
	Note      string `json:"note,omitempty"`
}

// ReceiptDocument is the normalized print/display model produced by the
// receipt projector. All money fields are pre-formatted strings so a
// preview render and a later render from the stored transaction agree
// byte-for-byte.
type ReceiptDocument struct {
	Title          string           `json:"title"`
	DocumentNumber string           `json:"document_number,omitempty"`
	Date           string           `json:"date"`
	Customer       CustomerSnapshot `json:"customer"`
	Rows           []ReceiptRow     `json:"rows"`
	Subtotal       string           `json:"subtotal,omitempty"`
	DiscountLabel  string           `json:"discount_label,omitempty"`
	DiscountAmount string           `json:"discount_amount,omitempty"`
	Total          string           `json:"total"`
	Note           string           `json:"note,omitempty"`
}

type DailySummary struct {
	Date          string          `json:"date"`
	Sales         decimal.Decimal `json:"sales"`
	Collections   decimal.Decimal `json:"collections"`
	Disbursements decimal.Decimal `json:"disbursements"`
	Net           decimal.Decimal `json:"net"`
	Transactions  int             `json:"transactions"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type RepCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RepUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type OpenSessionRequest struct {
	CustomerID string `json:"customer_id,omitempty"`
}

type SessionInfo struct {
	ID         string              `json:"id"`
	CustomerID string              `json:"customer_id,omitempty"`
	Lines      []CartLine          `json:"lines"`
	Discount   decimal.Decimal     `json:"discount"`
	OrderNote  string              `json:"order_note,omitempty"`
	Payments   []PaymentInstrument `json:"payments"`
}

type SetQuantityRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type SetDiscountRequest struct {
	Percent decimal.Decimal `json:"percent"`
}

type SetNoteRequest struct {
	Note string `json:"note"`
}

type SetLineNoteRequest struct {
	ProductID string `json:"product_id"`
	Note      string `json:"note"`
}

type SetCustomerRequest struct {
	CustomerID string `json:"customer_id"`
}

type AddInstrumentRequest struct {
	Kind InstrumentKind `json:"kind"`
}

type CompletePaymentRequest struct {
	Direction PaymentDirection `json:"direction"`
	Note      string           `json:"note,omitempty"`
}

type CompleteSaleResponse struct {
	Transaction Transaction     `json:"transaction"`
	Receipt     ReceiptDocument `json:"receipt"`
}

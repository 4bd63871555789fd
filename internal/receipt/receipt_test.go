package receipt

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sahasatis/backend/internal/domain"
)

func money(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func saleTransaction() domain.Transaction {
	return domain.Transaction{
		ID:          "tx-sale-1",
		Date:        time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC),
		Kind:        domain.TxSale,
		Description: "Satış",
		Customer:    domain.CustomerSnapshot{ID: "CUS-1", Name: "Yılmaz Market", TaxNumber: "1234567890"},
		Amount:      money("18.00"),
		Items: []domain.TransactionItem{
			{ProductID: "PRD-A", Name: "Ürün A", Quantity: 2, Price: money("10.00")},
		},
		Note:            "haftalık sipariş",
		DiscountPercent: money("10"),
	}
}

func TestFromTransactionSale(t *testing.T) {
	doc := FromTransaction(saleTransaction())

	if doc.Title != "Satış Faturası" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
	if doc.DocumentNumber != "tx-sale-1" {
		t.Fatalf("unexpected document number %q", doc.DocumentNumber)
	}
	if doc.Date != "01.09.2026 14:30" {
		t.Fatalf("unexpected date %q", doc.Date)
	}
	if len(doc.Rows) != 1 {
		t.Fatalf("expected one row, got %d", len(doc.Rows))
	}
	row := doc.Rows[0]
	if row.Label != "Ürün A" || row.UnitPrice != "10.00" || row.Quantity != "2" || row.Amount != "20.00" {
		t.Fatalf("unexpected row %+v", row)
	}
	if doc.Subtotal != "20.00" || doc.DiscountAmount != "2.00" || doc.Total != "18.00" {
		t.Fatalf("unexpected totals subtotal=%s discount=%s total=%s", doc.Subtotal, doc.DiscountAmount, doc.Total)
	}
	if doc.DiscountLabel != "İskonto (%10)" {
		t.Fatalf("unexpected discount label %q", doc.DiscountLabel)
	}
	if doc.Note != "haftalık sipariş" {
		t.Fatalf("unexpected note %q", doc.Note)
	}
}

func TestFromTransactionOmitsZeroDiscount(t *testing.T) {
	tx := saleTransaction()
	tx.DiscountPercent = decimal.Zero
	tx.Amount = money("20.00")

	doc := FromTransaction(tx)
	if doc.DiscountLabel != "" || doc.DiscountAmount != "" {
		t.Fatalf("zero discount must not render a discount line: %+v", doc)
	}
}

func TestFromTransactionCollection(t *testing.T) {
	tx := domain.Transaction{
		ID:            "tx-pay-1",
		Date:          time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		Kind:          domain.TxPayment,
		Description:   "Tahsilat",
		Customer:      domain.CustomerSnapshot{ID: "CUS-2", Name: "Demir Gıda Ltd."},
		Amount:        money("150.00"),
		PaymentMethod: "cash, card",
	}

	doc := FromTransaction(tx)
	if doc.Title != "Tahsilat Makbuzu" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
	if len(doc.Rows) != 1 {
		t.Fatalf("expected a single method row, got %d", len(doc.Rows))
	}
	if doc.Rows[0].Label != "Nakit, Kredi Kartı" {
		t.Fatalf("unexpected method label %q", doc.Rows[0].Label)
	}
	if doc.Total != "150.00" {
		t.Fatalf("unexpected total %q", doc.Total)
	}
}

func TestFromTransactionDisbursementShowsMagnitude(t *testing.T) {
	tx := domain.Transaction{
		ID:            "tx-exp-1",
		Date:          time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		Kind:          domain.TxExpense,
		Description:   "Tediye",
		Customer:      domain.CustomerSnapshot{ID: "CUS-2", Name: "Demir Gıda Ltd."},
		Amount:        money("-150.00"),
		PaymentMethod: "cash",
	}

	doc := FromTransaction(tx)
	if doc.Title != "Tediye Makbuzu" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
	if doc.Total != "150.00" || doc.Rows[0].Amount != "150.00" {
		t.Fatalf("disbursement must print its magnitude, got total=%s row=%s", doc.Total, doc.Rows[0].Amount)
	}
}

func TestFromTransactionDeterministic(t *testing.T) {
	tx := saleTransaction()

	first := FromTransaction(tx)
	second := FromTransaction(tx)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("projection must be deterministic:\n%+v\n%+v", first, second)
	}
}

func TestSalePreviewMatchesCommittedRender(t *testing.T) {
	tx := saleTransaction()
	totals := domain.CartTotals{
		Subtotal:       money("20.00"),
		DiscountAmount: money("2.00"),
		Total:          money("18.00"),
	}

	preview := SalePreview(tx.Customer, tx.Items, totals, tx.DiscountPercent, tx.Note, tx.Date)
	committed := FromTransaction(tx)

	// Identical body: only the document number differs before commit.
	preview.DocumentNumber = committed.DocumentNumber
	if !reflect.DeepEqual(preview, committed) {
		t.Fatalf("preview and committed render diverge:\n%+v\n%+v", preview, committed)
	}
}

func TestPaymentPreviewRowsPerInstrument(t *testing.T) {
	customer := domain.CustomerSnapshot{ID: "CUS-3", Name: "Kaya Bakkaliyesi"}
	instruments := []domain.PaymentInstrument{
		{Kind: domain.InstrumentCash, Amount: "100"},
		{Kind: domain.InstrumentCheck, Amount: "400", Check: &domain.CheckDetail{Bank: "Ziraat", CheckNumber: "000123", DueDate: "2026-10-01"}},
	}
	date := time.Date(2026, 9, 1, 11, 15, 0, 0, time.UTC)

	doc := PaymentPreview(customer, instruments, domain.DirectionCollection, "", date)
	if doc.Title != "Tahsilat Makbuzu" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
	if len(doc.Rows) != 2 {
		t.Fatalf("expected one row per instrument, got %d", len(doc.Rows))
	}
	if doc.Rows[0].Label != "Nakit" || doc.Rows[0].Amount != "100.00" {
		t.Fatalf("unexpected cash row %+v", doc.Rows[0])
	}
	if doc.Rows[1].Label != "Çek" || doc.Rows[1].Amount != "400.00" {
		t.Fatalf("unexpected check row %+v", doc.Rows[1])
	}
	if doc.Rows[1].Note != "Ziraat, Çek No: 000123, Vade: 2026-10-01" {
		t.Fatalf("unexpected check note %q", doc.Rows[1].Note)
	}
	if doc.Total != "500.00" {
		t.Fatalf("unexpected total %q", doc.Total)
	}

	disbursement := PaymentPreview(customer, instruments, domain.DirectionDisbursement, "", date)
	if disbursement.Title != "Tediye Makbuzu" {
		t.Fatalf("unexpected disbursement title %q", disbursement.Title)
	}
}

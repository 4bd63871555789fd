package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sahasatis/backend/internal/cache"
	"sahasatis/backend/internal/domain"
	"sahasatis/backend/internal/ledger"
	"sahasatis/backend/internal/store/memory"
)

func strptr(s string) *string { return &s }

func newTestService(t *testing.T) (*Service, *memory.Store, cache.SessionStore) {
	t.Helper()

	repo := memory.NewSeeded()
	sessions := cache.NewMemorySessionStore()
	svc := New(repo, ledger.New(), sessions, time.Hour)
	return svc, repo, sessions
}

func openSessionWithCustomer(t *testing.T, svc *Service, customerID string) domain.SessionInfo {
	t.Helper()

	info, err := svc.OpenSession(context.Background(), domain.OpenSessionRequest{CustomerID: customerID})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return info
}

func TestOpenSessionValidatesCustomer(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.OpenSession(context.Background(), domain.OpenSessionRequest{CustomerID: "CUS-NOPE"}); err == nil {
		t.Fatalf("expected error for unknown customer")
	}

	info := openSessionWithCustomer(t, svc, "CUS-001")
	if info.ID == "" || info.CustomerID != "CUS-001" {
		t.Fatalf("unexpected session info %+v", info)
	}
}

func TestCompleteSaleFlow(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	info := openSessionWithCustomer(t, svc, "CUS-001")

	if _, err := svc.SetQuantity(ctx, info.ID, domain.SetQuantityRequest{ProductID: "PRD-001", Quantity: 2}); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if _, err := svc.SetDiscount(ctx, info.ID, decimal.NewFromInt(10)); err != nil {
		t.Fatalf("set discount: %v", err)
	}

	totals, err := svc.CartTotals(ctx, info.ID)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	// 2 x 289.90 = 579.80, 10% discount 57.98.
	if totals.Subtotal.StringFixed(2) != "579.80" || totals.DiscountAmount.StringFixed(2) != "57.98" || totals.Total.StringFixed(2) != "521.82" {
		t.Fatalf("unexpected totals %+v", totals)
	}

	preview, err := svc.PreviewSale(ctx, info.ID)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.Total != "521.82" {
		t.Fatalf("unexpected preview total %q", preview.Total)
	}

	resp, err := svc.CompleteSale(ctx, info.ID)
	if err != nil {
		t.Fatalf("complete sale: %v", err)
	}
	if resp.Transaction.Kind != domain.TxSale || resp.Transaction.Amount.StringFixed(2) != "521.82" {
		t.Fatalf("unexpected transaction %+v", resp.Transaction)
	}
	if resp.Receipt.Title != "Satış Faturası" || resp.Receipt.Total != "521.82" {
		t.Fatalf("unexpected receipt %+v", resp.Receipt)
	}

	// The ledger and the repository both hold the entry.
	stored, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != resp.Transaction.ID {
		t.Fatalf("transaction not mirrored to repository: %+v", stored)
	}

	// The cart is cleared but the customer stays bound.
	after, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(after.Lines) != 0 || !after.Discount.IsZero() {
		t.Fatalf("cart not cleared after sale: %+v", after)
	}
	if after.CustomerID != "CUS-001" {
		t.Fatalf("customer binding lost after sale: %+v", after)
	}
}

func TestCompleteSaleRequiresCustomerAndLines(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	info := openSessionWithCustomer(t, svc, "")
	if _, err := svc.SetQuantity(ctx, info.ID, domain.SetQuantityRequest{ProductID: "PRD-001", Quantity: 1}); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if _, err := svc.CompleteSale(ctx, info.ID); !errors.Is(err, domain.ErrMissingCustomer) {
		t.Fatalf("expected ErrMissingCustomer, got %v", err)
	}

	bound := openSessionWithCustomer(t, svc, "CUS-001")
	if _, err := svc.CompleteSale(ctx, bound.ID); !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCompletePaymentFlow(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	info := openSessionWithCustomer(t, svc, "CUS-002")

	if _, err := svc.AddInstrument(ctx, info.ID, domain.InstrumentCash); err != nil {
		t.Fatalf("add instrument: %v", err)
	}
	if _, err := svc.UpdateInstrument(ctx, info.ID, 0, domain.InstrumentPatch{Amount: strptr("150")}); err != nil {
		t.Fatalf("update instrument: %v", err)
	}

	total, err := svc.PaymentTotal(ctx, info.ID)
	if err != nil {
		t.Fatalf("payment total: %v", err)
	}
	if total.StringFixed(2) != "150.00" {
		t.Fatalf("unexpected total %s", total)
	}

	resp, err := svc.CompletePayment(ctx, info.ID, domain.CompletePaymentRequest{Direction: domain.DirectionCollection})
	if err != nil {
		t.Fatalf("complete payment: %v", err)
	}
	if resp.Transaction.Kind != domain.TxPayment || resp.Transaction.Amount.StringFixed(2) != "150.00" {
		t.Fatalf("unexpected transaction %+v", resp.Transaction)
	}
	if resp.Receipt.Title != "Tahsilat Makbuzu" {
		t.Fatalf("unexpected receipt title %q", resp.Receipt.Title)
	}

	// Composer is cleared after commit.
	after, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(after.Payments) != 0 {
		t.Fatalf("composer not cleared: %+v", after.Payments)
	}

	// Disbursement of the same magnitude lands as a negative expense.
	if _, err := svc.AddInstrument(ctx, info.ID, domain.InstrumentCash); err != nil {
		t.Fatalf("add instrument: %v", err)
	}
	if _, err := svc.UpdateInstrument(ctx, info.ID, 0, domain.InstrumentPatch{Amount: strptr("150")}); err != nil {
		t.Fatalf("update instrument: %v", err)
	}
	resp, err = svc.CompletePayment(ctx, info.ID, domain.CompletePaymentRequest{Direction: domain.DirectionDisbursement})
	if err != nil {
		t.Fatalf("complete disbursement: %v", err)
	}
	if resp.Transaction.Kind != domain.TxExpense || resp.Transaction.Amount.StringFixed(2) != "-150.00" {
		t.Fatalf("unexpected disbursement %+v", resp.Transaction)
	}
}

func TestCompletePaymentRequiresInstruments(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	info := openSessionWithCustomer(t, svc, "CUS-001")
	_, err := svc.CompletePayment(ctx, info.ID, domain.CompletePaymentRequest{Direction: domain.DirectionCollection})
	if !errors.Is(err, domain.ErrNoInstruments) {
		t.Fatalf("expected ErrNoInstruments, got %v", err)
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	repo := memory.NewSeeded()
	sessions := cache.NewMemorySessionStore()
	ctx := context.Background()

	svc := New(repo, ledger.New(), sessions, time.Hour)
	info, err := svc.OpenSession(ctx, domain.OpenSessionRequest{CustomerID: "CUS-003"})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	if _, err := svc.SetQuantity(ctx, info.ID, domain.SetQuantityRequest{ProductID: "PRD-004", Quantity: 3}); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if _, err := svc.AddInstrument(ctx, info.ID, domain.InstrumentCheck); err != nil {
		t.Fatalf("add instrument: %v", err)
	}

	// A fresh service with the same session store stands in for a restarted
	// process.
	restarted := New(repo, ledger.New(), sessions, time.Hour)
	restored, err := restarted.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("restore session: %v", err)
	}
	if restored.CustomerID != "CUS-003" {
		t.Fatalf("customer lost across restart: %+v", restored)
	}
	if len(restored.Lines) != 1 || restored.Lines[0].ProductID != "PRD-004" || restored.Lines[0].Quantity != 3 {
		t.Fatalf("cart lost across restart: %+v", restored.Lines)
	}
	if len(restored.Payments) != 1 || restored.Payments[0].Kind != domain.InstrumentCheck {
		t.Fatalf("payments lost across restart: %+v", restored.Payments)
	}
}

func TestCloseSessionForgets(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	info := openSessionWithCustomer(t, svc, "CUS-001")
	if err := svc.CloseSession(ctx, info.ID); err != nil {
		t.Fatalf("close session: %v", err)
	}
	if _, err := svc.GetSession(ctx, info.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestTransactionsByDateAndSummary(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	info := openSessionWithCustomer(t, svc, "CUS-001")
	if _, err := svc.SetQuantity(ctx, info.ID, domain.SetQuantityRequest{ProductID: "PRD-010", Quantity: 1}); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if _, err := svc.CompleteSale(ctx, info.ID); err != nil {
		t.Fatalf("complete sale: %v", err)
	}

	if _, err := svc.AddInstrument(ctx, info.ID, domain.InstrumentCash); err != nil {
		t.Fatalf("add instrument: %v", err)
	}
	if _, err := svc.UpdateInstrument(ctx, info.ID, 0, domain.InstrumentPatch{Amount: strptr("30")}); err != nil {
		t.Fatalf("update instrument: %v", err)
	}
	if _, err := svc.CompletePayment(ctx, info.ID, domain.CompletePaymentRequest{Direction: domain.DirectionDisbursement}); err != nil {
		t.Fatalf("complete payment: %v", err)
	}

	today := time.Now().UTC().Format("2006-01-02")
	entries, err := svc.TransactionsByDate(ctx, today)
	if err != nil {
		t.Fatalf("by date: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries today, got %d", len(entries))
	}

	if _, err := svc.TransactionsByDate(ctx, "not-a-date"); err == nil {
		t.Fatalf("expected error for malformed date key")
	}

	summary, err := svc.DailySummary(ctx, today)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	// PRD-010 is 78.00; the disbursement is 30.
	if summary.Sales.StringFixed(2) != "78.00" {
		t.Fatalf("unexpected sales %s", summary.Sales)
	}
	if summary.Disbursements.StringFixed(2) != "30.00" {
		t.Fatalf("unexpected disbursements %s", summary.Disbursements)
	}
	if summary.Net.StringFixed(2) != "48.00" {
		t.Fatalf("unexpected net %s", summary.Net)
	}
	if summary.Transactions != 2 {
		t.Fatalf("unexpected count %d", summary.Transactions)
	}
}

func TestTransactionReceiptReRender(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	info := openSessionWithCustomer(t, svc, "CUS-001")
	if _, err := svc.SetQuantity(ctx, info.ID, domain.SetQuantityRequest{ProductID: "PRD-001", Quantity: 1}); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	resp, err := svc.CompleteSale(ctx, info.ID)
	if err != nil {
		t.Fatalf("complete sale: %v", err)
	}

	again, err := svc.TransactionReceipt(ctx, resp.Transaction.ID)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if again.Total != resp.Receipt.Total || again.Title != resp.Receipt.Title || again.DocumentNumber != resp.Receipt.DocumentNumber {
		t.Fatalf("re-rendered receipt diverges: %+v vs %+v", again, resp.Receipt)
	}

	if _, err := svc.TransactionReceipt(ctx, "missing"); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

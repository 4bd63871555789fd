package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"sahasatis/backend/internal/cache"
	"sahasatis/backend/internal/cart"
	"sahasatis/backend/internal/domain"
	"sahasatis/backend/internal/ledger"
	"sahasatis/backend/internal/payment"
	"sahasatis/backend/internal/receipt"
	"sahasatis/backend/internal/store"
	"sahasatis/backend/internal/xid"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// session is one live order: a cart and a payment composer bound to the
// same customer.
type session struct {
	id       string
	cart     *cart.Cart
	payments *payment.Composer
}

// Service owns the order sessions and the ledger. All session mutations go
// through the service mutex; carts and composers are never shared outside
// it. Every mutation is mirrored to the session store so an in-progress
// order survives a restart.
type Service struct {
	mu           sync.Mutex
	repo         store.Repository
	ledger       *ledger.Ledger
	sessions     map[string]*session
	sessionStore cache.SessionStore
	sessionTTL   time.Duration
}

func New(repo store.Repository, ledg *ledger.Ledger, sessionStore cache.SessionStore, sessionTTL time.Duration) *Service {
	if sessionStore == nil {
		sessionStore = cache.NewMemorySessionStore()
	}
	if sessionTTL < time.Minute {
		sessionTTL = 12 * time.Hour
	}

	return &Service{
		repo:         repo,
		ledger:       ledg,
		sessions:     make(map[string]*session),
		sessionStore: sessionStore,
		sessionTTL:   sessionTTL,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	return s.repo.SearchProducts(ctx, query)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	return s.repo.SearchCustomers(ctx, query)
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.GetCustomerByID(ctx, id)
}

// OpenSession creates a fresh order session, optionally pre-bound to a
// customer.
func (s *Service) OpenSession(ctx context.Context, req domain.OpenSessionRequest) (domain.SessionInfo, error) {
	if req.CustomerID != "" {
		if _, err := s.repo.GetCustomerByID(ctx, req.CustomerID); err != nil {
			return domain.SessionInfo{}, err
		}
	}

	sess := &session{
		id:       xid.New("ses"),
		cart:     cart.New(s.repo),
		payments: payment.New(),
	}
	sess.cart.SetCustomer(req.CustomerID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.id] = sess
	s.saveSession(ctx, sess)

	actor, _ := ActorFromContext(ctx)
	log.Printf("[service] session opened id=%s customer=%s user=%s", sess.id, req.CustomerID, actor.Username)
	return s.sessionInfo(sess), nil
}

// getSession resolves a session from memory, falling back to the session
// store so open orders survive a process restart. Caller must hold s.mu.
func (s *Service) getSession(ctx context.Context, id string) (*session, error) {
	if sess, exists := s.sessions[id]; exists {
		return sess, nil
	}

	snap, found, err := s.sessionStore.Load(ctx, id)
	if err != nil {
		log.Printf("[service] WARN: failed to load session %s: %v", id, err)
	}
	if !found || snap == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	sess := &session{
		id:       snap.ID,
		cart:     cart.New(s.repo),
		payments: payment.New(),
	}
	sess.cart.Restore(snap.Cart)
	sess.payments.Restore(snap.Payments)
	s.sessions[sess.id] = sess
	return sess, nil
}

// saveSession mirrors the session to the session store. Persistence
// failures are logged, not fatal; the in-memory session keeps working.
// Caller must hold s.mu.
func (s *Service) saveSession(ctx context.Context, sess *session) {
	snap := cache.SessionSnapshot{
		ID:         sess.id,
		CustomerID: sess.cart.CustomerID(),
		Cart:       sess.cart.Snapshot(),
		Payments:   sess.payments.Snapshot(),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.sessionStore.Save(ctx, snap, s.sessionTTL); err != nil {
		log.Printf("[service] WARN: failed to save session %s: %v", sess.id, err)
	}
}

func (s *Service) sessionInfo(sess *session) domain.SessionInfo {
	return domain.SessionInfo{
		ID:         sess.id,
		CustomerID: sess.cart.CustomerID(),
		Lines:      sess.cart.Lines(),
		Discount:   sess.cart.Discount(),
		OrderNote:  sess.cart.Note(),
		Payments:   sess.payments.Instruments(),
	}
}

func (s *Service) GetSession(ctx context.Context, id string) (domain.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	return s.sessionInfo(sess), nil
}

func (s *Service) CloseSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	if err := s.sessionStore.Delete(ctx, id); err != nil {
		log.Printf("[service] WARN: failed to delete session %s: %v", id, err)
	}
	return nil
}

func (s *Service) SetSessionCustomer(ctx context.Context, id string, customerID string) (domain.SessionInfo, error) {
	if customerID != "" {
		if _, err := s.repo.GetCustomerByID(ctx, customerID); err != nil {
			return domain.SessionInfo{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	sess.cart.SetCustomer(customerID)
	s.saveSession(ctx, sess)
	return s.sessionInfo(sess), nil
}

func (s *Service) SetQuantity(ctx context.Context, id string, req domain.SetQuantityRequest) (domain.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	if err := sess.cart.SetQuantity(ctx, req.ProductID, req.Quantity); err != nil {
		return domain.SessionInfo{}, err
	}
	s.saveSession(ctx, sess)
	return s.sessionInfo(sess), nil
}

func (s *Service) RemoveLine(ctx context.Context, id string, productID string) (domain.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	sess.cart.Remove(productID)
	s.saveSession(ctx, sess)
	return s.sessionInfo(sess), nil
}

func (s *Service) SetDiscount(ctx context.Context, id string, percent decimal.Decimal) (domain.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	if err := sess.cart.SetDiscount(percent); err != nil {
		return domain.SessionInfo{}, err
	}
	s.saveSession(ctx, sess)
	return s.sessionInfo(sess), nil
}

func (s *Service) SetOrderNote(ctx context.Context, id string, note string) (domain.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	sess.cart.SetNote(note)
	s.saveSession(ctx, sess)
	return s.sessionInfo(sess), nil
}

func (s *Service) SetLineNote(ctx context.Context, id string, req domain.SetLineNoteRequest) (domain.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	sess.cart.SetLineNote(req.ProductID, req.Note)
	s.saveSession(ctx, sess)
	return s.sessionInfo(sess), nil
}

func (s *Service) CartTotals(ctx context.Context, id string) (domain.CartTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return domain.CartTotals{}, err
	}
	return sess.cart.Totals(ctx)
}

func (s *Service) AddInstrument(ctx context.Context, id string, kind domain.InstrumentKind) (domain.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	if _, err := sess.payments.Add(kind); err != nil {
		return domain.SessionInfo{}, err
	}
	s.saveSession(ctx, sess)
	return s.sessionInfo(sess), nil
}

func (s *Service) UpdateInstrument(ctx context.Context, id string, index int, patch domain.InstrumentPatch) (domain.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	if err := sess.payments.Update(index, patch); err != nil {
		return domain.SessionInfo{}, err
	}
	s.saveSession(ctx, sess)
	return s.sessionInfo(sess), nil
}

func (s *Service) RemoveInstrument(ctx context.Context, id string, index int) (domain.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	if err := sess.payments.Remove(index); err != nil {
		return domain.SessionInfo{}, err
	}
	s.saveSession(ctx, sess)
	return s.sessionInfo(sess), nil
}

func (s *Service) PaymentTotal(ctx context.Context, id string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return sess.payments.Total(), nil
}

// sessionCustomer resolves the customer bound to the session. Caller must
// hold s.mu.
func (s *Service) sessionCustomer(ctx context.Context, sess *session) (domain.Customer, error) {
	customerID := sess.cart.CustomerID()
	if customerID == "" {
		return domain.Customer{}, domain.ErrMissingCustomer
	}
	customer, err := s.repo.GetCustomerByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Customer{}, domain.ErrMissingCustomer
		}
		return domain.Customer{}, err
	}
	return *customer, nil
}

// PreviewSale renders the receipt for the cart as it stands, without
// committing anything.
func (s *Service) PreviewSale(ctx context.Context, id string) (domain.ReceiptDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return domain.ReceiptDocument{}, err
	}
	customer, err := s.sessionCustomer(ctx, sess)
	if err != nil {
		return domain.ReceiptDocument{}, err
	}
	draft, err := sess.cart.Finalize(ctx, customer)
	if err != nil {
		return domain.ReceiptDocument{}, err
	}
	totals, err := sess.cart.Totals(ctx)
	if err != nil {
		return domain.ReceiptDocument{}, err
	}
	return receipt.SalePreview(draft.Customer, draft.Items, totals, draft.DiscountPercent, draft.Note, time.Now().UTC()), nil
}

// PreviewPayment renders the receipt for the composed instruments as they
// stand, without committing anything.
func (s *Service) PreviewPayment(ctx context.Context, id string, req domain.CompletePaymentRequest) (domain.ReceiptDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return domain.ReceiptDocument{}, err
	}
	customer, err := s.sessionCustomer(ctx, sess)
	if err != nil {
		return domain.ReceiptDocument{}, err
	}
	draft, err := sess.payments.Finalize(customer, req.Direction, req.Note)
	if err != nil {
		return domain.ReceiptDocument{}, err
	}
	return receipt.PaymentPreview(draft.Customer, sess.payments.Instruments(), req.Direction, req.Note, time.Now().UTC()), nil
}

// CompleteSale commits the cart as a sale: the draft is appended to the
// ledger, mirrored to the repository, and the cart is cleared. The bound
// customer stays on the session for follow-up collections.
func (s *Service) CompleteSale(ctx context.Context, id string) (domain.CompleteSaleResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return domain.CompleteSaleResponse{}, err
	}
	customer, err := s.sessionCustomer(ctx, sess)
	if err != nil {
		return domain.CompleteSaleResponse{}, err
	}
	draft, err := sess.cart.Finalize(ctx, customer)
	if err != nil {
		return domain.CompleteSaleResponse{}, err
	}

	tx := s.ledger.Append(draft)
	if err := s.repo.AppendTransaction(ctx, tx); err != nil {
		log.Printf("[service] WARN: failed to persist transaction %s: %v", tx.ID, err)
	}

	sess.cart.Clear()
	s.saveSession(ctx, sess)

	actor, _ := ActorFromContext(ctx)
	log.Printf("[service] sale committed tx=%s customer=%s amount=%s user=%s", tx.ID, customer.ID, tx.Amount.StringFixed(2), actor.Username)
	return domain.CompleteSaleResponse{
		Transaction: tx,
		Receipt:     receipt.FromTransaction(tx),
	}, nil
}

// CompletePayment commits the composed instruments as a collection or
// disbursement and clears the composer.
func (s *Service) CompletePayment(ctx context.Context, id string, req domain.CompletePaymentRequest) (domain.CompleteSaleResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, id)
	if err != nil {
		return domain.CompleteSaleResponse{}, err
	}
	customer, err := s.sessionCustomer(ctx, sess)
	if err != nil {
		return domain.CompleteSaleResponse{}, err
	}
	draft, err := sess.payments.Finalize(customer, req.Direction, req.Note)
	if err != nil {
		return domain.CompleteSaleResponse{}, err
	}

	tx := s.ledger.Append(draft)
	if err := s.repo.AppendTransaction(ctx, tx); err != nil {
		log.Printf("[service] WARN: failed to persist transaction %s: %v", tx.ID, err)
	}

	sess.payments.Clear()
	s.saveSession(ctx, sess)

	actor, _ := ActorFromContext(ctx)
	log.Printf("[service] %s committed tx=%s customer=%s amount=%s user=%s", tx.Kind, tx.ID, customer.ID, tx.Amount.StringFixed(2), actor.Username)
	return domain.CompleteSaleResponse{
		Transaction: tx,
		Receipt:     receipt.FromTransaction(tx),
	}, nil
}

func (s *Service) Transactions(_ context.Context) []domain.Transaction {
	return s.ledger.All()
}

func (s *Service) TransactionsByDate(_ context.Context, day string) ([]domain.Transaction, error) {
	return s.ledger.ByDate(day)
}

// TransactionReceipt re-renders the receipt for a committed entry. The
// projection is pure, so the result matches what was shown at commit time.
func (s *Service) TransactionReceipt(_ context.Context, id string) (domain.ReceiptDocument, error) {
	tx, found := s.ledger.Get(id)
	if !found {
		return domain.ReceiptDocument{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	return receipt.FromTransaction(tx), nil
}

// DailySummary aggregates one calendar day of the ledger. Disbursements
// are reported as a positive magnitude; Net carries the signed sum.
func (s *Service) DailySummary(_ context.Context, day string) (domain.DailySummary, error) {
	entries, err := s.ledger.ByDate(day)
	if err != nil {
		return domain.DailySummary{}, err
	}

	summary := domain.DailySummary{
		Date:          day,
		Sales:         decimal.Zero,
		Collections:   decimal.Zero,
		Disbursements: decimal.Zero,
		Net:           decimal.Zero,
		Transactions:  len(entries),
	}
	for _, tx := range entries {
		switch tx.Kind {
		case domain.TxSale:
			summary.Sales = summary.Sales.Add(tx.Amount)
		case domain.TxPayment:
			summary.Collections = summary.Collections.Add(tx.Amount)
		case domain.TxExpense:
			summary.Disbursements = summary.Disbursements.Add(tx.Amount.Abs())
		}
		summary.Net = summary.Net.Add(tx.Amount)
	}
	return summary, nil
}

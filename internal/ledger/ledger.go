package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"sahasatis/backend/internal/domain"
)

const dayFormat = "2006-01-02"

// Ledger is the in-process append-only transaction history. Entries are
// immutable once appended; there is no update or delete. Durable storage
// is layered on top by the service, which mirrors every append to the
// repository and restores from it at startup.
type Ledger struct {
	mu      sync.RWMutex
	entries []domain.Transaction
}

func New() *Ledger {
	return &Ledger{entries: make([]domain.Transaction, 0, 128)}
}

// Append stamps the draft with a fresh id and the current UTC time and
// stores it. The completed entry is returned so callers can persist and
// render it.
func (l *Ledger) Append(draft domain.TransactionDraft) domain.Transaction {
	tx := domain.Transaction{
		ID:              uuid.NewString(),
		Date:            time.Now().UTC(),
		Kind:            draft.Kind,
		Description:     draft.Description,
		Customer:        draft.Customer,
		Amount:          draft.Amount,
		Items:           draft.Items,
		PaymentMethod:   draft.PaymentMethod,
		Note:            draft.Note,
		DiscountPercent: draft.DiscountPercent,
	}

	l.mu.Lock()
	l.entries = append(l.entries, tx)
	l.mu.Unlock()

	return copyTransaction(tx)
}

// Get returns the entry with the given id, or false when absent.
func (l *Ledger) Get(id string) (domain.Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, tx := range l.entries {
		if tx.ID == id {
			return copyTransaction(tx), true
		}
	}
	return domain.Transaction{}, false
}

// All returns every entry in append order.
func (l *Ledger) All() []domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return copyTransactions(l.entries)
}

// ByDate returns the entries whose date falls on the given calendar day,
// in append order. The key must be formatted as 2006-01-02.
func (l *Ledger) ByDate(day string) ([]domain.Transaction, error) {
	parsed, err := time.Parse(dayFormat, day)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", day)
	}
	want := parsed.Format(dayFormat)

	l.mu.RLock()
	defer l.mu.RUnlock()

	matched := make([]domain.Transaction, 0, 16)
	for _, tx := range l.entries {
		if tx.Date.Format(dayFormat) == want {
			matched = append(matched, copyTransaction(tx))
		}
	}
	return matched, nil
}

// Len reports the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Restore replaces the ledger contents with previously persisted entries,
// used once at startup before the ledger is shared.
func (l *Ledger) Restore(entries []domain.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = copyTransactions(entries)
}

func copyTransaction(tx domain.Transaction) domain.Transaction {
	if len(tx.Items) > 0 {
		items := make([]domain.TransactionItem, len(tx.Items))
		copy(items, tx.Items)
		tx.Items = items
	}
	return tx
}

func copyTransactions(entries []domain.Transaction) []domain.Transaction {
	result := make([]domain.Transaction, len(entries))
	for i, tx := range entries {
		result[i] = copyTransaction(tx)
	}
	return result
}

package payment

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"sahasatis/backend/internal/domain"
)

// Composer accumulates the payment instruments for one collection or
// disbursement before it is committed. Like the cart it is owned by a
// single session; callers serialize access.
type Composer struct {
	instruments []domain.PaymentInstrument
}

func New() *Composer {
	return &Composer{}
}

// Add appends an empty instrument of the given kind and returns its index.
// Check and promissory note instruments start with blank detail blocks so
// the operator can fill fields one at a time.
func (c *Composer) Add(kind domain.InstrumentKind) (int, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("unknown instrument kind %q", kind)
	}

	instrument := domain.PaymentInstrument{Kind: kind}
	switch kind {
	case domain.InstrumentCheck:
		instrument.Check = &domain.CheckDetail{}
	case domain.InstrumentPromissoryNote:
		instrument.PromissoryNote = &domain.PromissoryNoteDetail{}
	}

	c.instruments = append(c.instruments, instrument)
	return len(c.instruments) - 1, nil
}

// Update merges the patch into the instrument at index. Detail patches for
// a variant the instrument does not carry are ignored; the kind itself
// never changes.
func (c *Composer) Update(index int, patch domain.InstrumentPatch) error {
	if index < 0 || index >= len(c.instruments) {
		return fmt.Errorf("%w: %d", domain.ErrIndexOutOfRange, index)
	}

	instrument := &c.instruments[index]
	if patch.Amount != nil {
		instrument.Amount = *patch.Amount
	}
	if patch.Check != nil && instrument.Check != nil {
		applyCheckPatch(instrument.Check, patch.Check)
	}
	if patch.PromissoryNote != nil && instrument.PromissoryNote != nil {
		applyNotePatch(instrument.PromissoryNote, patch.PromissoryNote)
	}
	return nil
}

func applyCheckPatch(detail *domain.CheckDetail, patch *domain.CheckDetailPatch) {
	if patch.Bank != nil {
		detail.Bank = *patch.Bank
	}
	if patch.Branch != nil {
		detail.Branch = *patch.Branch
	}
	if patch.CheckNumber != nil {
		detail.CheckNumber = *patch.CheckNumber
	}
	if patch.AccountNumber != nil {
		detail.AccountNumber = *patch.AccountNumber
	}
	if patch.DueDate != nil {
		detail.DueDate = *patch.DueDate
	}
}

func applyNotePatch(detail *domain.PromissoryNoteDetail, patch *domain.PromissoryNoteDetailPatch) {
	if patch.DebtorName != nil {
		detail.DebtorName = *patch.DebtorName
	}
	if patch.DebtorID != nil {
		detail.DebtorID = *patch.DebtorID
	}
	if patch.BondNumber != nil {
		detail.BondNumber = *patch.BondNumber
	}
	if patch.IssueDate != nil {
		detail.IssueDate = *patch.IssueDate
	}
	if patch.DueDate != nil {
		detail.DueDate = *patch.DueDate
	}
}

// Remove deletes the instrument at index; later instruments shift down.
func (c *Composer) Remove(index int) error {
	if index < 0 || index >= len(c.instruments) {
		return fmt.Errorf("%w: %d", domain.ErrIndexOutOfRange, index)
	}
	c.instruments = append(c.instruments[:index], c.instruments[index+1:]...)
	return nil
}

// Instruments returns a copy of the composer state in add order. Detail
// blocks are deep-copied so callers cannot mutate composer state through
// the returned slice.
func (c *Composer) Instruments() []domain.PaymentInstrument {
	instruments := make([]domain.PaymentInstrument, len(c.instruments))
	for i, instrument := range c.instruments {
		if instrument.Check != nil {
			check := *instrument.Check
			instrument.Check = &check
		}
		if instrument.PromissoryNote != nil {
			note := *instrument.PromissoryNote
			instrument.PromissoryNote = &note
		}
		instruments[i] = instrument
	}
	return instruments
}

// Total sums the parsed amounts. Half-filled rows count as zero, so the
// total is always defined while the operator is still typing.
func (c *Composer) Total() decimal.Decimal {
	total := decimal.Zero
	for _, instrument := range c.instruments {
		total = total.Add(instrument.AmountValue())
	}
	return total
}

// Finalize turns the composed instruments into a draft ledger entry.
// Collections become positive payment entries, disbursements negative
// expense entries. The composer is left untouched; the caller clears it
// after the draft is committed.
func (c *Composer) Finalize(customer domain.Customer, direction domain.PaymentDirection, note string) (domain.TransactionDraft, error) {
	if customer.ID == "" {
		return domain.TransactionDraft{}, domain.ErrMissingCustomer
	}
	if len(c.instruments) == 0 {
		return domain.TransactionDraft{}, domain.ErrNoInstruments
	}
	if !direction.Valid() {
		return domain.TransactionDraft{}, fmt.Errorf("unknown payment direction %q", direction)
	}

	kinds := make([]string, 0, len(c.instruments))
	for _, instrument := range c.instruments {
		kinds = append(kinds, string(instrument.Kind))
	}

	draft := domain.TransactionDraft{
		Customer:      domain.SnapshotOf(customer),
		PaymentMethod: strings.Join(kinds, ", "),
		Note:          note,
	}
	switch direction {
	case domain.DirectionCollection:
		draft.Kind = domain.TxPayment
		draft.Description = "Tahsilat"
		draft.Amount = c.Total()
	case domain.DirectionDisbursement:
		draft.Kind = domain.TxExpense
		draft.Description = "Tediye"
		draft.Amount = c.Total().Neg()
	}
	return draft, nil
}

// Clear drops every instrument.
func (c *Composer) Clear() {
	c.instruments = nil
}

// Snapshot is the serializable composer state for the session store.
type Snapshot struct {
	Instruments []domain.PaymentInstrument `json:"instruments"`
}

func (c *Composer) Snapshot() Snapshot {
	return Snapshot{Instruments: c.Instruments()}
}

func (c *Composer) Restore(snap Snapshot) {
	c.instruments = make([]domain.PaymentInstrument, len(snap.Instruments))
	copy(c.instruments, snap.Instruments)
}

package receipt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sahasatis/backend/internal/domain"
)

// Receipt titles as printed for the operator.
const (
	titleSale         = "Satış Faturası"
	titleCollection   = "Tahsilat Makbuzu"
	titleDisbursement = "Tediye Makbuzu"
)

const dateFormat = "02.01.2006 15:04"

var oneHundred = decimal.NewFromInt(100)

// formatAmount is the single money formatter for receipts. Every amount on
// every document goes through it, so a preview and a later render from the
// stored transaction agree byte-for-byte.
func formatAmount(v decimal.Decimal) string {
	return v.StringFixed(2)
}

func discountLabel(percent decimal.Decimal) string {
	return fmt.Sprintf("İskonto (%%%s)", percent.String())
}

// FromTransaction projects a committed ledger entry into its printable
// document. The projection is pure: the same transaction always yields the
// same document.
func FromTransaction(tx domain.Transaction) domain.ReceiptDocument {
	doc := domain.ReceiptDocument{
		DocumentNumber: tx.ID,
		Date:           tx.Date.Format(dateFormat),
		Customer:       tx.Customer,
		Note:           tx.Note,
	}

	switch tx.Kind {
	case domain.TxSale:
		doc.Title = titleSale
		subtotal := decimal.Zero
		doc.Rows = make([]domain.ReceiptRow, 0, len(tx.Items))
		for _, item := range tx.Items {
			lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			doc.Rows = append(doc.Rows, domain.ReceiptRow{
				Label:     item.Name,
				UnitPrice: formatAmount(item.Price),
				Quantity:  strconv.Itoa(item.Quantity),
				Amount:    formatAmount(lineTotal),
				Note:      item.Note,
			})
		}
		doc.Subtotal = formatAmount(subtotal)
		if tx.DiscountPercent.IsPositive() {
			doc.DiscountLabel = discountLabel(tx.DiscountPercent)
			doc.DiscountAmount = formatAmount(subtotal.Mul(tx.DiscountPercent).Div(oneHundred).Round(2))
		}
		doc.Total = formatAmount(tx.Amount)

	case domain.TxPayment:
		doc.Title = titleCollection
		doc.Rows = []domain.ReceiptRow{{
			Label:  methodLabels(tx.PaymentMethod),
			Amount: formatAmount(tx.Amount),
		}}
		doc.Total = formatAmount(tx.Amount)

	case domain.TxExpense:
		doc.Title = titleDisbursement
		amount := tx.Amount.Abs()
		doc.Rows = []domain.ReceiptRow{{
			Label:  methodLabels(tx.PaymentMethod),
			Amount: formatAmount(amount),
		}}
		doc.Total = formatAmount(amount)
	}

	return doc
}

// SalePreview renders the document for an order that has not been committed
// yet. It takes the clock as a parameter so rendering stays pure.
func SalePreview(customer domain.CustomerSnapshot, items []domain.TransactionItem, totals domain.CartTotals, discountPercent decimal.Decimal, note string, date time.Time) domain.ReceiptDocument {
	doc := domain.ReceiptDocument{
		Title:    titleSale,
		Date:     date.Format(dateFormat),
		Customer: customer,
		Note:     note,
	}

	doc.Rows = make([]domain.ReceiptRow, 0, len(items))
	for _, item := range items {
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		doc.Rows = append(doc.Rows, domain.ReceiptRow{
			Label:     item.Name,
			UnitPrice: formatAmount(item.Price),
			Quantity:  strconv.Itoa(item.Quantity),
			Amount:    formatAmount(lineTotal),
			Note:      item.Note,
		})
	}
	doc.Subtotal = formatAmount(totals.Subtotal)
	if discountPercent.IsPositive() {
		doc.DiscountLabel = discountLabel(discountPercent)
		doc.DiscountAmount = formatAmount(totals.DiscountAmount)
	}
	doc.Total = formatAmount(totals.Total)
	return doc
}

// PaymentPreview renders the document for a collection or disbursement
// before it is committed. Unlike the stored entry, the live composer still
// knows each instrument, so the preview gets one row per instrument with
// its detail where available.
func PaymentPreview(customer domain.CustomerSnapshot, instruments []domain.PaymentInstrument, direction domain.PaymentDirection, note string, date time.Time) domain.ReceiptDocument {
	doc := domain.ReceiptDocument{
		Title:    titleCollection,
		Date:     date.Format(dateFormat),
		Customer: customer,
		Note:     note,
	}
	if direction == domain.DirectionDisbursement {
		doc.Title = titleDisbursement
	}

	total := decimal.Zero
	doc.Rows = make([]domain.ReceiptRow, 0, len(instruments))
	for _, instrument := range instruments {
		amount := instrument.AmountValue()
		total = total.Add(amount)
		doc.Rows = append(doc.Rows, domain.ReceiptRow{
			Label:  instrument.Kind.Label(),
			Amount: formatAmount(amount),
			Note:   instrumentNote(instrument),
		})
	}
	doc.Total = formatAmount(total)
	return doc
}

// instrumentNote summarizes the filled detail fields of a check or
// promissory note row.
func instrumentNote(instrument domain.PaymentInstrument) string {
	switch {
	case instrument.Check != nil:
		parts := make([]string, 0, 3)
		if instrument.Check.Bank != "" {
			parts = append(parts, instrument.Check.Bank)
		}
		if instrument.Check.CheckNumber != "" {
			parts = append(parts, "Çek No: "+instrument.Check.CheckNumber)
		}
		if instrument.Check.DueDate != "" {
			parts = append(parts, "Vade: "+instrument.Check.DueDate)
		}
		return strings.Join(parts, ", ")
	case instrument.PromissoryNote != nil:
		parts := make([]string, 0, 3)
		if instrument.PromissoryNote.BondNumber != "" {
			parts = append(parts, "Senet No: "+instrument.PromissoryNote.BondNumber)
		}
		if instrument.PromissoryNote.DebtorName != "" {
			parts = append(parts, instrument.PromissoryNote.DebtorName)
		}
		if instrument.PromissoryNote.DueDate != "" {
			parts = append(parts, "Vade: "+instrument.PromissoryNote.DueDate)
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// methodLabels converts the stored comma-joined instrument kinds into the
// operator-facing labels.
func methodLabels(paymentMethod string) string {
	if paymentMethod == "" {
		return ""
	}
	kinds := strings.Split(paymentMethod, ",")
	labels := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		labels = append(labels, domain.InstrumentKind(strings.TrimSpace(kind)).Label())
	}
	return strings.Join(labels, ", ")
}

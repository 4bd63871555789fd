package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"sahasatis/backend/internal/domain"
	"sahasatis/backend/internal/store"
)

// Catalog is the read-only product lookup the cart validates against.
// store.Repository satisfies it.
type Catalog interface {
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
}

var oneHundred = decimal.NewFromInt(100)

// Cart is the mutable state of one in-progress order. It is owned by a
// session, not shared; callers serialize access themselves. Totals are
// derived from current catalog prices on every read, so a price change
// between adding a line and finalizing is always reflected.
type Cart struct {
	catalog    Catalog
	lines      []domain.CartLine
	discount   decimal.Decimal
	note       string
	customerID string
}

func New(catalog Catalog) *Cart {
	return &Cart{catalog: catalog}
}

func (c *Cart) SetCustomer(customerID string) {
	c.customerID = customerID
}

func (c *Cart) CustomerID() string {
	return c.customerID
}

// Lines returns a copy of the cart lines in first-add order.
func (c *Cart) Lines() []domain.CartLine {
	lines := make([]domain.CartLine, len(c.lines))
	copy(lines, c.lines)
	return lines
}

func (c *Cart) Discount() decimal.Decimal {
	return c.discount
}

func (c *Cart) Note() string {
	return c.note
}

// SetQuantity upserts the line for productID. Quantity zero removes the
// line. The position of an existing line is preserved; a new line goes to
// the end. Invalid quantities are reported, never clamped.
func (c *Cart) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: quantity %d is negative", domain.ErrInvalidQuantity, quantity)
	}
	if quantity == 0 {
		c.Remove(productID)
		return nil
	}

	product, err := c.catalog.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
		}
		return err
	}
	if quantity > product.Stock {
		return fmt.Errorf("%w: quantity %d exceeds stock %d for %s", domain.ErrInvalidQuantity, quantity, product.Stock, productID)
	}

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = quantity
			return nil
		}
	}
	c.lines = append(c.lines, domain.CartLine{ProductID: productID, Quantity: quantity})
	return nil
}

// Remove deletes the line for productID. Absent lines are a no-op.
func (c *Cart) Remove(productID string) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) SetDiscount(percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(oneHundred) {
		return fmt.Errorf("%w: %s%% is outside [0,100]", domain.ErrInvalidDiscount, percent)
	}
	c.discount = percent
	return nil
}

func (c *Cart) SetNote(note string) {
	c.note = note
}

// SetLineNote attaches a free-form note to an existing line. Absent lines
// are a no-op.
func (c *Cart) SetLineNote(productID string, note string) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Note = note
			return
		}
	}
}

// Clear resets the cart to empty with zero discount and no note. The bound
// customer is kept; the session decides when to drop it.
func (c *Cart) Clear() {
	c.lines = nil
	c.discount = decimal.Zero
	c.note = ""
}

// Totals recomputes from current catalog prices. Lines whose product has
// vanished from the catalog contribute nothing. The discount amount is
// rounded half-up to two decimal places, matching receipt display.
func (c *Cart) Totals(ctx context.Context) (domain.CartTotals, error) {
	subtotal := decimal.Zero
	for _, line := range c.lines {
		product, err := c.catalog.GetProductByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return domain.CartTotals{}, err
		}
		subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	discountAmount := subtotal.Mul(c.discount).Div(oneHundred).Round(2)
	return domain.CartTotals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Total:          subtotal.Sub(discountAmount),
	}, nil
}

// Finalize resolves every line against the catalog, capturing name and
// price as of this instant, and returns a draft sale transaction. Lines
// whose product no longer exists are dropped rather than failing the whole
// order. The draft is not appended anywhere; committing is the caller's
// explicit second step.
func (c *Cart) Finalize(ctx context.Context, customer domain.Customer) (domain.TransactionDraft, error) {
	if len(c.lines) == 0 {
		return domain.TransactionDraft{}, domain.ErrEmptyCart
	}
	if customer.ID == "" {
		return domain.TransactionDraft{}, domain.ErrMissingCustomer
	}

	items := make([]domain.TransactionItem, 0, len(c.lines))
	subtotal := decimal.Zero
	for _, line := range c.lines {
		product, err := c.catalog.GetProductByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return domain.TransactionDraft{}, err
		}
		items = append(items, domain.TransactionItem{
			ProductID: line.ProductID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Price:     product.Price,
			Note:      line.Note,
		})
		subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	discountAmount := subtotal.Mul(c.discount).Div(oneHundred).Round(2)
	return domain.TransactionDraft{
		Kind:            domain.TxSale,
		Description:     "Satış",
		Customer:        domain.SnapshotOf(customer),
		Amount:          subtotal.Sub(discountAmount),
		Items:           items,
		Note:            c.note,
		DiscountPercent: c.discount,
	}, nil
}

// Snapshot is the serializable cart state for the session store. The
// catalog binding is not part of it; Restore re-attaches the live catalog.
type Snapshot struct {
	Lines      []domain.CartLine `json:"lines"`
	Discount   decimal.Decimal   `json:"discount"`
	Note       string            `json:"note,omitempty"`
	CustomerID string            `json:"customer_id,omitempty"`
}

func (c *Cart) Snapshot() Snapshot {
	return Snapshot{
		Lines:      c.Lines(),
		Discount:   c.discount,
		Note:       c.note,
		CustomerID: c.customerID,
	}
}

func (c *Cart) Restore(snap Snapshot) {
	c.lines = make([]domain.CartLine, len(snap.Lines))
	copy(c.lines, snap.Lines)
	c.discount = snap.Discount
	c.note = snap.Note
	c.customerID = snap.CustomerID
}

package cart

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailware/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
	"github.com/retailware/tillpoint-backend/pkg/types"
)

// Line is one cart entry after unit normalization.
type Line struct {
	ProductID      uuid.UUID
	Name           string
	Unit           enums.Unit
	Qty            decimal.Decimal
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
}

// Total returns qty*unit_price - discount at currency precision.
func (l Line) Total() decimal.Decimal {
	gross := l.Qty.Mul(l.UnitPrice)
	return types.RoundCurrency(gross.Sub(l.DiscountAmount))
}

// Totals is the derived money summary of a cart.
type Totals struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	GrandTotal     decimal.Decimal
}

// Cart accumulates line items in memory and derives totals on every
// mutation. It performs no I/O; callers load product data themselves.
type Cart struct {
	lines    []Line
	order    map[uuid.UUID]int
	tax      decimal.Decimal
	discount decimal.Decimal
	totals   Totals
}

// LineInput carries the raw values for an add or update.
type LineInput struct {
	ProductID      uuid.UUID
	Name           string
	Unit           enums.Unit
	Qty            decimal.Decimal
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	// PerPackage marks a quantity expressed in packaging units; it is
	// multiplied through PackagingSize before rounding.
	PerPackage    bool
	PackagingSize decimal.Decimal
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{order: map[uuid.UUID]int{}}
}

// AddLine inserts or replaces the line for the input's product.
func (c *Cart) AddLine(input LineInput) error {
	line, err := normalizeLine(input)
	if err != nil {
		return err
	}
	if idx, ok := c.order[line.ProductID]; ok {
		c.lines[idx] = line
	} else {
		c.order[line.ProductID] = len(c.lines)
		c.lines = append(c.lines, line)
	}
	c.recompute()
	return nil
}

// UpdateQty changes the quantity on an existing line.
func (c *Cart) UpdateQty(productID uuid.UUID, qty decimal.Decimal) error {
	idx, ok := c.order[productID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	line := c.lines[idx]
	rounded := qty.Round(line.Unit.QuantityScale())
	if !rounded.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	line.Qty = rounded
	c.lines[idx] = line
	c.recompute()
	return nil
}

// RemoveLine drops the line for the given product.
func (c *Cart) RemoveLine(productID uuid.UUID) {
	idx, ok := c.order[productID]
	if !ok {
		return
	}
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	delete(c.order, productID)
	for i := idx; i < len(c.lines); i++ {
		c.order[c.lines[i].ProductID] = i
	}
	c.recompute()
}

// SetTax sets the cart-level tax amount.
func (c *Cart) SetTax(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "tax amount cannot be negative")
	}
	c.tax = types.RoundCurrency(amount)
	c.recompute()
	return nil
}

// SetDiscount sets the cart-level discount amount.
func (c *Cart) SetDiscount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount amount cannot be negative")
	}
	c.discount = types.RoundCurrency(amount)
	c.recompute()
	return nil
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []Line {
	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// Totals returns the summary computed at the last mutation.
func (c *Cart) Totals() Totals {
	return c.totals
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) recompute() {
	subtotal := decimal.Zero
	lineDiscounts := decimal.Zero
	for _, line := range c.lines {
		subtotal = subtotal.Add(line.Qty.Mul(line.UnitPrice))
		lineDiscounts = lineDiscounts.Add(line.DiscountAmount)
	}
	subtotal = types.RoundCurrency(subtotal)
	discount := types.RoundCurrency(c.discount.Add(lineDiscounts))
	grand := types.RoundCurrency(subtotal.Add(c.tax).Sub(discount))
	c.totals = Totals{
		Subtotal:       subtotal,
		TaxAmount:      c.tax,
		DiscountAmount: discount,
		GrandTotal:     types.ClampNonNegative(grand),
	}
}

func normalizeLine(input LineInput) (Line, error) {
	if input.ProductID == uuid.Nil {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.UnitPrice.IsNegative() {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if input.DiscountAmount.IsNegative() {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "discount cannot be negative")
	}

	qty := input.Qty
	if input.PerPackage {
		size := input.PackagingSize
		if !size.IsPositive() {
			return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "packaging size must be positive for packaged lines")
		}
		qty = qty.Mul(size)
	}
	qty = qty.Round(input.Unit.QuantityScale())
	if !qty.IsPositive() {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity rounds to zero for unit %q", input.Unit))
	}

	line := Line{
		ProductID:      input.ProductID,
		Name:           input.Name,
		Unit:           input.Unit,
		Qty:            qty,
		UnitPrice:      types.RoundCurrency(input.UnitPrice),
		DiscountAmount: types.RoundCurrency(input.DiscountAmount),
	}
	if line.DiscountAmount.GreaterThan(line.Qty.Mul(line.UnitPrice)) {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds line amount")
	}
	return line, nil
}

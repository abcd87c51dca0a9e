package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailware/tillpoint-backend/pkg/enums"
)

// CheckoutItem is one requested cart line.
type CheckoutItem struct {
	ProductID uuid.UUID
	Qty       decimal.Decimal
	// PerPackage sells in packaging units; the quantity is multiplied by
	// the product's packaging size.
	PerPackage     bool
	DiscountAmount decimal.Decimal
}

// QuoteInput prices a cart without settling it.
type QuoteInput struct {
	Items          []CheckoutItem
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
}

// QuoteLine is one priced line in a quote response.
type QuoteLine struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Name           string          `json:"name"`
	Unit           enums.Unit      `json:"unit"`
	Qty            decimal.Decimal `json:"qty"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// Quote is the derived money summary for a cart.
type Quote struct {
	Lines          []QuoteLine     `json:"lines"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// CheckoutInput is the full settlement submission from the register.
type CheckoutInput struct {
	BranchID       uuid.UUID
	CustomerID     *uuid.UUID
	Items          []CheckoutItem
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal

	PaymentStatus  enums.PaymentStatus
	PaymentMethod  enums.PaymentMethod
	PaidAmount     decimal.Decimal
	GiftCardNumber *string
	PointsToRedeem int
	// DueDate applies to the credit portion, when one remains.
	DueDate *time.Time
}

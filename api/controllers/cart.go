package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailware/tillpoint-backend/api/responses"
	"github.com/retailware/tillpoint-backend/api/validators"
	"github.com/retailware/tillpoint-backend/internal/settlement"
	"github.com/retailware/tillpoint-backend/pkg/logger"
)

type cartItemRequest struct {
	ProductID      uuid.UUID       `json:"product_id" validate:"required"`
	Qty            decimal.Decimal `json:"qty" validate:"required"`
	PerPackage     bool            `json:"per_package"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type cartQuoteRequest struct {
	Items          []cartItemRequest `json:"items" validate:"required,min=1,dive"`
	TaxAmount      decimal.Decimal   `json:"tax_amount"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
}

func checkoutItems(items []cartItemRequest) []settlement.CheckoutItem {
	out := make([]settlement.CheckoutItem, 0, len(items))
	for _, item := range items {
		out = append(out, settlement.CheckoutItem{
			ProductID:      item.ProductID,
			Qty:            item.Qty,
			PerPackage:     item.PerPackage,
			DiscountAmount: item.DiscountAmount,
		})
	}
	return out
}

// CartQuote prices a cart without settling or reserving anything.
func CartQuote(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartQuoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), settlement.QuoteInput{
			Items:          checkoutItems(req.Items),
			TaxAmount:      req.TaxAmount,
			DiscountAmount: req.DiscountAmount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

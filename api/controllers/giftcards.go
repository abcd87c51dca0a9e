package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailware/tillpoint-backend/api/responses"
	"github.com/retailware/tillpoint-backend/api/validators"
	"github.com/retailware/tillpoint-backend/internal/giftcards"
	"github.com/retailware/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
	"github.com/retailware/tillpoint-backend/pkg/logger"
)

// GiftCardLookup answers register lookups for spendable cards.
func GiftCardLookup(svc giftcards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := cardNumberFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Lookup(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

type registerCardRequest struct {
	CardNumber string `json:"card_number" validate:"required"`
}

// GiftCardRegister records a new physical card in the free state.
func GiftCardRegister(svc giftcards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerCardRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		card, err := svc.Register(r.Context(), req.CardNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, card)
	}
}

type configureCardRequest struct {
	Denomination decimal.Decimal `json:"denomination" validate:"required"`
}

// GiftCardConfigure assigns a denomination to a free card.
func GiftCardConfigure(svc giftcards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := cardNumberFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req configureCardRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		card, err := svc.Configure(r.Context(), giftcards.ConfigureInput{
			CardNumber:   number,
			Denomination: req.Denomination,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, card)
	}
}

type sellCardRequest struct {
	CardNumber    string              `json:"card_number" validate:"required"`
	BranchID      *uuid.UUID          `json:"branch_id"`
	CustomerID    *uuid.UUID          `json:"customer_id"`
	PaymentMethod enums.PaymentMethod `json:"payment_method" validate:"required"`
	ExpiryMonths  int                 `json:"expiry_months" validate:"min=0"`
}

// GiftCardSell activates a configured card and records the purchase sale.
func GiftCardSell(svc giftcards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sellCardRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !req.PaymentMethod.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method"))
			return
		}
		branchID, err := resolveBranchID(r, req.BranchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Sell(r.Context(), giftcards.SellInput{
			CardNumber:    req.CardNumber,
			BranchID:      branchID,
			CustomerID:    req.CustomerID,
			PaymentMethod: req.PaymentMethod,
			ExpiryMonths:  req.ExpiryMonths,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// GiftCardDeactivate takes a card out of circulation, remembering its state.
func GiftCardDeactivate(svc giftcards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := cardNumberFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		card, err := svc.Deactivate(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, card)
	}
}

// GiftCardReactivate returns an inactive card to its pre-deactivation state.
func GiftCardReactivate(svc giftcards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := cardNumberFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		card, err := svc.Reactivate(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, card)
	}
}

// GiftCardTransactions lists the card's ledger, newest first.
func GiftCardTransactions(svc giftcards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := cardNumberFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		txns, err := svc.Transactions(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txns)
	}
}

func cardNumberFromPath(r *http.Request) (string, error) {
	number := strings.TrimSpace(chi.URLParam(r, "cardNumber"))
	if number == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "card number is required")
	}
	return number, nil
}

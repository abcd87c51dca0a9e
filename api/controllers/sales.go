package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailware/tillpoint-backend/api/middleware"
	"github.com/retailware/tillpoint-backend/api/responses"
	"github.com/retailware/tillpoint-backend/api/validators"
	"github.com/retailware/tillpoint-backend/internal/sales"
	"github.com/retailware/tillpoint-backend/internal/settlement"
	"github.com/retailware/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
	"github.com/retailware/tillpoint-backend/pkg/logger"
	"github.com/retailware/tillpoint-backend/pkg/pagination"
)

type checkoutRequest struct {
	BranchID       *uuid.UUID        `json:"branch_id"`
	CustomerID     *uuid.UUID        `json:"customer_id"`
	Items          []cartItemRequest `json:"items" validate:"required,min=1,dive"`
	TaxAmount      decimal.Decimal   `json:"tax_amount"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`

	PaymentStatus  enums.PaymentStatus `json:"payment_status" validate:"required"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	PaidAmount     decimal.Decimal     `json:"paid_amount"`
	GiftCardNumber *string             `json:"gift_card_number"`
	PointsToRedeem int                 `json:"points_to_redeem" validate:"min=0"`
	DueDate        *time.Time          `json:"due_date"`
}

// SaleCheckout settles a cart into a completed sale.
func SaleCheckout(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !req.PaymentStatus.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status"))
			return
		}
		if req.PaymentMethod != "" && !req.PaymentMethod.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method"))
			return
		}

		branchID, err := resolveBranchID(r, req.BranchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Checkout(r.Context(), settlement.CheckoutInput{
			BranchID:       branchID,
			CustomerID:     req.CustomerID,
			Items:          checkoutItems(req.Items),
			TaxAmount:      req.TaxAmount,
			DiscountAmount: req.DiscountAmount,
			PaymentStatus:  req.PaymentStatus,
			PaymentMethod:  req.PaymentMethod,
			PaidAmount:     req.PaidAmount,
			GiftCardNumber: req.GiftCardNumber,
			PointsToRedeem: req.PointsToRedeem,
			DueDate:        req.DueDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

// SaleList returns one cursor page of sales matching the query filters.
func SaleList(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, filters, err := saleListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), params, *filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SaleDetail returns one sale with its items and payments, deleted included.
func SaleDetail(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := saleIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sale, err := svc.Detail(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// SaleCancel voids a pending sale.
func SaleCancel(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := saleIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sale, err := svc.Cancel(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// SaleDelete soft-deletes a completed sale and returns its items to stock.
func SaleDelete(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := saleIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SaleRestore brings a soft-deleted sale back without re-deducting stock.
func SaleRestore(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := saleIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Restore(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type addPaymentRequest struct {
	Amount      decimal.Decimal     `json:"amount" validate:"required"`
	Method      enums.PaymentMethod `json:"method" validate:"required"`
	Description *string             `json:"description"`
}

// SaleAddPayment collects a top-up against the credit portion of a sale.
func SaleAddPayment(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := saleIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req addPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.AddPayment(r.Context(), id, sales.AddPaymentInput{
			Amount:      req.Amount,
			Method:      req.Method,
			Description: req.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

func saleIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "saleId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id must be a uuid")
	}
	return id, nil
}

// resolveBranchID prefers the explicit body value, falling back to the
// branch claimed in the access token.
func resolveBranchID(r *http.Request, explicit *uuid.UUID) (uuid.UUID, error) {
	if explicit != nil && *explicit != uuid.Nil {
		return *explicit, nil
	}
	raw := middleware.BranchIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id must be a uuid")
	}
	return id, nil
}

func saleListQuery(r *http.Request) (pagination.Params, *sales.SaleFilters, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, nil, err
	}
	params := pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}

	filters := &sales.SaleFilters{}
	if filters.BranchID, err = validators.ParseQueryUUID(r, "branch_id"); err != nil {
		return pagination.Params{}, nil, err
	}
	if filters.CustomerID, err = validators.ParseQueryUUID(r, "customer_id"); err != nil {
		return pagination.Params{}, nil, err
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, parseErr := enums.ParseSaleStatus(raw)
		if parseErr != nil {
			return pagination.Params{}, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
		status, parseErr := enums.ParsePaymentStatus(raw)
		if parseErr != nil {
			return pagination.Params{}, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid payment status filter")
		}
		filters.PaymentStatus = &status
	}
	if filters.DateFrom, err = parseQueryTime(r, "date_from"); err != nil {
		return pagination.Params{}, nil, err
	}
	if filters.DateTo, err = parseQueryTime(r, "date_to"); err != nil {
		return pagination.Params{}, nil, err
	}
	if filters.IncludeDeleted, err = validators.ParseQueryBool(r, "include_deleted", false); err != nil {
		return pagination.Params{}, nil, err
	}
	return params, filters, nil
}

func parseQueryTime(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be RFC3339").WithDetails(map[string]any{"field": key})
	}
	return &t, nil
}

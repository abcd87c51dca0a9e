package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/retailware/tillpoint-backend/api/responses"
	"github.com/retailware/tillpoint-backend/api/validators"
	"github.com/retailware/tillpoint-backend/internal/loyalty"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
	"github.com/retailware/tillpoint-backend/pkg/logger"
	"github.com/retailware/tillpoint-backend/pkg/pagination"
)

// LoyaltyHistory lists a customer's point movements, newest first.
func LoyaltyHistory(svc loyalty.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := uuid.Parse(chi.URLParam(r, "customerId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "customer id must be a uuid"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		history, err := svc.History(r.Context(), customerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

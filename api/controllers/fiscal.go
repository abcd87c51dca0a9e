package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/retailware/tillpoint-backend/api/middleware"
	"github.com/retailware/tillpoint-backend/api/responses"
	"github.com/retailware/tillpoint-backend/internal/fiscal"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
	"github.com/retailware/tillpoint-backend/pkg/logger"
)

// FiscalStatus answers the register's shift-status poll.
func FiscalStatus(svc fiscal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, err := branchFromQueryOrToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := svc.Status(r.Context(), branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// FiscalShiftOpen opens a shift for the caller's branch.
func FiscalShiftOpen(svc fiscal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, err := branchFromQueryOrToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		openedBy := userIDFromToken(r)
		shift, err := svc.OpenShift(r.Context(), branchID, openedBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, shift)
	}
}

// FiscalShiftClose closes the branch's open shift.
func FiscalShiftClose(svc fiscal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, err := branchFromQueryOrToken(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shift, err := svc.CloseShift(r.Context(), branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shift)
	}
}

func branchFromQueryOrToken(r *http.Request) (uuid.UUID, error) {
	if raw := r.URL.Query().Get("branch_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id must be a uuid")
		}
		return id, nil
	}
	return resolveBranchID(r, nil)
}

func userIDFromToken(r *http.Request) *uuid.UUID {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

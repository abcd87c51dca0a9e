package middleware

import (
	"net/http"

	"github.com/retailware/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
)

func roleFromRequest(r *http.Request) (enums.StaffRole, error) {
	raw := RoleFromContext(r.Context())
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing staff role")
	}
	role, err := enums.ParseStaffRole(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "unknown staff role")
	}
	return role, nil
}

package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/retailware/tillpoint-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	BranchID *uuid.UUID
	Role     enums.StaffRole
}

// AccessTokenClaims represents the typed JWT issued to register staff.
type AccessTokenClaims struct {
	UserID   uuid.UUID       `json:"user_id"`
	BranchID *uuid.UUID      `json:"branch_id,omitempty"`
	Role     enums.StaffRole `json:"role"`
	jwt.RegisteredClaims
}

package loyalty

import (
	"github.com/retailware/tillpoint-backend/pkg/db/models"
)

// TransactionList is one cursor page of a customer's point history.
type TransactionList struct {
	Items      []models.LoyaltyTransaction `json:"items"`
	NextCursor *string                     `json:"next_cursor,omitempty"`
}

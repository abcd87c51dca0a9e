package giftcards

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailware/tillpoint-backend/pkg/db/models"
	"github.com/retailware/tillpoint-backend/pkg/enums"
)

// CardSummary is the lookup response shown at the register.
type CardSummary struct {
	CardNumber     string               `json:"card_number"`
	Status         enums.GiftCardStatus `json:"status"`
	Denomination   decimal.Decimal      `json:"denomination"`
	CurrentBalance decimal.Decimal      `json:"current_balance"`
	ExpiryDate     *time.Time           `json:"expiry_date,omitempty"`
	CustomerID     *uuid.UUID           `json:"customer_id,omitempty"`
}

// ConfigureInput assigns a denomination to a free card so it can be sold.
type ConfigureInput struct {
	CardNumber   string
	Denomination decimal.Decimal
}

// SellInput captures a gift card sale at the register.
type SellInput struct {
	CardNumber    string
	BranchID      uuid.UUID
	CustomerID    *uuid.UUID
	PaymentMethod enums.PaymentMethod
	// ExpiryMonths overrides the configured default when positive.
	ExpiryMonths int
}

// SellResult returns the created sale together with the activated card.
type SellResult struct {
	Sale *models.Sale     `json:"sale"`
	Card *models.GiftCard `json:"card"`
}

func summarize(card *models.GiftCard) *CardSummary {
	return &CardSummary{
		CardNumber:     card.CardNumber,
		Status:         card.Status,
		Denomination:   card.Denomination,
		CurrentBalance: card.CurrentBalance,
		ExpiryDate:     card.ExpiryDate,
		CustomerID:     card.CustomerID,
	}
}

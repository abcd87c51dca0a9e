package enums

import "fmt"

// GiftCardStatus tracks where a card sits in its lifecycle.
type GiftCardStatus string

const (
	GiftCardStatusFree       GiftCardStatus = "free"
	GiftCardStatusConfigured GiftCardStatus = "configured"
	GiftCardStatusActive     GiftCardStatus = "active"
	GiftCardStatusDepleted   GiftCardStatus = "depleted"
	GiftCardStatusExpired    GiftCardStatus = "expired"
	GiftCardStatusInactive   GiftCardStatus = "inactive"
)

var validGiftCardStatuses = []GiftCardStatus{
	GiftCardStatusFree,
	GiftCardStatusConfigured,
	GiftCardStatusActive,
	GiftCardStatusDepleted,
	GiftCardStatusExpired,
	GiftCardStatusInactive,
}

// String implements fmt.Stringer.
func (g GiftCardStatus) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GiftCardStatus.
func (g GiftCardStatus) IsValid() bool {
	for _, candidate := range validGiftCardStatuses {
		if candidate == g {
			return true
		}
	}
	return false
}

// IsSellable reports whether the card may be sold to a customer.
// Only configured cards (denomination assigned, not yet handed out) qualify.
func (g GiftCardStatus) IsSellable() bool {
	return g == GiftCardStatusConfigured
}

// IsRedeemable reports whether the card may be applied against a sale.
func (g GiftCardStatus) IsRedeemable() bool {
	return g == GiftCardStatusActive
}

// IsSpendTerminal reports whether the card can never be spent again without
// admin intervention.
func (g GiftCardStatus) IsSpendTerminal() bool {
	return g == GiftCardStatusDepleted || g == GiftCardStatusExpired
}

// ParseGiftCardStatus converts raw input into a GiftCardStatus.
func ParseGiftCardStatus(value string) (GiftCardStatus, error) {
	for _, candidate := range validGiftCardStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gift card status %q", value)
}

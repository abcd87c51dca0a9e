package enums

import "fmt"

// LoyaltyTransactionType labels a customer point movement.
type LoyaltyTransactionType string

const (
	LoyaltyTxnEarn   LoyaltyTransactionType = "earn"
	LoyaltyTxnRedeem LoyaltyTransactionType = "redeem"
	LoyaltyTxnAdjust LoyaltyTransactionType = "adjust"
)

var validLoyaltyTransactionTypes = []LoyaltyTransactionType{
	LoyaltyTxnEarn,
	LoyaltyTxnRedeem,
	LoyaltyTxnAdjust,
}

// String implements fmt.Stringer.
func (l LoyaltyTransactionType) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LoyaltyTransactionType.
func (l LoyaltyTransactionType) IsValid() bool {
	for _, candidate := range validLoyaltyTransactionTypes {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLoyaltyTransactionType converts raw input into a LoyaltyTransactionType.
func ParseLoyaltyTransactionType(value string) (LoyaltyTransactionType, error) {
	for _, candidate := range validLoyaltyTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid loyalty transaction type %q", value)
}

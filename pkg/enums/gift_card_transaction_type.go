package enums

import "fmt"

// GiftCardTransactionType labels a gift card ledger entry.
type GiftCardTransactionType string

const (
	GiftCardTxnIssue    GiftCardTransactionType = "issue"
	GiftCardTxnActivate GiftCardTransactionType = "activate"
	GiftCardTxnRedeem   GiftCardTransactionType = "redeem"
	GiftCardTxnRefund   GiftCardTransactionType = "refund"
	GiftCardTxnAdjust   GiftCardTransactionType = "adjust"
	GiftCardTxnExpire   GiftCardTransactionType = "expire"
	GiftCardTxnCancel   GiftCardTransactionType = "cancel"
)

var validGiftCardTransactionTypes = []GiftCardTransactionType{
	GiftCardTxnIssue,
	GiftCardTxnActivate,
	GiftCardTxnRedeem,
	GiftCardTxnRefund,
	GiftCardTxnAdjust,
	GiftCardTxnExpire,
	GiftCardTxnCancel,
}

// String implements fmt.Stringer.
func (g GiftCardTransactionType) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GiftCardTransactionType.
func (g GiftCardTransactionType) IsValid() bool {
	for _, candidate := range validGiftCardTransactionTypes {
		if candidate == g {
			return true
		}
	}
	return false
}

// Debits reports whether the entry reduces the card balance.
func (g GiftCardTransactionType) Debits() bool {
	return g == GiftCardTxnRedeem || g == GiftCardTxnExpire || g == GiftCardTxnCancel
}

// ParseGiftCardTransactionType converts raw input into a GiftCardTransactionType.
func ParseGiftCardTransactionType(value string) (GiftCardTransactionType, error) {
	for _, candidate := range validGiftCardTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gift card transaction type %q", value)
}

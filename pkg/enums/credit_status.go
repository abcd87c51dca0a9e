package enums

import "fmt"

// CreditStatus tracks repayment of a customer credit.
type CreditStatus string

const (
	CreditStatusPending CreditStatus = "pending"
	CreditStatusPartial CreditStatus = "partial"
	CreditStatusPaid    CreditStatus = "paid"
)

var validCreditStatuses = []CreditStatus{
	CreditStatusPending,
	CreditStatusPartial,
	CreditStatusPaid,
}

// String implements fmt.Stringer.
func (c CreditStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CreditStatus.
func (c CreditStatus) IsValid() bool {
	for _, candidate := range validCreditStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCreditStatus converts raw input into a CreditStatus.
func ParseCreditStatus(value string) (CreditStatus, error) {
	for _, candidate := range validCreditStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid credit status %q", value)
}

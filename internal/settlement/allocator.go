package settlement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/retailware/tillpoint-backend/pkg/config"
	"github.com/retailware/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/retailware/tillpoint-backend/pkg/errors"
	"github.com/retailware/tillpoint-backend/pkg/types"
)

// CardSnapshot is the gift card state read inside the settlement transaction.
// The balance here becomes the optimistic-concurrency check on debit.
type CardSnapshot struct {
	Status     enums.GiftCardStatus
	Balance    decimal.Decimal
	ExpiryDate *time.Time
}

// PlanInput carries everything the allocator needs to partition a total.
type PlanInput struct {
	GrandTotal    decimal.Decimal
	PaymentStatus enums.PaymentStatus

	// PaidAmount is the operator-entered amount, consulted only for
	// partial settlements. Paid and credit settlements derive it.
	PaidAmount decimal.Decimal

	// Card is nil when no gift card is applied.
	Card *CardSnapshot

	PointsToRedeem int
	CustomerPoints int
	HasCustomer    bool
}

// Plan is the allocation of a grand total across the four instruments.
// The invariant GiftCardAmount + PointsDiscount + PaidAmount + CreditAmount
// == GrandTotal holds for every plan the allocator returns.
type Plan struct {
	GrandTotal     decimal.Decimal
	GiftCardAmount decimal.Decimal
	PointsRedeemed int
	PointsDiscount decimal.Decimal
	PaidAmount     decimal.Decimal
	CreditAmount   decimal.Decimal

	// PaymentStatus is the classification after allocation. A partial
	// settlement whose credit portion resolves to zero comes back as paid.
	PaymentStatus enums.PaymentStatus
}

// Allocate partitions the grand total with fixed instrument precedence:
// gift card first, then loyalty points, then the paid/credit split.
// It mutates nothing; the caller commits the plan atomically.
func Allocate(input PlanInput, rules config.LoyaltyConfig, now time.Time) (Plan, error) {
	if !input.PaymentStatus.IsValid() {
		return Plan{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid payment status %q", input.PaymentStatus))
	}
	if input.GrandTotal.IsNegative() {
		return Plan{}, pkgerrors.New(pkgerrors.CodeValidation, "grand total cannot be negative")
	}

	plan := Plan{
		GrandTotal:    types.RoundCurrency(input.GrandTotal),
		PaymentStatus: input.PaymentStatus,
	}
	due := plan.GrandTotal

	if input.Card != nil {
		applied, err := applyGiftCard(*input.Card, due, now)
		if err != nil {
			return Plan{}, err
		}
		plan.GiftCardAmount = applied
		due = due.Sub(applied)
	}

	if input.PointsToRedeem > 0 {
		points, discount, err := applyPoints(input, rules, due)
		if err != nil {
			return Plan{}, err
		}
		plan.PointsRedeemed = points
		plan.PointsDiscount = discount
		due = due.Sub(discount)
	}

	switch input.PaymentStatus {
	case enums.PaymentStatusPaid:
		plan.PaidAmount = due
	case enums.PaymentStatusCredit:
		if !input.HasCustomer {
			return Plan{}, pkgerrors.New(pkgerrors.CodeValidation, "credit sale requires a customer")
		}
		plan.CreditAmount = due
	case enums.PaymentStatusPartial:
		if input.PaidAmount.IsNegative() {
			return Plan{}, pkgerrors.New(pkgerrors.CodeValidation, "paid amount cannot be negative")
		}
		// Entered amounts above the remainder clamp down, never over-pay.
		plan.PaidAmount = types.MinDecimal(types.RoundCurrency(input.PaidAmount), due)
		plan.CreditAmount = due.Sub(plan.PaidAmount)
		if plan.CreditAmount.IsPositive() && !input.HasCustomer {
			return Plan{}, pkgerrors.New(pkgerrors.CodeValidation, "partial sale with a credit remainder requires a customer")
		}
	}

	if plan.CreditAmount.IsZero() {
		plan.PaymentStatus = enums.PaymentStatusPaid
	} else if plan.PaidAmount.IsPositive() || plan.PaymentStatus == enums.PaymentStatusPartial {
		plan.PaymentStatus = enums.PaymentStatusPartial
	}

	return plan, nil
}

func applyGiftCard(card CardSnapshot, due decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if !card.Status.IsRedeemable() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("gift card is %s, only active cards can be redeemed", card.Status))
	}
	if card.ExpiryDate != nil && card.ExpiryDate.Before(now) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeStateConflict, "gift card has expired")
	}
	if !card.Balance.IsPositive() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeStateConflict, "gift card has no remaining balance")
	}
	return types.MinDecimal(card.Balance, due), nil
}

func applyPoints(input PlanInput, rules config.LoyaltyConfig, due decimal.Decimal) (int, decimal.Decimal, error) {
	if !input.HasCustomer {
		return 0, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "points redemption requires a customer")
	}
	if rules.RedemptionRate <= 0 {
		return 0, decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, "loyalty redemption rate is not configured")
	}
	if input.PointsToRedeem < rules.MinRedemptionPoints {
		return 0, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("minimum redemption is %d points", rules.MinRedemptionPoints))
	}

	points := input.PointsToRedeem
	if points > input.CustomerPoints {
		points = input.CustomerPoints
	}

	rate := decimal.NewFromInt(int64(rules.RedemptionRate))
	discount := pointsDiscount(points, rate)
	if discount.GreaterThan(due) {
		// Spend only the points the remaining amount can absorb.
		points = int(due.Mul(rate).IntPart())
		discount = pointsDiscount(points, rate)
	}
	if points < rules.MinRedemptionPoints {
		return 0, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("minimum redemption is %d points", rules.MinRedemptionPoints))
	}
	return points, discount, nil
}

func pointsDiscount(points int, rate decimal.Decimal) decimal.Decimal {
	return types.RoundCurrency(decimal.NewFromInt(int64(points)).Div(rate))
}

// EarnedPoints computes the points granted for a completed sale. The earn
// base is the amount the customer actually settled: grand total minus the
// points discount, and minus the cart discount when the program does not
// earn on discounted amounts.
func EarnedPoints(rules config.LoyaltyConfig, grandTotal, pointsDiscount, cartDiscount decimal.Decimal, hasCustomer bool) int {
	if !hasCustomer || rules.PointsPerCurrencyUnit <= 0 {
		return 0
	}
	base := grandTotal.Sub(pointsDiscount)
	if !rules.EarnOnDiscounted {
		base = base.Sub(cartDiscount)
	}
	if !base.IsPositive() {
		return 0
	}
	earned := int(base.Mul(decimal.NewFromInt(int64(rules.PointsPerCurrencyUnit))).IntPart())
	if rules.MaxPointsPerSale > 0 && earned > rules.MaxPointsPerSale {
		earned = rules.MaxPointsPerSale
	}
	return earned
}

package service

import (
	"context"
	"time"

	orderdomain "returns-portal/internal/features/orders/domain"
	"returns-portal/internal/features/returns/domain"
	"returns-portal/internal/features/returns/ports"
	settingsdomain "returns-portal/internal/features/settings/domain"

	"returns-portal/internal/core/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Risk factor labels, listed in evaluation order. The output list preserves
// this order so results are stable for tests and admin display.
const (
	FactorFrequentReturns = "frequent_returns"
	FactorHighValue       = "high_value_return"
	FactorNoReceipt       = "no_receipt"
	FactorNewAccount      = "new_account"
	FactorAddressMismatch = "address_mismatch"
)

// Fixed weight each indicator contributes to the risk score when triggered.
const (
	weightFrequentReturns = 30
	weightHighValue       = 25
	weightNoReceipt       = 20
	weightNewAccount      = 15
	weightAddressMismatch = 10
)

// historyWindowDays is the trailing window for the frequent-returns indicator.
const historyWindowDays = 30

// newAccountAgeDays is the account age below which the new-account indicator triggers.
const newAccountAgeDays = 30

// FraudScorer computes a risk assessment for a proposed return submission.
type FraudScorer struct {
	// history provides the per-customer return count for the trailing window.
	history ports.ReturnHistory
	// now is replaceable for tests.
	now func() time.Time
}

// NewFraudScorer creates a new FraudScorer.
func NewFraudScorer(history ports.ReturnHistory) *FraudScorer {
	return &FraudScorer{
		history: history,
		now:     time.Now,
	}
}

// Assess evaluates the fraud indicators for the proposed return items against
// the order and the tenant's configuration. Indicators run in a fixed order;
// each contributes its weight to the score when triggered and enabled, and
// the submission is high risk once the triggered count reaches the tenant's
// auto-flag threshold.
func (s *FraudScorer) Assess(ctx context.Context, tenantID string, order *orderdomain.Order, items []domain.SubmissionItem, settings *settingsdomain.TenantSettings) domain.FraudAssessment {
	fp := settings.FraudPrevention
	assessment := domain.FraudAssessment{}

	trigger := func(factor string, weight int) {
		assessment.RiskScore += weight
		assessment.RiskFactors = append(assessment.RiskFactors, factor)
	}

	if fp.SuspiciousPatterns.FrequentReturns && s.isFrequentReturner(ctx, tenantID, order.Email, fp.MaxReturnsPerCustomer) {
		trigger(FactorFrequentReturns, weightFrequentReturns)
	}

	if fp.SuspiciousPatterns.HighValueReturns && isHighValueReturn(order, items, fp.MaxReturnValuePercent) {
		trigger(FactorHighValue, weightHighValue)
	}

	if fp.SuspiciousPatterns.NoReceipt && isUnverifiableOrder(order) {
		trigger(FactorNoReceipt, weightNoReceipt)
	}

	if fp.SuspiciousPatterns.NewAccount && s.isNewAccount(order) {
		trigger(FactorNewAccount, weightNewAccount)
	}

	if fp.SuspiciousPatterns.AddressMismatch && isAddressMismatch(order) {
		trigger(FactorAddressMismatch, weightAddressMismatch)
	}

	// The decision is a count threshold over triggered indicators; the
	// weighted score is reported for analytics only.
	assessment.IsHighRisk = len(assessment.RiskFactors) >= fp.AutoFlagThreshold

	return assessment
}

// isFrequentReturner checks the customer's return count in the trailing
// window. A history lookup failure leaves the indicator untriggered; scoring
// must not block a submission on an audit-store outage.
func (s *FraudScorer) isFrequentReturner(ctx context.Context, tenantID, email string, maxReturns int) bool {
	if email == "" {
		return false
	}

	since := s.now().AddDate(0, 0, -historyWindowDays)
	count, err := s.history.CountByCustomerSince(ctx, tenantID, email, since)
	if err != nil {
		logger.Get().Warn("Return history lookup failed",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
		return false
	}

	return count > maxReturns
}

// isHighValueReturn checks whether the proposed return value exceeds the
// configured share of the order total.
func isHighValueReturn(order *orderdomain.Order, items []domain.SubmissionItem, maxPercent int) bool {
	if order.TotalPrice.IsZero() {
		return false
	}

	returnValue := decimal.Zero
	for _, item := range items {
		li := order.LineItemByID(item.LineItemID)
		if li == nil {
			continue
		}
		returnValue = returnValue.Add(li.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	threshold := order.TotalPrice.
		Mul(decimal.NewFromInt(int64(maxPercent))).
		Div(decimal.NewFromInt(100))

	return returnValue.GreaterThan(threshold)
}

// isUnverifiableOrder reports whether the order lacks a purchase record that
// could verify the return (guest checkout with no billing address on file).
func isUnverifiableOrder(order *orderdomain.Order) bool {
	return order.CustomerCreatedAt == nil && order.BillingAddress.IsEmpty()
}

// isNewAccount reports whether the customer account is younger than the
// new-account threshold. Guest checkouts are covered by the no-receipt
// indicator instead.
func (s *FraudScorer) isNewAccount(order *orderdomain.Order) bool {
	if order.CustomerCreatedAt == nil {
		return false
	}
	return order.CustomerCreatedAt.After(s.now().AddDate(0, 0, -newAccountAgeDays))
}

// isAddressMismatch reports whether shipping and billing addresses disagree.
// Orders missing either address are skipped.
func isAddressMismatch(order *orderdomain.Order) bool {
	if order.ShippingAddress.IsEmpty() || order.BillingAddress.IsEmpty() {
		return false
	}
	return !order.ShippingAddress.Matches(order.BillingAddress)
}

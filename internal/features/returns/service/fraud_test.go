package service

import (
	"context"
	"errors"
	"testing"
	"time"

	orderdomain "returns-portal/internal/features/orders/domain"
	"returns-portal/internal/features/returns/domain"
	settingsdomain "returns-portal/internal/features/settings/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// mockReturnHistory is a mock implementation of ReturnHistory for testing.
type mockReturnHistory struct {
	count    int
	countErr error
}

// CountByCustomerSince implements ReturnHistory.
func (m *mockReturnHistory) CountByCustomerSince(ctx context.Context, tenantID, email string, since time.Time) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.count, nil
}

var scorerNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newScorer(history *mockReturnHistory) *FraudScorer {
	scorer := NewFraudScorer(history)
	scorer.now = func() time.Time { return scorerNow }
	return scorer
}

// cleanOrder returns an order that triggers no fraud indicators.
func cleanOrder() *orderdomain.Order {
	accountCreated := scorerNow.AddDate(-2, 0, 0)
	address := orderdomain.Address{Line1: "Main St 1", City: "Springfield", Zip: "12345", Country: "US"}
	return &orderdomain.Order{
		ID:                "1001",
		Email:             "bob@example.com",
		TotalPrice:        decimal.NewFromInt(200),
		CustomerCreatedAt: &accountCreated,
		ShippingAddress:   address,
		BillingAddress:    address,
		LineItems: []orderdomain.LineItem{
			{ID: "li-1", Price: decimal.NewFromInt(50), Quantity: 2},
			{ID: "li-2", Price: decimal.NewFromInt(100), Quantity: 1},
		},
	}
}

func returnItems(ids ...string) []domain.SubmissionItem {
	items := make([]domain.SubmissionItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, domain.SubmissionItem{LineItemID: id, OrderID: "1001", Option: domain.OptionReturn, Quantity: 1})
	}
	return items
}

// TestFraudScorer_CleanOrder verifies a clean order scores zero.
func TestFraudScorer_CleanOrder(t *testing.T) {
	scorer := newScorer(&mockReturnHistory{count: 0})
	settings := settingsdomain.DefaultSettings("t1")

	assessment := scorer.Assess(context.Background(), "t1", cleanOrder(), returnItems("li-1"), settings)

	assert.Equal(t, 0, assessment.RiskScore)
	assert.False(t, assessment.IsHighRisk)
	assert.Empty(t, assessment.RiskFactors)
}

// TestFraudScorer_AllPatternsDisabled verifies disabled toggles contribute
// nothing regardless of order content.
func TestFraudScorer_AllPatternsDisabled(t *testing.T) {
	scorer := newScorer(&mockReturnHistory{count: 50})
	settings := settingsdomain.DefaultSettings("t1")
	settings.FraudPrevention.SuspiciousPatterns = settingsdomain.SuspiciousPatterns{}

	// An order that would trigger every indicator.
	order := cleanOrder()
	order.CustomerCreatedAt = nil
	order.BillingAddress = orderdomain.Address{}

	assessment := scorer.Assess(context.Background(), "t1", order, returnItems("li-1", "li-2"), settings)

	assert.Equal(t, 0, assessment.RiskScore)
	assert.False(t, assessment.IsHighRisk)
	assert.Empty(t, assessment.RiskFactors)
}

// TestFraudScorer_FrequentReturns verifies the trailing-window count indicator.
func TestFraudScorer_FrequentReturns(t *testing.T) {
	settings := settingsdomain.DefaultSettings("t1")
	settings.FraudPrevention.MaxReturnsPerCustomer = 3

	t.Run("at the limit does not trigger", func(t *testing.T) {
		scorer := newScorer(&mockReturnHistory{count: 3})
		assessment := scorer.Assess(context.Background(), "t1", cleanOrder(), returnItems("li-1"), settings)
		assert.Empty(t, assessment.RiskFactors)
	})

	t.Run("above the limit triggers", func(t *testing.T) {
		scorer := newScorer(&mockReturnHistory{count: 4})
		assessment := scorer.Assess(context.Background(), "t1", cleanOrder(), returnItems("li-1"), settings)
		assert.Equal(t, []string{FactorFrequentReturns}, assessment.RiskFactors)
		assert.Equal(t, 30, assessment.RiskScore)
	})

	t.Run("history failure does not trigger", func(t *testing.T) {
		scorer := newScorer(&mockReturnHistory{countErr: errors.New("redis down")})
		assessment := scorer.Assess(context.Background(), "t1", cleanOrder(), returnItems("li-1"), settings)
		assert.Empty(t, assessment.RiskFactors)
	})
}

// TestFraudScorer_HighValueReturn verifies the return-value percent indicator.
func TestFraudScorer_HighValueReturn(t *testing.T) {
	scorer := newScorer(&mockReturnHistory{})
	settings := settingsdomain.DefaultSettings("t1")
	settings.FraudPrevention.MaxReturnValuePercent = 80

	t.Run("below threshold", func(t *testing.T) {
		// 100 of 200 returned = 50%.
		assessment := scorer.Assess(context.Background(), "t1", cleanOrder(), returnItems("li-1"), settings)
		assert.Empty(t, assessment.RiskFactors)
	})

	t.Run("above threshold", func(t *testing.T) {
		// 200 of 200 returned = 100%.
		assessment := scorer.Assess(context.Background(), "t1", cleanOrder(), returnItems("li-1", "li-2"), settings)
		assert.Equal(t, []string{FactorHighValue}, assessment.RiskFactors)
	})
}

// TestFraudScorer_NewAccount verifies the account-age indicator.
func TestFraudScorer_NewAccount(t *testing.T) {
	scorer := newScorer(&mockReturnHistory{})
	settings := settingsdomain.DefaultSettings("t1")

	order := cleanOrder()
	recent := scorerNow.AddDate(0, 0, -7)
	order.CustomerCreatedAt = &recent

	assessment := scorer.Assess(context.Background(), "t1", order, returnItems("li-1"), settings)

	assert.Equal(t, []string{FactorNewAccount}, assessment.RiskFactors)
	assert.Equal(t, 15, assessment.RiskScore)
}

// TestFraudScorer_AddressMismatch verifies the address comparison indicator.
func TestFraudScorer_AddressMismatch(t *testing.T) {
	scorer := newScorer(&mockReturnHistory{})
	settings := settingsdomain.DefaultSettings("t1")

	order := cleanOrder()
	order.BillingAddress = orderdomain.Address{Line1: "Other St 9", City: "Shelbyville", Zip: "99999", Country: "US"}

	assessment := scorer.Assess(context.Background(), "t1", order, returnItems("li-1"), settings)

	assert.Equal(t, []string{FactorAddressMismatch}, assessment.RiskFactors)
}

// TestFraudScorer_NoReceipt verifies guest checkouts without billing data are
// treated as unverifiable.
func TestFraudScorer_NoReceipt(t *testing.T) {
	scorer := newScorer(&mockReturnHistory{})
	settings := settingsdomain.DefaultSettings("t1")

	order := cleanOrder()
	order.CustomerCreatedAt = nil
	order.BillingAddress = orderdomain.Address{}

	assessment := scorer.Assess(context.Background(), "t1", order, returnItems("li-1"), settings)

	assert.Contains(t, assessment.RiskFactors, FactorNoReceipt)
}

// TestFraudScorer_ThresholdExactness verifies high risk flips exactly at the
// auto-flag threshold, not one indicator before.
func TestFraudScorer_ThresholdExactness(t *testing.T) {
	scorer := newScorer(&mockReturnHistory{})
	settings := settingsdomain.DefaultSettings("t1")
	settings.FraudPrevention.AutoFlagThreshold = 2

	// One indicator: address mismatch only.
	order := cleanOrder()
	order.BillingAddress = orderdomain.Address{Line1: "Other St 9", City: "Shelbyville", Zip: "99999", Country: "US"}

	assessment := scorer.Assess(context.Background(), "t1", order, returnItems("li-1"), settings)
	assert.Len(t, assessment.RiskFactors, 1)
	assert.False(t, assessment.IsHighRisk, "one triggered indicator must stay below a threshold of two")

	// Two indicators: add a new account.
	recent := scorerNow.AddDate(0, 0, -3)
	order.CustomerCreatedAt = &recent

	assessment = scorer.Assess(context.Background(), "t1", order, returnItems("li-1"), settings)
	assert.Len(t, assessment.RiskFactors, 2)
	assert.True(t, assessment.IsHighRisk)
}

// TestFraudScorer_FactorOrderStable verifies the factor list preserves
// evaluation order.
func TestFraudScorer_FactorOrderStable(t *testing.T) {
	scorer := newScorer(&mockReturnHistory{count: 10})
	settings := settingsdomain.DefaultSettings("t1")

	order := cleanOrder()
	recent := scorerNow.AddDate(0, 0, -3)
	order.CustomerCreatedAt = &recent
	order.BillingAddress = orderdomain.Address{Line1: "Other St 9", City: "Shelbyville", Zip: "99999", Country: "US"}

	assessment := scorer.Assess(context.Background(), "t1", order, returnItems("li-1", "li-2"), settings)

	assert.Equal(t, []string{FactorFrequentReturns, FactorHighValue, FactorNewAccount, FactorAddressMismatch}, assessment.RiskFactors)
	assert.Equal(t, 30+25+15+10, assessment.RiskScore)
	assert.True(t, assessment.IsHighRisk)
}

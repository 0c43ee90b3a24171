package domain

import (
	"errors"
)

var (
	// ErrInvalidReturnWindow is returned when the configured window is not positive.
	ErrInvalidReturnWindow = errors.New("return window must be a positive number of days")
	// ErrInvalidThreshold is returned when the auto-flag threshold is not positive.
	ErrInvalidThreshold = errors.New("auto-flag threshold must be a positive number")
)

// SuspiciousPatterns holds the per-indicator toggles for fraud scoring.
// A disabled pattern contributes nothing to the score regardless of the
// order's content.
type SuspiciousPatterns struct {
	FrequentReturns  bool `json:"frequent_returns"`
	HighValueReturns bool `json:"high_value_returns"`
	NoReceipt        bool `json:"no_receipt"`
	NewAccount       bool `json:"new_account"`
	AddressMismatch  bool `json:"address_mismatch"`
}

// FraudPrevention holds the tenant's fraud scoring configuration.
type FraudPrevention struct {
	// MaxReturnsPerCustomer is the trailing-30-day return count above which
	// the frequent-returns indicator triggers.
	MaxReturnsPerCustomer int `json:"max_returns_per_customer"`
	// MaxReturnValuePercent is the share of the order total above which the
	// high-value indicator triggers.
	MaxReturnValuePercent int `json:"max_return_value_percent"`
	// AutoFlagThreshold is the number of triggered indicators at which a
	// submission is marked high risk. This is a count threshold, not a
	// score threshold.
	AutoFlagThreshold int `json:"auto_flag_threshold"`
	// AutoApproveHighRisk allows high-risk submissions to proceed instead of
	// requiring manual review.
	AutoApproveHighRisk bool `json:"auto_approve_high_risk"`
	// SuspiciousPatterns toggles the individual indicators.
	SuspiciousPatterns SuspiciousPatterns `json:"suspicious_patterns"`
}

// TenantSettings holds the per-tenant returns configuration.
type TenantSettings struct {
	// TenantID identifies the tenant the settings belong to.
	TenantID string `json:"tenant_id"`
	// ReturnWindowDays is the number of days after fulfillment during which
	// an item may be returned.
	ReturnWindowDays int `json:"return_window_days"`
	// AllowExchanges enables the exchange option in addition to plain returns.
	AllowExchanges bool `json:"allow_exchanges"`
	// FraudPrevention holds the fraud scoring configuration.
	FraudPrevention FraudPrevention `json:"fraud_prevention"`
}

// DefaultSettings returns the settings applied to tenants that have not
// saved any configuration.
func DefaultSettings(tenantID string) *TenantSettings {
	return &TenantSettings{
		TenantID:         tenantID,
		ReturnWindowDays: 100,
		AllowExchanges:   true,
		FraudPrevention: FraudPrevention{
			MaxReturnsPerCustomer: 3,
			MaxReturnValuePercent: 80,
			AutoFlagThreshold:     2,
			AutoApproveHighRisk:   false,
			SuspiciousPatterns: SuspiciousPatterns{
				FrequentReturns:  true,
				HighValueReturns: true,
				NoReceipt:        true,
				NewAccount:       true,
				AddressMismatch:  true,
			},
		},
	}
}

// Validate checks the settings for values that would break evaluation.
func (s *TenantSettings) Validate() error {
	if s.ReturnWindowDays <= 0 {
		return ErrInvalidReturnWindow
	}
	if s.FraudPrevention.AutoFlagThreshold <= 0 {
		return ErrInvalidThreshold
	}
	return nil
}

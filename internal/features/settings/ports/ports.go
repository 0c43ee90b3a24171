package ports

import (
	"context"

	"returns-portal/internal/features/settings/domain"
)

// SettingsService defines the primary port for tenant settings operations.
type SettingsService interface {
	// Get returns the tenant's settings, falling back to defaults when the
	// tenant has never saved any.
	Get(ctx context.Context, tenantID string) (*domain.TenantSettings, error)
	// Update validates and persists the tenant's settings.
	Update(ctx context.Context, settings *domain.TenantSettings) error
}

// SettingsRepository defines the secondary port for settings storage.
type SettingsRepository interface {
	// Get returns the stored settings, or nil when the tenant has none.
	Get(ctx context.Context, tenantID string) (*domain.TenantSettings, error)
	// Save persists the settings.
	Save(ctx context.Context, settings *domain.TenantSettings) error
}

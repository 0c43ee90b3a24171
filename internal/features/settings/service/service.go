package service

import (
	"context"
	"fmt"

	"returns-portal/internal/features/settings/domain"
	"returns-portal/internal/features/settings/ports"
)

// SettingsServiceImpl implements ports.SettingsService.
type SettingsServiceImpl struct {
	repo ports.SettingsRepository
}

// NewSettingsService creates a new SettingsServiceImpl.
func NewSettingsService(repo ports.SettingsRepository) *SettingsServiceImpl {
	return &SettingsServiceImpl{
		repo: repo,
	}
}

// Get retrieves the tenant's settings, falling back to defaults when the
// tenant has never saved any.
func (s *SettingsServiceImpl) Get(ctx context.Context, tenantID string) (*domain.TenantSettings, error) {
	settings, err := s.repo.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get settings: %w", err)
	}

	if settings == nil {
		return domain.DefaultSettings(tenantID), nil
	}

	return settings, nil
}

// Update validates and persists the tenant's settings.
func (s *SettingsServiceImpl) Update(ctx context.Context, settings *domain.TenantSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return fmt.Errorf("service: failed to save settings: %w", err)
	}

	return nil
}

package service

import (
	"context"
	"errors"
	"testing"

	"returns-portal/internal/features/settings/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSettingsRepository is a mock implementation of SettingsRepository for testing.
type mockSettingsRepository struct {
	stored      *domain.TenantSettings
	getError    error
	saveError   error
	savedCalled bool
}

// Get implements SettingsRepository.
func (m *mockSettingsRepository) Get(ctx context.Context, tenantID string) (*domain.TenantSettings, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.stored, nil
}

// Save implements SettingsRepository.
func (m *mockSettingsRepository) Save(ctx context.Context, settings *domain.TenantSettings) error {
	m.savedCalled = true
	if m.saveError != nil {
		return m.saveError
	}
	m.stored = settings
	return nil
}

// TestSettingsService_Get_DefaultsOnMiss verifies defaults are returned for
// tenants with no stored settings.
func TestSettingsService_Get_DefaultsOnMiss(t *testing.T) {
	svc := NewSettingsService(&mockSettingsRepository{})

	settings, err := svc.Get(context.Background(), "acme")

	require.NoError(t, err)
	assert.Equal(t, "acme", settings.TenantID)
	assert.Equal(t, 100, settings.ReturnWindowDays)
	assert.Equal(t, 2, settings.FraudPrevention.AutoFlagThreshold)
	assert.True(t, settings.FraudPrevention.SuspiciousPatterns.FrequentReturns)
}

// TestSettingsService_Get_Stored verifies stored settings take precedence.
func TestSettingsService_Get_Stored(t *testing.T) {
	stored := domain.DefaultSettings("acme")
	stored.ReturnWindowDays = 30
	svc := NewSettingsService(&mockSettingsRepository{stored: stored})

	settings, err := svc.Get(context.Background(), "acme")

	require.NoError(t, err)
	assert.Equal(t, 30, settings.ReturnWindowDays)
}

// TestSettingsService_Get_RepoError verifies repository errors propagate.
func TestSettingsService_Get_RepoError(t *testing.T) {
	svc := NewSettingsService(&mockSettingsRepository{getError: errors.New("redis down")})

	_, err := svc.Get(context.Background(), "acme")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get settings")
}

// TestSettingsService_Update_Validates verifies invalid settings are rejected
// before touching the repository.
func TestSettingsService_Update_Validates(t *testing.T) {
	repo := &mockSettingsRepository{}
	svc := NewSettingsService(repo)

	settings := domain.DefaultSettings("acme")
	settings.ReturnWindowDays = 0

	err := svc.Update(context.Background(), settings)

	assert.ErrorIs(t, err, domain.ErrInvalidReturnWindow)
	assert.False(t, repo.savedCalled)
}

// TestSettingsService_Update_Saves verifies valid settings are persisted.
func TestSettingsService_Update_Saves(t *testing.T) {
	repo := &mockSettingsRepository{}
	svc := NewSettingsService(repo)

	settings := domain.DefaultSettings("acme")
	settings.AllowExchanges = false

	require.NoError(t, svc.Update(context.Background(), settings))
	require.NotNil(t, repo.stored)
	assert.False(t, repo.stored.AllowExchanges)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"returns-portal/internal/features/settings/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSettingsService stores settings in memory.
type mockSettingsService struct {
	stored map[string]*domain.TenantSettings
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{stored: make(map[string]*domain.TenantSettings)}
}

// Get implements SettingsService.
func (m *mockSettingsService) Get(ctx context.Context, tenantID string) (*domain.TenantSettings, error) {
	if s, ok := m.stored[tenantID]; ok {
		return s, nil
	}
	return domain.DefaultSettings(tenantID), nil
}

// Update implements SettingsService.
func (m *mockSettingsService) Update(ctx context.Context, settings *domain.TenantSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	m.stored[settings.TenantID] = settings
	return nil
}

func newSettingsApp() (*fiber.App, *mockSettingsService) {
	svc := newMockSettingsService()
	handler := NewSettingsHandler(svc)

	app := fiber.New()
	app.Get("/settings", handler.GetSettings)
	app.Put("/settings", handler.UpdateSettings)
	return app, svc
}

// TestGetSettings_Defaults verifies defaults are served for a fresh tenant.
func TestGetSettings_Defaults(t *testing.T) {
	app, _ := newSettingsApp()

	req := httptest.NewRequest("GET", "/settings", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var settings domain.TenantSettings
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&settings))
	assert.Equal(t, DefaultTenant, settings.TenantID)
	assert.Equal(t, 100, settings.ReturnWindowDays)
	assert.True(t, settings.AllowExchanges)
}

// TestUpdateSettings verifies the tenant header scopes the update.
func TestUpdateSettings(t *testing.T) {
	app, svc := newSettingsApp()

	settings := domain.DefaultSettings("ignored")
	settings.ReturnWindowDays = 30
	payload, err := json.Marshal(settings)
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", "/settings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", "acme")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	stored, ok := svc.stored["acme"]
	require.True(t, ok)
	assert.Equal(t, "acme", stored.TenantID)
	assert.Equal(t, 30, stored.ReturnWindowDays)
}

// TestUpdateSettings_Invalid verifies validation failures return 400.
func TestUpdateSettings_Invalid(t *testing.T) {
	app, _ := newSettingsApp()

	settings := domain.DefaultSettings(DefaultTenant)
	settings.ReturnWindowDays = -1
	payload, err := json.Marshal(settings)
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", "/settings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

// TestUpdateSettings_BadBody verifies malformed JSON returns 400.
func TestUpdateSettings_BadBody(t *testing.T) {
	app, _ := newSettingsApp()

	req := httptest.NewRequest("PUT", "/settings", bytes.NewReader([]byte("{oops")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"returns-portal/internal/core/cache"
	"returns-portal/internal/features/settings/domain"
)

const settingsKeyPrefix = "tenant_settings:"

// RedisSettingsRepository implements ports.SettingsRepository using the cache port.
type RedisSettingsRepository struct {
	cache cache.Cache
}

// NewRedisSettingsRepository creates a new RedisSettingsRepository.
func NewRedisSettingsRepository(c cache.Cache) *RedisSettingsRepository {
	return &RedisSettingsRepository{
		cache: c,
	}
}

// Save stores the tenant's settings without expiration.
func (r *RedisSettingsRepository) Save(ctx context.Context, settings *domain.TenantSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := r.cache.Set(ctx, settingsKeyPrefix+settings.TenantID, data, 0); err != nil {
		return fmt.Errorf("failed to save settings to cache: %w", err)
	}

	return nil
}

// Get retrieves the tenant's settings, returning nil when none are stored.
func (r *RedisSettingsRepository) Get(ctx context.Context, tenantID string) (*domain.TenantSettings, error) {
	key := settingsKeyPrefix + tenantID

	data, err := r.cache.Get(ctx, key)
	if err != nil {
		if err.Error() == fmt.Sprintf("key not found: %s", key) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settings from cache: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var settings domain.TenantSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return &settings, nil
}

package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"returns-portal/internal/core/cache"
	"returns-portal/internal/features/returns/domain"
)

const (
	requestKeyPrefix = "return_request:"
	indexKeyPrefix   = "return_requests:"
)

// RedisReturnRepository implements ports.ReturnRepository using the cache port.
// Records are stored individually with a per-tenant id index alongside.
// The index update is read-modify-write without a transaction, which is
// acceptable at portal submission volume.
type RedisReturnRepository struct {
	cache cache.Cache
}

// NewRedisReturnRepository creates a new RedisReturnRepository.
func NewRedisReturnRepository(c cache.Cache) *RedisReturnRepository {
	return &RedisReturnRepository{
		cache: c,
	}
}

// Save persists the record and registers it in the tenant index.
func (r *RedisReturnRepository) Save(ctx context.Context, request *domain.ReturnRequest) error {
	data, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal return request: %w", err)
	}

	key := requestKey(request.TenantID, request.ID)
	if err := r.cache.Set(ctx, key, data, 0); err != nil {
		return fmt.Errorf("failed to save return request: %w", err)
	}

	ids, err := r.indexIDs(ctx, request.TenantID)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if id == request.ID {
			return nil
		}
	}

	ids = append(ids, request.ID)
	indexData, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := r.cache.Set(ctx, indexKeyPrefix+request.TenantID, indexData, 0); err != nil {
		return fmt.Errorf("failed to update index: %w", err)
	}

	return nil
}

// Get retrieves one record, returning nil when it does not exist.
func (r *RedisReturnRepository) Get(ctx context.Context, tenantID, id string) (*domain.ReturnRequest, error) {
	key := requestKey(tenantID, id)

	data, err := r.cache.Get(ctx, key)
	if err != nil {
		if isNotFound(err, key) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get return request: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var request domain.ReturnRequest
	if err := json.Unmarshal(data, &request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal return request: %w", err)
	}

	return &request, nil
}

// ListByTenant returns the tenant's records, newest first. Index entries
// whose record has disappeared are skipped.
func (r *RedisReturnRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.ReturnRequest, error) {
	ids, err := r.indexIDs(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	requests := make([]*domain.ReturnRequest, 0, len(ids))
	for _, id := range ids {
		request, err := r.Get(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if request != nil {
			requests = append(requests, request)
		}
	}

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})

	return requests, nil
}

// CountByCustomerSince counts the customer's submissions since the given time.
func (r *RedisReturnRepository) CountByCustomerSince(ctx context.Context, tenantID, email string, since time.Time) (int, error) {
	requests, err := r.ListByTenant(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, request := range requests {
		if strings.EqualFold(request.Email, email) && request.CreatedAt.After(since) {
			count++
		}
	}

	return count, nil
}

// indexIDs loads the tenant's record id index, empty when none exists yet.
func (r *RedisReturnRepository) indexIDs(ctx context.Context, tenantID string) ([]string, error) {
	key := indexKeyPrefix + tenantID

	data, err := r.cache.Get(ctx, key)
	if err != nil {
		if isNotFound(err, key) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get index: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index: %w", err)
	}

	return ids, nil
}

func requestKey(tenantID, id string) string {
	return requestKeyPrefix + tenantID + ":" + id
}

func isNotFound(err error, key string) bool {
	return err.Error() == fmt.Sprintf("key not found: %s", key)
}

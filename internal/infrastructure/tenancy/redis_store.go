package tenancy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qms/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultTenantsKey = "qms:tenants"

// RedisTenantStore keeps tenants in a Redis hash (tenant ID -> creation time)
// so every instance of the service shares one tenant registry
type RedisTenantStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisTenantStore creates a store on an existing client. An empty key uses "qms:tenants".
func NewRedisTenantStore(client redis.Cmdable, key string) *RedisTenantStore {
	if key == "" {
		key = defaultTenantsKey
	}
	return &RedisTenantStore{client: client, key: key}
}

// Ensure implements TenantStore using HSETNX, so concurrent first requests
// for a tenant create it exactly once
func (s *RedisTenantStore) Ensure(ctx context.Context, tenantID string) (bool, error) {
	created, err := s.client.HSetNX(ctx, s.key, tenantID, time.Now().UTC().Format(time.RFC3339Nano)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to ensure tenant %s: %w", tenantID, err)
	}
	return created, nil
}

// Get implements TenantStore
func (s *RedisTenantStore) Get(ctx context.Context, tenantID string) (Tenant, error) {
	raw, err := s.client.HGet(ctx, s.key, tenantID).Result()
	if errors.Is(err, redis.Nil) {
		return Tenant{}, fmt.Errorf("%w: tenant '%s'", shared.ErrNotFound, tenantID)
	}
	if err != nil {
		return Tenant{}, fmt.Errorf("failed to load tenant %s: %w", tenantID, err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return Tenant{}, fmt.Errorf("tenant %s has malformed creation time %q: %w", tenantID, raw, err)
	}
	return Tenant{ID: tenantID, CreatedAt: createdAt}, nil
}

var _ TenantStore = (*RedisTenantStore)(nil)

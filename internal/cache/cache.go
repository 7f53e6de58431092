package cache

import (
	"context"
	"time"

	"go-pos-backoffice/internal/model"
)

// ProductCache holds the product list for read endpoints. Engine and catalog
// writes must invalidate it; it is never consulted inside a transaction.
type ProductCache interface {
	Get(ctx context.Context, key string) ([]model.Product, bool, error)
	Set(ctx context.Context, key string, products []model.Product, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// NoopProductCache is used when no Redis address is configured.
type NoopProductCache struct{}

func (NoopProductCache) Get(_ context.Context, _ string) ([]model.Product, bool, error) {
	return nil, false, nil
}

func (NoopProductCache) Set(_ context.Context, _ string, _ []model.Product, _ time.Duration) error {
	return nil
}

func (NoopProductCache) Invalidate(_ context.Context, _ string) error {
	return nil
}

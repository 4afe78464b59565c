// Package catalog serves product, collection and search reads through a
// shared cache, refreshed from the remote system on miss and invalidated
// by Shopify webhooks.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hiho-nelson/go-shopify-storefront/internal/shopify"
)

// Gateway is the read subset of the Shopify client the service needs.
type Gateway interface {
	Products(ctx context.Context, first int, after string) ([]shopify.Product, shopify.PageInfo, error)
	ProductByHandle(ctx context.Context, handle string) (*shopify.Product, error)
	SearchProducts(ctx context.Context, query string, first int) ([]shopify.Product, error)
	Collections(ctx context.Context, first int) ([]shopify.Collection, error)
}

type Service struct {
	gateway Gateway
	cache   Cache
	logger  *zap.Logger
	sfg     singleflight.Group // Prevents cache stampede
}

func NewService(gateway Gateway, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		gateway: gateway,
		cache:   cache,
		logger:  logger,
	}
}

const (
	productsKeyPrefix    = "catalog:products:"
	productKeyPrefix     = "catalog:product:"
	collectionsKeyPrefix = "catalog:collections:"
	searchKeyPrefix      = "catalog:search:"
)

// ProductPage pairs a page of products with its pagination cursor.
type ProductPage struct {
	Products []shopify.Product `json:"products"`
	PageInfo shopify.PageInfo  `json:"pageInfo"`
}

func (s *Service) Products(ctx context.Context, first int, after string) (*ProductPage, error) {
	key := fmt.Sprintf("%s%d:%s", productsKeyPrefix, first, after)
	return cached(ctx, s, key, func() (*ProductPage, error) {
		products, pageInfo, err := s.gateway.Products(ctx, first, after)
		if err != nil {
			return nil, err
		}
		return &ProductPage{Products: products, PageInfo: pageInfo}, nil
	})
}

// ProductByHandle returns nil without error for an unknown handle.
// Unknown handles are not cached.
func (s *Service) ProductByHandle(ctx context.Context, handle string) (*shopify.Product, error) {
	key := productKeyPrefix + handle
	return cached(ctx, s, key, func() (*shopify.Product, error) {
		return s.gateway.ProductByHandle(ctx, handle)
	})
}

func (s *Service) Collections(ctx context.Context, first int) ([]shopify.Collection, error) {
	key := fmt.Sprintf("%s%d", collectionsKeyPrefix, first)
	collections, err := cached(ctx, s, key, func() (*[]shopify.Collection, error) {
		c, err := s.gateway.Collections(ctx, first)
		if err != nil {
			return nil, err
		}
		return &c, nil
	})
	if err != nil {
		return nil, err
	}
	return *collections, nil
}

func (s *Service) Search(ctx context.Context, query string, first int) ([]shopify.Product, error) {
	key := fmt.Sprintf("%s%s:%d", searchKeyPrefix, query, first)
	products, err := cached(ctx, s, key, func() (*[]shopify.Product, error) {
		p, err := s.gateway.SearchProducts(ctx, query, first)
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return nil, err
	}
	return *products, nil
}

// Invalidate drops cached entries for a webhook topic. Product topics
// also clear search results, which embed product data. Returns whether
// anything was recognized.
func (s *Service) Invalidate(ctx context.Context, topic string) bool {
	var prefixes []string
	if strings.Contains(topic, "products") {
		prefixes = append(prefixes, productsKeyPrefix, productKeyPrefix, searchKeyPrefix)
	}
	if strings.Contains(topic, "collections") {
		prefixes = append(prefixes, collectionsKeyPrefix)
	}
	if len(prefixes) == 0 {
		return false
	}
	for _, prefix := range prefixes {
		if err := s.cache.DeleteByPrefix(ctx, prefix); err != nil {
			s.logger.Warn("cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
		}
	}
	s.logger.Info("catalog cache invalidated", zap.String("topic", topic), zap.Strings("prefixes", prefixes))
	return true
}

// cached is the read-through path: cache hit, or singleflight to the
// gateway on miss. Cache errors are logged and bypassed; the gateway
// result is written back asynchronously.
func cached[T any](ctx context.Context, s *Service, key string, fetch func() (*T, error)) (*T, error) {
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		data, err := s.cache.Get(ctx, key)
		if err == nil {
			var value T
			if err := json.Unmarshal(data, &value); err == nil {
				return &value, nil
			}
			s.logger.Warn("corrupt cache entry, refetching", zap.String("key", key))
		} else if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("cache get error", zap.String("key", key), zap.Error(err)) // log cache error but continue
		}

		value, err := fetch()
		if err != nil {
			return nil, err
		}
		if value == nil {
			return (*T)(nil), nil
		}

		data, marshalErr := json.Marshal(value)
		if marshalErr == nil {
			go func() {
				if err := s.cache.Set(context.Background(), key, data); err != nil {
					s.logger.Warn("cache set error", zap.String("key", key), zap.Error(err))
				}
			}()
		}
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/metrics"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
)

const keyPrefix = "tenancy:subdomain:"

// StoreLoader is the source of truth behind the cache
type StoreLoader interface {
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Store, error)
}

// SubdomainCache caches subdomain to store lookups in redis. Only successful
// lookups are cached. Redis calls go through a circuit breaker; when redis is
// failing every lookup goes straight to the loader.
type SubdomainCache struct {
	redis   *redis.Client
	loader  StoreLoader
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *logrus.Entry
}

// NewSubdomainCache creates a new subdomain cache. A nil client disables caching.
func NewSubdomainCache(client *redis.Client, loader StoreLoader, ttl time.Duration, m *metrics.Metrics, logger *logrus.Entry) *SubdomainCache {
	log := logger.WithField("component", "subdomain_cache")

	settings := gobreaker.Settings{
		Name:        "subdomain-cache-redis",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 || (counts.Requests >= 10 && failureRatio >= 0.5)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &SubdomainCache{
		redis:   client,
		loader:  loader,
		ttl:     ttl,
		breaker: gobreaker.NewCircuitBreaker(settings),
		metrics: m,
		logger:  log,
	}
}

// GetBySubdomain returns the store for a subdomain, from redis when possible
func (c *SubdomainCache) GetBySubdomain(ctx context.Context, subdomain string) (*models.Store, error) {
	subdomain = strings.ToLower(subdomain)
	if c.redis == nil {
		return c.loader.GetBySubdomain(ctx, subdomain)
	}

	if store, ok := c.get(ctx, subdomain); ok {
		return store, nil
	}

	store, err := c.loader.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}

	c.set(ctx, subdomain, store)
	return store, nil
}

// Invalidate drops the cached entry so the next lookup reads the loader
func (c *SubdomainCache) Invalidate(ctx context.Context, subdomain string) {
	if c.redis == nil {
		return
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.redis.Del(ctx, keyPrefix+strings.ToLower(subdomain)).Err()
	})
	if err != nil {
		c.logger.WithError(err).WithField("subdomain", subdomain).Warn("failed to invalidate cached store")
	}
}

// Ping reports redis reachability for readiness checks
func (c *SubdomainCache) Ping(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Ping(ctx).Err()
}

func (c *SubdomainCache) get(ctx context.Context, subdomain string) (*models.Store, bool) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		data, err := c.redis.Get(ctx, keyPrefix+subdomain).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		c.metrics.RecordCacheLookup("error")
		c.logger.WithError(err).Debug("cache read failed")
		return nil, false
	}

	data, _ := result.([]byte)
	if data == nil {
		c.metrics.RecordCacheLookup("miss")
		return nil, false
	}

	var store models.Store
	if err := json.Unmarshal(data, &store); err != nil {
		c.metrics.RecordCacheLookup("error")
		return nil, false
	}

	c.metrics.RecordCacheLookup("hit")
	return &store, true
}

func (c *SubdomainCache) set(ctx context.Context, subdomain string, store *models.Store) {
	data, err := json.Marshal(store)
	if err != nil {
		return
	}
	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.redis.Set(ctx, keyPrefix+subdomain, data, c.ttl).Err()
	})
	if err != nil {
		c.logger.WithError(err).Debug("cache write failed")
	}
}

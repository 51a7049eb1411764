package session

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
)

// RepositoryOption configures session repository construction.
type RepositoryOption func(*RepositoryOptions)

// RepositoryOptions captures optional behavior for session persistence.
type RepositoryOptions struct {
	CacheEnabled bool
	CacheConfig  *cache.Config
}

// WithCache toggles the repository cache decorator. Aggregates and the bulk
// delete go straight to the database and bypass the cache.
func WithCache(enabled bool) RepositoryOption {
	return func(opts *RepositoryOptions) {
		if opts == nil {
			return
		}
		opts.CacheEnabled = enabled
	}
}

// WithCacheConfig supplies the cache configuration to use when caching is enabled.
func WithCacheConfig(cfg cache.Config) RepositoryOption {
	return func(opts *RepositoryOptions) {
		if opts == nil {
			return
		}
		opts.CacheConfig = &cfg
	}
}

func applyRepositoryOptions(options []RepositoryOption) RepositoryOptions {
	var opts RepositoryOptions
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&opts)
	}
	return opts
}

func wrapCache(base repository.Repository[*Record], opts RepositoryOptions) (repository.Repository[*Record], error) {
	if !opts.CacheEnabled {
		return base, nil
	}
	if _, ok := base.(*repositorycache.CachedRepository[*Record]); ok {
		return base, nil
	}
	cfg := cache.DefaultConfig()
	if opts.CacheConfig != nil {
		cfg = *opts.CacheConfig
	}
	service, err := cache.NewCacheService(cfg)
	if err != nil {
		return nil, err
	}
	return repositorycache.New(base, service, cache.NewDefaultKeySerializer()), nil
}

package authcache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// CacheConfig specifies the bounds and expiry policy for a caching
// authenticator or authorizer. Values are passed through to the underlying
// cache unchanged.
type CacheConfig struct {
	// MaximumSize bounds the number of cached entries.
	MaximumSize int `env:"AUTH_CACHE_MAXIMUM_SIZE, default=10000"`

	// InitialCapacity pre-sizes the cache's internal tables.
	InitialCapacity int `env:"AUTH_CACHE_INITIAL_CAPACITY, default=64"`

	// ExpireAfterWrite removes an entry the given duration after it was
	// created. Zero disables write expiry.
	ExpireAfterWrite time.Duration `env:"AUTH_CACHE_EXPIRE_AFTER_WRITE, default=5m"`

	// ExpireAfterAccess removes an entry the given duration after it was
	// last read. When set, it takes precedence over ExpireAfterWrite.
	ExpireAfterAccess time.Duration `env:"AUTH_CACHE_EXPIRE_AFTER_ACCESS"`

	// CacheNegativeResults stores "unknown credentials" outcomes so repeated
	// lookups of invalid credentials skip the underlying authenticator. When
	// false (the default), unknown credentials are never cached and every
	// lookup for them reaches the backend.
	CacheNegativeResults bool `env:"AUTH_CACHE_NEGATIVE_RESULTS, default=false"`
}

// UnmarshalYAML decodes a cache configuration mapping, accepting durations in
// Go syntax ("90s", "5m"). Absent fields are left untouched, so decoding into
// DefaultCacheConfig merges over the defaults.
func (c *CacheConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		MaximumSize          *int    `yaml:"maximumSize"`
		InitialCapacity      *int    `yaml:"initialCapacity"`
		ExpireAfterWrite     *string `yaml:"expireAfterWrite"`
		ExpireAfterAccess    *string `yaml:"expireAfterAccess"`
		CacheNegativeResults *bool   `yaml:"cacheNegativeResults"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if raw.MaximumSize != nil {
		c.MaximumSize = *raw.MaximumSize
	}
	if raw.InitialCapacity != nil {
		c.InitialCapacity = *raw.InitialCapacity
	}
	if raw.ExpireAfterWrite != nil {
		d, err := time.ParseDuration(*raw.ExpireAfterWrite)
		if err != nil {
			return fmt.Errorf("expireAfterWrite: %w", err)
		}
		c.ExpireAfterWrite = d
	}
	if raw.ExpireAfterAccess != nil {
		d, err := time.ParseDuration(*raw.ExpireAfterAccess)
		if err != nil {
			return fmt.Errorf("expireAfterAccess: %w", err)
		}
		c.ExpireAfterAccess = d
	}
	if raw.CacheNegativeResults != nil {
		c.CacheNegativeResults = *raw.CacheNegativeResults
	}
	return nil
}

// DefaultCacheConfig returns the configuration used when no environment,
// YAML or policy value overrides it.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaximumSize:      10_000,
		InitialCapacity:  64,
		ExpireAfterWrite: 5 * time.Minute,
	}
}

// LoadCacheConfig reads the configuration from the process environment.
func LoadCacheConfig(ctx context.Context) (CacheConfig, error) {
	return loadCacheConfig(ctx, nil) // load from OS environment
}

func loadCacheConfig(ctx context.Context, lookup envconfig.Lookuper) (CacheConfig, error) {
	var cfg CacheConfig
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup, // nil defaults to OS environment
	})
	if err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// ParseCacheConfigYAML parses a YAML document into a CacheConfig. Fields not
// present in the document keep their defaults.
func ParseCacheConfigYAML(data []byte) (CacheConfig, error) {
	cfg := DefaultCacheConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing cache config: %w", err)
	}
	return cfg, cfg.Validate()
}

// ParseCachePolicy parses a compact comma-separated policy string of the form
//
//	maximumSize=10000,initialCapacity=64,expireAfterWrite=5m,expireAfterAccess=10m
//
// Keys not present keep their defaults. An empty string yields the default
// configuration.
func ParseCachePolicy(policy string) (CacheConfig, error) {
	cfg := DefaultCacheConfig()

	for clause := range strings.SplitSeq(policy, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}

		key, value, ok := strings.Cut(clause, "=")
		if !ok {
			return cfg, fmt.Errorf("cache policy clause %q: expected key=value", clause)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		var err error
		switch key {
		case "maximumSize":
			cfg.MaximumSize, err = strconv.Atoi(value)
		case "initialCapacity":
			cfg.InitialCapacity, err = strconv.Atoi(value)
		case "expireAfterWrite":
			cfg.ExpireAfterWrite, err = time.ParseDuration(value)
		case "expireAfterAccess":
			cfg.ExpireAfterAccess, err = time.ParseDuration(value)
		default:
			return cfg, fmt.Errorf("cache policy clause %q: unsupported key", clause)
		}
		if err != nil {
			return cfg, fmt.Errorf("cache policy clause %q: %w", clause, err)
		}
	}

	return cfg, cfg.Validate()
}

func (c CacheConfig) Validate() error {
	if c.MaximumSize <= 0 {
		return fmt.Errorf("cache maximum size must be positive, got %d", c.MaximumSize)
	}
	if c.InitialCapacity < 0 {
		return fmt.Errorf("cache initial capacity must not be negative, got %d", c.InitialCapacity)
	}
	if c.ExpireAfterWrite < 0 {
		return fmt.Errorf("cache write expiry must not be negative, got %s", c.ExpireAfterWrite)
	}
	if c.ExpireAfterAccess < 0 {
		return fmt.Errorf("cache access expiry must not be negative, got %s", c.ExpireAfterAccess)
	}
	return nil
}

// expiryCalculator maps the configured expiry to the cache's policy. A nil
// result leaves entries unexpired.
func expiryCalculator[K comparable, V any](cfg CacheConfig) otter.ExpiryCalculator[K, V] {
	if cfg.ExpireAfterAccess > 0 {
		return otter.ExpiryAccessing[K, V](cfg.ExpireAfterAccess)
	}
	if cfg.ExpireAfterWrite > 0 {
		return otter.ExpiryCreating[K, V](cfg.ExpireAfterWrite)
	}
	return nil
}

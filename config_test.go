package authcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCacheConfig_Defaults(t *testing.T) {
	cfg, err := LoadCacheConfig(context.Background())

	require.NoError(t, err)
	assert.Equal(t, DefaultCacheConfig(), cfg)
}

func TestLoadCacheConfig_Overrides(t *testing.T) {
	t.Setenv("AUTH_CACHE_MAXIMUM_SIZE", "500")
	t.Setenv("AUTH_CACHE_INITIAL_CAPACITY", "16")
	t.Setenv("AUTH_CACHE_EXPIRE_AFTER_WRITE", "30s")
	t.Setenv("AUTH_CACHE_EXPIRE_AFTER_ACCESS", "2m")
	t.Setenv("AUTH_CACHE_NEGATIVE_RESULTS", "true")

	cfg, err := LoadCacheConfig(context.Background())
	require.NoError(t, err)

	expected := CacheConfig{
		MaximumSize:          500,
		InitialCapacity:      16,
		ExpireAfterWrite:     30 * time.Second,
		ExpireAfterAccess:    2 * time.Minute,
		CacheNegativeResults: true,
	}
	assert.Equal(t, expected, cfg)
}

func TestLoadCacheConfig_Invalid(t *testing.T) {
	t.Setenv("AUTH_CACHE_MAXIMUM_SIZE", "0")

	_, err := LoadCacheConfig(context.Background())

	assert.ErrorContains(t, err, "maximum size")
}

func TestParseCachePolicy(t *testing.T) {
	tests := []struct {
		name     string
		policy   string
		expected CacheConfig
	}{
		{
			name:     "empty policy keeps defaults",
			policy:   "",
			expected: DefaultCacheConfig(),
		},
		{
			name:   "full policy",
			policy: "maximumSize=500,initialCapacity=16,expireAfterWrite=30s,expireAfterAccess=10m",
			expected: CacheConfig{
				MaximumSize:       500,
				InitialCapacity:   16,
				ExpireAfterWrite:  30 * time.Second,
				ExpireAfterAccess: 10 * time.Minute,
			},
		},
		{
			name:   "whitespace tolerated",
			policy: " maximumSize = 250 , expireAfterWrite = 1m ",
			expected: CacheConfig{
				MaximumSize:      250,
				InitialCapacity:  64,
				ExpireAfterWrite: time.Minute,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseCachePolicy(tt.policy)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg)
		})
	}
}

func TestParseCachePolicy_Errors(t *testing.T) {
	tests := []struct {
		name    string
		policy  string
		wantErr string
	}{
		{"missing value", "maximumSize", "expected key=value"},
		{"unsupported key", "weakKeys=true", "unsupported key"},
		{"bad integer", "maximumSize=lots", "invalid syntax"},
		{"bad duration", "expireAfterWrite=5 minutes", "time"},
		{"invalid result", "maximumSize=-5", "maximum size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCachePolicy(tt.policy)

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseCacheConfigYAML(t *testing.T) {
	doc := []byte(`
maximumSize: 2000
expireAfterWrite: 90s
cacheNegativeResults: true
`)

	cfg, err := ParseCacheConfigYAML(doc)
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.MaximumSize)
	assert.Equal(t, 64, cfg.InitialCapacity, "unset field keeps default")
	assert.Equal(t, 90*time.Second, cfg.ExpireAfterWrite)
	assert.True(t, cfg.CacheNegativeResults)
}

func TestParseCacheConfigYAML_Malformed(t *testing.T) {
	_, err := ParseCacheConfigYAML([]byte("maximumSize: [oops"))

	assert.ErrorContains(t, err, "parsing cache config")
}

func TestCacheConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CacheConfig)
		wantErr string
	}{
		{"negative maximum size", func(c *CacheConfig) { c.MaximumSize = -1 }, "maximum size"},
		{"negative initial capacity", func(c *CacheConfig) { c.InitialCapacity = -1 }, "initial capacity"},
		{"negative write expiry", func(c *CacheConfig) { c.ExpireAfterWrite = -time.Second }, "write expiry"},
		{"negative access expiry", func(c *CacheConfig) { c.ExpireAfterAccess = -time.Second }, "access expiry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCacheConfig()
			tt.mutate(&cfg)

			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}

	assert.NoError(t, DefaultCacheConfig().Validate())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, ":1323", cfg.HTTP.Addr)
	assert.Equal(t, 111, cfg.LSA.Components)
	assert.Equal(t, 5, cfg.LSA.TopK)
	assert.Equal(t, VectorBackendMemory, cfg.Vector.Backend)
	assert.Equal(t, 10*time.Second, cfg.Frontend.RequestTimeout)
	assert.Empty(t, cfg.Cache.Addr)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TOP_K", "10")
	t.Setenv("VECTOR_BACKEND", "qdrant")
	t.Setenv("REQUEST_TIMEOUT", "250ms")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.LSA.TopK)
	assert.Equal(t, VectorBackendQdrant, cfg.Vector.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Frontend.RequestTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CORSOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown env", func(c *Config) { c.Env = "staging" }},
		{"unknown vector backend", func(c *Config) { c.Vector.Backend = "faiss" }},
		{"zero components", func(c *Config) { c.LSA.Components = 0 }},
		{"zero top k", func(c *Config) { c.LSA.TopK = 0 }},
		{"zero timeout", func(c *Config) { c.Frontend.RequestTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

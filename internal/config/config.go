package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload" // .env is read before cleanenv looks at the environment
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	VectorBackendMemory = "memory"
	VectorBackendQdrant = "qdrant"
)

type Config struct {
	Env      string `env:"ENV" env-default:"local"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	HTTP     HTTPConfig
	Frontend FrontendConfig
	Storage  StorageConfig
	LSA      LSAConfig
	Vector   VectorConfig
	Cache    CacheConfig
}

type HTTPConfig struct {
	Addr        string   `env:"HTTP_ADDR" env-default:":1323"`
	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
}

// FrontendConfig - How the search page reaches its backend
type FrontendConfig struct {
	BackendURL        string        `env:"BACKEND_URL" env-default:"http://localhost:1323"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" env-default:"10s"`
	BreakerTimeout    time.Duration `env:"BREAKER_TIMEOUT" env-default:"30s"`
	BreakerMaxFailure uint32        `env:"BREAKER_MAX_FAILURES" env-default:"5"`
}

type StorageConfig struct {
	Path       string `env:"STORAGE_PATH" env-default:"./data/documents.db"`
	CorpusPath string `env:"CORPUS_PATH" env-default:"./data/20news-bydate.tar.gz"`
}

type LSAConfig struct {
	Components  int   `env:"LSA_COMPONENTS" env-default:"111"`
	Oversamples int   `env:"LSA_OVERSAMPLES" env-default:"10"`
	Iterations  int   `env:"LSA_ITERATIONS" env-default:"5"`
	Seed        int64 `env:"LSA_SEED" env-default:"42"`
	MaxFeatures int   `env:"LSA_MAX_FEATURES" env-default:"0"`
	Stemming    bool  `env:"STEMMING" env-default:"false"`
	TopK        int   `env:"TOP_K" env-default:"5"`
}

type VectorConfig struct {
	Backend    string `env:"VECTOR_BACKEND" env-default:"memory"`
	QdrantAddr string `env:"QDRANT_ADDR" env-default:"localhost:6334"` // 6333 is the http port
	Collection string `env:"QDRANT_COLLECTION" env-default:"newsgroups"`
}

// CacheConfig - Redis result cache. Disabled when Addr is empty.
type CacheConfig struct {
	Addr     string        `env:"CACHE_ADDR"`
	Password string        `env:"CACHE_PASSWORD"`
	TTL      time.Duration `env:"CACHE_TTL" env-default:"10m"`
}

// Load - Read the config from the environment (and .env, if present).
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic("error loading config: " + err.Error())
	}
	return cfg
}

func (cfg *Config) Validate() error {
	switch cfg.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env: %s", cfg.Env)
	}

	switch cfg.Vector.Backend {
	case VectorBackendMemory, VectorBackendQdrant:
	default:
		return fmt.Errorf("unknown vector backend: %s", cfg.Vector.Backend)
	}

	if cfg.LSA.Components < 1 {
		return fmt.Errorf("LSA_COMPONENTS must be positive, got %d", cfg.LSA.Components)
	}
	if cfg.LSA.TopK < 1 {
		return fmt.Errorf("TOP_K must be positive, got %d", cfg.LSA.TopK)
	}
	if cfg.Frontend.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

package app

import (
	"time"

	"github.com/dmitrymomot/estatecrm/pkg/httpserver"
	"github.com/dmitrymomot/estatecrm/pkg/pg"
	"github.com/dmitrymomot/estatecrm/pkg/redis"
)

// Config is the complete service configuration, loaded from the environment.
type Config struct {
	App       AppConfig
	HTTP      httpserver.Config
	PG        pg.Config
	Redis     redis.Config
	JWT       JWTConfig
	RBAC      RBACConfig
	Grants    GrantsConfig
	Audit     AuditConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name     string `env:"APP_NAME" envDefault:"estatecrm"`
	Env      string `env:"APP_ENV" envDefault:"development" validate:"oneof=development staging production"`
	LogLevel string `env:"LOG_LEVEL"`
}

type JWTConfig struct {
	SigningKey string        `env:"JWT_SIGNING_KEY,required" validate:"min=32"`
	Issuer     string        `env:"JWT_ISSUER" envDefault:"estatecrm"`
	Leeway     time.Duration `env:"JWT_LEEWAY" envDefault:"30s"`
	CookieName string        `env:"JWT_COOKIE" envDefault:"access_token"`
}

// RBACConfig selects the role catalog. An empty CatalogFile uses the
// built-in catalog.
type RBACConfig struct {
	CatalogFile string `env:"RBAC_CATALOG_FILE"`
}

type GrantsConfig struct {
	CacheEnabled bool          `env:"GRANTS_CACHE_ENABLED" envDefault:"true"`
	CacheTTL     time.Duration `env:"GRANTS_CACHE_TTL" envDefault:"5m"`
}

// Audit sinks.
const (
	AuditSinkPostgres = "postgres"
	AuditSinkLog      = "log"
)

type AuditConfig struct {
	Sink         string        `env:"AUDIT_SINK" envDefault:"postgres" validate:"oneof=postgres log"`
	BufferSize   int           `env:"AUDIT_BUFFER_SIZE" envDefault:"1024" validate:"gte=0"`
	BatchSize    int           `env:"AUDIT_BATCH_SIZE" envDefault:"100" validate:"gte=0"`
	BatchTimeout time.Duration `env:"AUDIT_BATCH_TIMEOUT" envDefault:"1s"`
}

// RateLimitConfig bounds calls to the permission check endpoint per principal.
type RateLimitConfig struct {
	CheckRequests int           `env:"RATE_LIMIT_CHECK_REQUESTS" envDefault:"60" validate:"gt=0"`
	CheckWindow   time.Duration `env:"RATE_LIMIT_CHECK_WINDOW" envDefault:"1m"`
}

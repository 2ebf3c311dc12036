package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port       string `env:"PORT,        default=8000"`
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	CORSOrigin string `env:"CORS_ORIGIN, default=*"`
	UploadDir  string `env:"UPLOAD_DIR,  default=./public/temp"`
	BodyLimit  string `env:"BODY_LIMIT,  default=16M"`

	Auth     AuthConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Activity ActivityConfig
	Media    MediaConfig
}

type AuthConfig struct {
	AccessSecret  string        `env:"ACCESS_TOKEN_SECRET, required"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_EXPIRY, default=24h"`
	RefreshSecret string        `env:"REFRESH_TOKEN_SECRET, required"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_EXPIRY, default=240h"`
	BcryptCost    int           `env:"BCRYPT_COST,         default=10"`
	CookieSecure  bool          `env:"COOKIE_SECURE,       default=true"`
}

type MongoConfig struct {
	URI      string `env:"MONGODB_URI, default=mongodb://localhost:27017"`
	Database string `env:"DB_NAME,     default=videotube"`
}

// RedisConfig is optional: an empty Addr disables the activity stream.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type ActivityConfig struct {
	Stream  string `env:"ACTIVITY_STREAM,  default=account:activity"`
	Workers int    `env:"ACTIVITY_WORKERS, default=4"`
}

type MediaConfig struct {
	Provider  string `env:"MEDIA_PROVIDER,   default=minio"`
	Endpoint  string `env:"MEDIA_ENDPOINT,   default=localhost:9000"`
	AccessKey string `env:"MEDIA_ACCESS_KEY"`
	SecretKey string `env:"MEDIA_SECRET_KEY"`
	Bucket    string `env:"MEDIA_BUCKET,     default=videotube"`
	Region    string `env:"MEDIA_REGION,     default=us-east-1"`
	PublicURL string `env:"MEDIA_PUBLIC_URL"`
	UseSSL    bool   `env:"MEDIA_USE_SSL,    default=false"`
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith resolves the configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, err
	}
	if cfg.Activity.Workers < 1 {
		return nil, fmt.Errorf("ACTIVITY_WORKERS must be positive, got %d", cfg.Activity.Workers)
	}
	return &cfg, nil
}

package config

import (
	"context"
	"log/slog"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port         string `env:"PORT,          default=8080"`
	Env          string `env:"ENV,           default=development"`
	LogLevel     string `env:"LOG_LEVEL,     default=info"`
	CookieSecret string `env:"COOKIE_SECRET, default=osas-dev-cookie-secret"`
	TokenSecret  string `env:"TOKEN_SECRET,  default=osas-dev-token-secret"`

	Views   ViewsConfig
	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type ViewsConfig struct {
	// Root is the directory holding the view templates; Assets is served
	// verbatim under /app/assets.
	Root   string `env:"VIEWS_ROOT,  default=web/views"`
	Assets string `env:"ASSETS_ROOT, default=web/assets"`
}

type SessionConfig struct {
	Dir string `env:"SESSION_DIR, default=var/sessions"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=osas_portal"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger *slog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		panic(err)
	}
	return &cfg
}

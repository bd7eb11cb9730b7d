package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	EventsChannel       string // Redis pub/sub channel for committed ledger events
	EventsBacklog       int64  // recent events kept in Redis for late subscribers
	LogLevel            string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("EVENTS_CHANNEL", "propshare:events")
	viper.SetDefault("EVENTS_BACKLOG", 200)
	viper.SetDefault("LOG_LEVEL", "info")

	env := viper.GetString("NODE_ENV")
	if env == "" {
		env = viper.GetString("APP_ENV")
	}
	if env == "" {
		env = "development"
	}

	return &Config{
		Env:                 env,
		Port:                viper.GetString("PORT"),
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         DatabaseURL(env),
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		EventsChannel:       viper.GetString("EVENTS_CHANNEL"),
		EventsBacklog:       viper.GetInt64("EVENTS_BACKLOG"),
		LogLevel:            viper.GetString("LOG_LEVEL"),
	}, nil
}

// DatabaseURL picks the DSN for env, falling back to the development one.
func DatabaseURL(env string) string {
	dbURL := viper.GetString("DATABASE_URL_DEV")
	switch env {
	case "production":
		dbURL = viper.GetString("DATABASE_URL_PROD")
	case "test":
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}
	return dbURL
}

// IsProduction reports whether cookies and CORS run in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	ServerPort           string
	Env                  string
	LogLevel             string
	DatabaseType         string
	DatabasePath         string
	DatabaseURL          string
	SessionDuration      time.Duration
	SessionSecret        string
	StaticFilesPath      string
	AudioPath            string
	TTSBaseURL           string
	WorkspaceIdleTimeout time.Duration
	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string
	Redis                RedisConfig
	TopicCacheTTL        time.Duration
	Email                EmailConfig
	LoginRateLimit       int
	LoginRateWindow      time.Duration
}

// RedisConfig holds the optional topic cache connection settings
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// EmailConfig configures journal notifications sent through Amazon SES
type EmailConfig struct {
	AWSRegion  string
	FromEmail  string
	FromName   string
	AppBaseURL string
	Debug      bool
}

// LoggerConfig is the subset of Config the logger needs
type LoggerConfig struct {
	Env   string
	Level string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "./spellwrite.db")
	v.SetDefault("database.url", "")
	v.SetDefault("session.duration", 24*time.Hour)
	v.SetDefault("session.secret", "")
	v.SetDefault("static.path", "./static")
	v.SetDefault("tts.base_url", "https://translate.google.com/translate_tts")
	v.SetDefault("workspace.idle_timeout", 2*time.Hour)
	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("oauth.redirect_base_url", "")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("topic.cache_ttl", 6*time.Hour)
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("ses.from_email", "")
	v.SetDefault("ses.from_name", "Spelling & Writing Practice")
	v.SetDefault("app.base_url", "http://localhost:8080")
	v.SetDefault("email.debug", false)
	v.SetDefault("login.rate_limit", 10)
	v.SetDefault("login.rate_window", time.Minute)
}

// Load reads configuration from an optional config.yaml and environment
// variables. Keys map to env vars by upper-casing and replacing dots with
// underscores, so "database.type" is read from DATABASE_TYPE.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ServerPort:           v.GetString("server.port"),
		Env:                  v.GetString("env"),
		LogLevel:             v.GetString("log.level"),
		DatabaseType:         strings.ToLower(v.GetString("database.type")),
		DatabasePath:         v.GetString("database.path"),
		DatabaseURL:          v.GetString("database.url"),
		SessionDuration:      v.GetDuration("session.duration"),
		SessionSecret:        v.GetString("session.secret"),
		StaticFilesPath:      v.GetString("static.path"),
		TTSBaseURL:           v.GetString("tts.base_url"),
		WorkspaceIdleTimeout: v.GetDuration("workspace.idle_timeout"),
		GoogleClientID:       v.GetString("google.client_id"),
		GoogleClientSecret:   v.GetString("google.client_secret"),
		OAuthRedirectBaseURL: v.GetString("oauth.redirect_base_url"),
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		TopicCacheTTL: v.GetDuration("topic.cache_ttl"),
		Email: EmailConfig{
			AWSRegion:  v.GetString("aws.region"),
			FromEmail:  v.GetString("ses.from_email"),
			FromName:   v.GetString("ses.from_name"),
			AppBaseURL: v.GetString("app.base_url"),
			Debug:      v.GetBool("email.debug"),
		},
		LoginRateLimit:  v.GetInt("login.rate_limit"),
		LoginRateWindow: v.GetDuration("login.rate_window"),
	}
	cfg.AudioPath = strings.TrimRight(cfg.StaticFilesPath, "/") + "/audio"

	switch cfg.DatabaseType {
	case "sqlite", "sqlite3", "":
	case "postgres", "postgresql", "mysql":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for database type %s", cfg.DatabaseType)
		}
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DatabaseType)
	}

	if cfg.SessionSecret == "" {
		if cfg.Env == "production" {
			return nil, errors.New("SESSION_SECRET must be set in production")
		}
		cfg.SessionSecret = "development-only-session-secret"
	}

	return cfg, nil
}

// Logger returns the logger settings
func (c *Config) Logger() LoggerConfig {
	return LoggerConfig{Env: c.Env, Level: c.LogLevel}
}

// GoogleEnabled reports whether Google sign-in is configured
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devJWTSecret = "dev-secret-change-me"

// Config holds runtime settings read from the environment (and an optional .env file)
type Config struct {
	MongoURI         string
	MongoDB          string
	RedisAddr        string
	Port             string
	JWTSecret        string
	JWTTTL           time.Duration
	AllowedOrigins   []string
	MaxUploadBytes   int64
	MaxScoreCacheTTL time.Duration
}

// Load reads .env files (when present) and then the process environment.
// A missing file is skipped; a malformed one is an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "auxilio_estudantil")
	v.SetDefault("REDIS_URI", "localhost:6379")
	v.SetDefault("PORT", "8080")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "2h")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 10)
	v.SetDefault("MAX_SCORE_CACHE_TTL", "24h")
	v.AutomaticEnv()

	cfg := &Config{
		MongoURI:         v.GetString("MONGO_URI"),
		MongoDB:          v.GetString("MONGO_DB"),
		RedisAddr:        strings.TrimPrefix(v.GetString("REDIS_URI"), "redis://"),
		Port:             v.GetString("PORT"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTTTL:           v.GetDuration("JWT_TTL"),
		MaxUploadBytes:   v.GetInt64("MAX_UPLOAD_MB") << 20,
		MaxScoreCacheTTL: v.GetDuration("MAX_SCORE_CACHE_TTL"),
	}
	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
		log.Println("Warning: JWT_SECRET not set, using development secret")
	}
	if cfg.JWTTTL <= 0 {
		cfg.JWTTTL = 2 * time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	return cfg, nil
}

// OriginAllowed reports whether origin may make cross-origin requests
func (c *Config) OriginAllowed(origin string) bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

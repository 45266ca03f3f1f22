package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// APIConfig holds runtime configuration for the API service.
type APIConfig struct {
	Environment          string
	Addr                 string
	APIPrefix            string
	DatabaseURL          string
	MigrationsDir        string
	SecretKey            string
	Algorithm            string
	AccessTokenTTL       time.Duration
	APIKeyTTL            time.Duration
	APIKeyEncryptionKey  string
	AdminEmail           string
	AdminPassword        string
	AdminName            string
	OrganizationName     string
	CORSOrigins          []string
	RateLimitRedisAddr   string
	RateLimitRedisPass   string
	RateLimitRedisDB     int
	LogLevel             string
	WebsocketWriteWindow time.Duration
}

var supportedAlgorithms = map[string]struct{}{"HS256": {}, "HS384": {}, "HS512": {}}

// LoadAPIConfig constructs an APIConfig from environment variables and the optional CONFIG_FILE.
func LoadAPIConfig() (APIConfig, error) {
	src, err := NewSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return APIConfig{}, err
	}
	return loadAPIConfig(src)
}

func loadAPIConfig(src Source) (APIConfig, error) {
	cfg := APIConfig{
		Environment:          src.GetString("APP_ENV", "development"),
		Addr:                 src.GetString("API_ADDR", ":12000"),
		APIPrefix:            src.GetString("API_PREFIX", "/api/v1"),
		DatabaseURL:          src.GetString("DATABASE_URL", "postgres://shiftwatch:shiftwatch@db:5432/shiftwatch?sslmode=disable"),
		MigrationsDir:        src.GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		SecretKey:            src.GetString("SECRET_KEY", ""),
		Algorithm:            strings.ToUpper(src.GetString("ALGORITHM", "HS256")),
		AccessTokenTTL:       time.Duration(src.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		APIKeyTTL:            time.Duration(src.GetInt("API_KEY_EXPIRE_DAYS", 365)) * 24 * time.Hour,
		APIKeyEncryptionKey:  src.GetString("API_KEY_ENCRYPTION_KEY", ""),
		AdminEmail:           strings.ToLower(src.GetString("ADMIN_EMAIL", "")),
		AdminPassword:        src.GetString("ADMIN_PASSWORD", ""),
		AdminName:            src.GetString("ADMIN_NAME", "Administrator"),
		OrganizationName:     src.GetString("ORGANIZATION_NAME", "Default Organization"),
		CORSOrigins:          src.GetList("BACKEND_CORS_ORIGINS", nil),
		RateLimitRedisAddr:   src.GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass:   src.GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:     src.GetInt("RATE_LIMIT_REDIS_DB", 0),
		LogLevel:             src.GetString("LOG_LEVEL", "info"),
		WebsocketWriteWindow: time.Duration(src.GetInt("WS_WRITE_TIMEOUT_SECONDS", 10)) * time.Second,
	}
	if cfg.APIKeyEncryptionKey == "" {
		cfg.APIKeyEncryptionKey = cfg.SecretKey
	}
	if err := cfg.Validate(); err != nil {
		return APIConfig{}, err
	}
	return cfg, nil
}

// Validate reports settings the service cannot start without.
func (c APIConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if _, ok := supportedAlgorithms[c.Algorithm]; !ok {
		return fmt.Errorf("unsupported ALGORITHM %q", c.Algorithm)
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.APIKeyTTL <= 0 {
		return fmt.Errorf("API_KEY_EXPIRE_DAYS must be positive")
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("API_PREFIX must start with /")
	}
	return nil
}

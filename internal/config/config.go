package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Port        string `validate:"required,numeric"`
	Environment string `validate:"oneof=dev test prod"`
	DatabaseURL string `validate:"required"`
	JWKSURL     string
	JWTSecret   string // HS256 fallback outside prod
	CORSOrigins string
	TablePrefix string
	LogDir      string // empty = stdout only
	// Blob storage
	BlobBackend       string `validate:"oneof=filesystem s3 memory"`
	StorageRoot       string `validate:"required_if=BlobBackend filesystem"`
	S3Bucket          string `validate:"required_if=BlobBackend s3"`
	S3Region          string `validate:"required_if=BlobBackend s3"`
	S3Endpoint        string
	S3KeyPrefix       string
	S3AccessKeyID     string
	S3SecretAccessKey string
	// Folder unlock sessions
	UnlockBackend string        `validate:"oneof=memory redis"`
	RedisURL      string        `validate:"required_if=UnlockBackend redis"`
	SessionTTL    time.Duration `validate:"gt=0"`
	// Uploads
	Upload UploadPolicy
}

var validate = validator.New()

// Load reads configuration from the environment on top of the embedded defaults
func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "dev")

	policy, err := DefaultUploadPolicy()
	if err != nil {
		return nil, err
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
		policy.MaxUploadBytes = n
	}
	if v := os.Getenv("ALLOWED_EXTENSIONS"); v != "" {
		policy.AllowedExtensions = normalizeExtensions(strings.Split(v, ","))
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       env,
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		JWKSURL:           getEnv("JWKS_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		CORSOrigins:       getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:       getTablePrefix(env),
		LogDir:            getEnv("LOG_DIR", ""),
		BlobBackend:       getEnv("BLOB_BACKEND", "filesystem"),
		StorageRoot:       getEnv("STORAGE_ROOT", "./uploads"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3KeyPrefix:       getEnv("S3_KEY_PREFIX", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		UnlockBackend:     getEnv("UNLOCK_BACKEND", "memory"),
		RedisURL:          getEnv("REDIS_URL", ""),
		SessionTTL:        sessionTTL,
		Upload:            *policy,
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags and rules tags cannot express
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	if cfg.Environment == "prod" && cfg.JWKSURL == "" {
		return fmt.Errorf("JWKS_URL is required in prod")
	}
	if cfg.Environment == "prod" && cfg.JWTSecret != "" {
		return fmt.Errorf("JWT_SECRET is not allowed in prod")
	}
	if cfg.Environment == "prod" && cfg.BlobBackend == "memory" {
		return fmt.Errorf("BLOB_BACKEND=memory is not allowed in prod")
	}
	return nil
}

// formatValidationError reports the first failing field
func formatValidationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		e := errs[0]
		return fmt.Errorf("config %s: failed '%s' (value: %v)", e.Namespace(), e.Tag(), e.Value())
	}
	return fmt.Errorf("config: %w", err)
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

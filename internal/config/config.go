package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const minJWTSecretBytes = 32

var supportedJWTAlgorithms = []string{"HS256", "HS384", "HS512"}

type Config struct {
	Port            string
	DatabaseURL     string
	DBDriver        string
	AllowOrigins    []string
	LogstashTCPAddr string
	LogLevel        string

	JWTSecret      string
	JWTAlgorithm   string
	AccessTokenTTL time.Duration

	PasswordResetTTL time.Duration
	ResetTokenSalt   string
	ResetLinkBaseURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	MinIOEndpoint     string
	MinIOAccessKey    string
	MinIOSecretKey    string
	MinIOUseSSL       bool
	MinIOBucketTodos  string
	MinIOPublicURL    string
	AttachmentMaxSize int64
}

// MinIOEnabled reports whether attachment storage has been configured.
func (c Config) MinIOEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

// Load reads .env (when present) and the process environment. Every missing
// required key is reported in a single error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("config: .env file not loaded")
	}

	var missing []string
	must := func(k string) string {
		v := strings.TrimSpace(os.Getenv(k))
		if v == "" {
			missing = append(missing, k)
		}
		return v
	}

	cfg := Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		DBDriver:        strings.ToLower(getenv("DB_DRIVER", "pgx")),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),
		LogLevel:        getenv("LOG_LEVEL", "info"),

		JWTSecret:    must("JWT_SECRET"),
		JWTAlgorithm: strings.ToUpper(must("JWT_ALGORITHM")),

		ResetTokenSalt:   getenv("RESET_TOKEN_SALT", "reset-password-salt"),
		ResetLinkBaseURL: strings.TrimRight(getenv("RESET_LINK_BASE_URL", "http://localhost:8080/reset-password"), "/"),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", ""),

		MinIOEndpoint:    getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:   getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:   getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:      getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketTodos: getenv("MINIO_BUCKET_TODOS", "todo-attachments"),
		MinIOPublicURL:   getenv("MINIO_PUBLIC_URL", ""),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("config: missing required env: %s", strings.Join(missing, ", "))
	}

	var errs []error

	if len(cfg.JWTSecret) < minJWTSecretBytes {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretBytes))
	}
	if !isSupportedAlgorithm(cfg.JWTAlgorithm) {
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q not supported (want one of %s)", cfg.JWTAlgorithm, strings.Join(supportedJWTAlgorithms, ", ")))
	}
	if cfg.DBDriver != "pgx" && cfg.DBDriver != "postgres" {
		errs = append(errs, fmt.Errorf("DB_DRIVER %q not supported (want pgx or postgres)", cfg.DBDriver))
	}

	minutes, err := positiveInt("ACCESS_TOKEN_EXPIRE_MINUTES", getenv("ACCESS_TOKEN_EXPIRE_MINUTES", "30"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.AccessTokenTTL = time.Duration(minutes) * time.Minute

	cfg.PasswordResetTTL, err = positiveDuration("PASSWORD_RESET_TTL", getenv("PASSWORD_RESET_TTL", "1h"))
	if err != nil {
		errs = append(errs, err)
	}

	cfg.SMTPPort, err = positiveInt("SMTP_PORT", getenv("SMTP_PORT", "587"))
	if err != nil {
		errs = append(errs, err)
	}

	maxSize, err := positiveInt("ATTACHMENT_MAX_BYTES", getenv("ATTACHMENT_MAX_BYTES", "5242880"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.AttachmentMaxSize = int64(maxSize)

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func isSupportedAlgorithm(alg string) bool {
	for _, a := range supportedJWTAlgorithms {
		if a == alg {
			return true
		}
	}
	return false
}

func positiveInt(key, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

func positiveDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var lookupEnv = os.LookupEnv

// parseEnv overlays variables that are set and non-empty. Malformed numbers,
// booleans or durations panic, like the other config sources.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v, ok := lookup(name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(fmt.Errorf("%s: %w", name, err))
			}
			*dst = n
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				panic(fmt.Errorf("%s: %w", name, err))
			}
			*dst = b
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(fmt.Errorf("%s: %w", name, err))
			}
			*dst = d
		}
	}

	str("APP_ENV", &config.Env)
	if v, ok := lookup("PORT"); ok && v != "" {
		config.HTTPAddr = ":" + v
	}
	str("HTTP_ADDR", &config.HTTPAddr)
	str("GRPC_HEALTH_ADDR", &config.GRPCHealthAddr)
	str("STORAGE", &config.Storage)
	str("DATABASE_URL", &config.DatabaseDSN)
	str("JWT_SECRET", &config.JWTSecret)
	duration("SESSION_VALIDITY", &config.SessionValidity)
	num("SALT_ROUNDS", &config.BcryptCost)
	str("EMAIL_HMAC_KEY", &config.EmailHMACKey)
	str("EMAIL_ENCRYPTION_KEY", &config.EmailEncryptionKey)
	duration("RESET_TOKEN_VALIDITY", &config.ResetTokenValidity)
	str("APP_BASE_URL", &config.AppBaseURL)
	str("SMTP_HOST", &config.SMTPHost)
	num("SMTP_PORT", &config.SMTPPort)
	str("SMTP_USER", &config.SMTPUser)
	str("SMTP_PASS", &config.SMTPPassword)
	str("EMAIL_FROM", &config.EmailFrom)
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		config.AllowedOrigins = splitList(v)
	}
	boolean("RATE_LIMIT_ENABLED", &config.RateLimitEnabled)
	str("LOG_LEVEL", &config.LogLevel)
	str("LOG_FORMAT", &config.LogFormat)
	boolean("ARCHIVE_ENABLED", &config.ArchiveEnabled)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	duration("SHUTDOWN_TIMEOUT", &config.ShutdownTimeout)
	duration("JANITOR_INTERVAL", &config.JanitorInterval)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

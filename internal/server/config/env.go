package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/roleboard/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvHTTPAddr          = "ROLEBOARD_HTTP_ADDR"
	EnvDatabaseDSN       = "ROLEBOARD_DATABASE_DSN"
	EnvDatabaseURL       = "DATABASE_URL"
	EnvSecretKey         = "ROLEBOARD_SECRET_KEY"
	EnvSessionTTL        = "ROLEBOARD_SESSION_TTL"
	EnvCookieName        = "ROLEBOARD_COOKIE_NAME"
	EnvCookieSecure      = "ROLEBOARD_COOKIE_SECURE"
	EnvTrustForwardedFor = "ROLEBOARD_TRUST_FORWARDED_FOR"
	EnvPasswordScheme    = "ROLEBOARD_PASSWORD_SCHEME"
	EnvLogLevel          = "ROLEBOARD_LOG_LEVEL"
	EnvSeedOnStart       = "ROLEBOARD_SEED_ON_START"
	EnvDBMaxOpenConns    = "ROLEBOARD_DB_MAX_CONNS"
	EnvAuditLogPath      = "ROLEBOARD_AUDIT_LOG"
)

// parseEnv loads the dotenv file named by -env-file (default ".env") if it
// exists, then overlays every ROLEBOARD_* variable that is set. Variables
// already present in the process environment win over the file.
//
// A malformed dotenv file or an unparsable value panics, matching the
// behaviour of the JSON and flag layers.
func parseEnv(config *Config) {
	path := flagx.EnvFileFlag()
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	setString(&config.HTTPAddr, EnvHTTPAddr)
	setString(&config.DatabaseDSN, EnvDatabaseURL)
	setString(&config.DatabaseDSN, EnvDatabaseDSN)
	setString(&config.SecretKey, EnvSecretKey)
	setDuration(&config.SessionTTL, EnvSessionTTL)
	setString(&config.CookieName, EnvCookieName)
	setBool(&config.CookieSecure, EnvCookieSecure)
	setBool(&config.TrustForwardedFor, EnvTrustForwardedFor)
	setString(&config.PasswordScheme, EnvPasswordScheme)
	setString(&config.LogLevel, EnvLogLevel)
	setBool(&config.SeedOnStart, EnvSeedOnStart)
	setInt(&config.DBMaxOpenConns, EnvDBMaxOpenConns)
	setString(&config.AuditLogPath, EnvAuditLogPath)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		*dst = b
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}

package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/roleboard/internal/flagx"
	"github.com/dmitrijs2005/roleboard/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Pointer
// fields distinguish "absent" from zero values so the file only overrides the
// keys it actually sets.
type JsonConfig struct {
	HTTPAddr          string          `json:"http_addr"`
	DatabaseDSN       string          `json:"database_dsn"`
	SecretKey         string          `json:"secret_key"`
	SessionTTL        *timex.Duration `json:"session_ttl"`
	CookieName        string          `json:"cookie_name"`
	CookieSecure      *bool           `json:"cookie_secure"`
	TrustForwardedFor *bool           `json:"trust_forwarded_for"`
	PasswordScheme    string          `json:"password_scheme"`
	LogLevel          string          `json:"log_level"`
	SeedOnStart       *bool           `json:"seed_on_start"`
	DBMaxOpenConns    *int            `json:"db_max_open_conns"`
	AuditLogPath      string          `json:"audit_log"`
}

// parseJson loads the file given with -c or -config, if any, and copies the
// keys it sets into config. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay(&config.HTTPAddr, c.HTTPAddr)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.CookieName, c.CookieName)
	overlay(&config.PasswordScheme, c.PasswordScheme)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.AuditLogPath, c.AuditLogPath)

	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.TrustForwardedFor != nil {
		config.TrustForwardedFor = *c.TrustForwardedFor
	}
	if c.SeedOnStart != nil {
		config.SeedOnStart = *c.SeedOnStart
	}
	if c.DBMaxOpenConns != nil {
		config.DBMaxOpenConns = *c.DBMaxOpenConns
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

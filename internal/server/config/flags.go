package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/roleboard/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     HTTP bind address (e.g. ":8080")
//	-d string     PostgreSQL DSN
//	-s string     session signing secret
//	-t int        session lifetime, minutes
//	-n string     session cookie name
//	-p string     password scheme (plain|bcrypt)
//	-l string     log level
//	-max-conns    DB pool size
//	-audit string audit log file
//	-k            mark the session cookie Secure
//	-f            trust X-Forwarded-For for the audit ip
//	-seed         seed demo data on start
//
// os.Args is filtered through flagx.FilterArgs first so flags owned by other
// layers (-c, -env-file) do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-d", "-s", "-t", "-n", "-p", "-l", "-max-conns", "-audit"},
		"-k", "-f", "-seed")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session signing secret")
	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session lifetime (in minutes)")
	fs.StringVar(&config.CookieName, "n", config.CookieName, "session cookie name")
	fs.StringVar(&config.PasswordScheme, "p", config.PasswordScheme, "password scheme: plain or bcrypt")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.IntVar(&config.DBMaxOpenConns, "max-conns", config.DBMaxOpenConns, "max open DB connections")
	fs.StringVar(&config.AuditLogPath, "audit", config.AuditLogPath, "audit log file (default stdout)")
	fs.BoolVar(&config.CookieSecure, "k", config.CookieSecure, "secure session cookie")
	fs.BoolVar(&config.TrustForwardedFor, "f", config.TrustForwardedFor, "trust X-Forwarded-For")
	fs.BoolVar(&config.SeedOnStart, "seed", config.SeedOnStart, "seed demo data on start")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
		}
	})
}

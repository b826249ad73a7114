// Package config loads application configuration from environment variables.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name below.
const EnvPrefix = "SENTRYSITE_"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// APIURL is the base URL of the company's REST backend.
	APIURL string `env:"API_URL" envDefault:"http://localhost:5000"`
	// APITimeout bounds every backend request.
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`

	ListenAddr string `env:"LISTEN_ADDR" envDefault:"127.0.0.1:8080"`
	DBPath     string `env:"DB_PATH" envDefault:"sentrysite.db"`

	// SecretKeyHex is 64 hex characters (32 bytes) used to encrypt stored
	// admin tokens. Required.
	SecretKeyHex string `env:"SECRET_KEY"`
	// SessionKeyHex signs the session cookie. Derived from the secret key when unset.
	SessionKeyHex string `env:"SESSION_KEY"`
	CookieSecure  bool   `env:"COOKIE_SECURE" envDefault:"false"`

	StatsInterval time.Duration `env:"STATS_INTERVAL" envDefault:"60s"`
	VerifyTokens  bool          `env:"VERIFY_TOKENS" envDefault:"true"`

	RecaptchaSecret      string `env:"RECAPTCHA_SECRET"`
	ContactRatePerMinute int    `env:"CONTACT_RATE_PER_MINUTE" envDefault:"5"`
	// TrustedProxies are the CIDRs allowed to set X-Real-IP and
	// X-Forwarded-For. Empty means the peer address is always used.
	TrustedProxies []netip.Prefix `env:"TRUSTED_PROXIES" envSeparator:","`

	BlogsPerPage int `env:"BLOGS_PER_PAGE" envDefault:"8"`
	AdminPerPage int `env:"ADMIN_PER_PAGE" envDefault:"10"`

	// SecretKey is the decoded SecretKeyHex.
	SecretKey []byte `env:"-"`
	// SessionKey is the decoded SessionKeyHex, or a key derived from SecretKey.
	SessionKey []byte `env:"-"`
}

// Load reads an optional .env file, then environment variables prefixed with
// SENTRYSITE_, and returns a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%sAPI_URL must be an absolute http(s) URL, got %q", EnvPrefix, c.APIURL)
	}

	if c.SecretKeyHex == "" {
		return fmt.Errorf("%sSECRET_KEY is required (64 hex characters)", EnvPrefix)
	}
	key, err := decodeKey(c.SecretKeyHex)
	if err != nil {
		return fmt.Errorf("%sSECRET_KEY: %w", EnvPrefix, err)
	}
	c.SecretKey = key

	if c.SessionKeyHex != "" {
		sessionKey, err := decodeKey(c.SessionKeyHex)
		if err != nil {
			return fmt.Errorf("%sSESSION_KEY: %w", EnvPrefix, err)
		}
		c.SessionKey = sessionKey
	} else {
		sum := sha256.Sum256(append([]byte("sentrysite-session:"), key...))
		c.SessionKey = sum[:]
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("%sAPI_TIMEOUT must be positive", EnvPrefix)
	}
	if c.StatsInterval <= 0 {
		return fmt.Errorf("%sSTATS_INTERVAL must be positive", EnvPrefix)
	}
	if c.ContactRatePerMinute < 1 {
		c.ContactRatePerMinute = 1
	}
	if c.BlogsPerPage < 1 {
		c.BlogsPerPage = 8
	}
	if c.AdminPerPage < 1 {
		c.AdminPerPage = 10
	}
	return nil
}

// decodeKey parses a 64-character hex string into 32 bytes.
func decodeKey(s string) ([]byte, error) {
	if len(s) != 64 {
		return nil, fmt.Errorf("must be 64 hex characters, got %d", len(s))
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("not valid hex: %w", err)
	}
	return key, nil
}

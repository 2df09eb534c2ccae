package config

import (
	"time"

	"github.com/rs/zerolog"
)

type Environment string

const (
	Live Environment = "live"
	Beta Environment = "beta"
	Dev  Environment = "dev"
)

type AdminConfig struct {
	Env          Environment   `yaml:"env"`
	Addr         string        `yaml:"addr"`
	BaseUrl      string        `yaml:"base_url"`
	LogLevel     zerolog.Level `yaml:"-"`
	LogLevelName string        `yaml:"log_level"`

	Backend BackendConfig `yaml:"backend"`
	Auth    AuthConfig    `yaml:"auth"`
	Theme   ThemeConfig   `yaml:"theme"`
	Dev     DevConfig     `yaml:"dev"`
}

type BackendConfig struct {
	// Root of the REST backend, without a trailing slash. API routes live
	// under /api, the Sanctum routes and /storage at the root.
	BaseUrl string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Lang    string        `yaml:"lang"`
}

type AuthConfig struct {
	CookieName      string        `yaml:"cookie_name"`
	CookieDomain    string        `yaml:"cookie_domain"`
	CookieSecure    bool          `yaml:"cookie_secure"`
	HashKey         string        `yaml:"hash_key"`
	BlockKey        string        `yaml:"block_key"`
	SessionDuration time.Duration `yaml:"session_duration"`
}

type ThemeConfig struct {
	SiteName     string `yaml:"site_name"`
	PrimaryColor string `yaml:"primary_color"`
}

type DevConfig struct {
	LiveTemplates bool `yaml:"live_templates"`
}

func (c *AdminConfig) IsLive() bool {
	return c.Env == Live
}

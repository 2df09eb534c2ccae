package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Path of an optional YAML file overlaid on top of the defaults below.
const ConfigPathEnv = "KCH_ADMIN_CONFIG"

var Config = Defaults()

func Defaults() AdminConfig {
	return AdminConfig{
		Env:          Dev,
		Addr:         ":9001",
		BaseUrl:      "http://localhost:9001",
		LogLevel:     zerolog.DebugLevel,
		LogLevelName: "debug",
		Backend: BackendConfig{
			BaseUrl: "http://localhost:8000",
			Timeout: 15 * time.Second,
			Lang:    "th",
		},
		Auth: AuthConfig{
			CookieName:      "KCHAdminSession",
			CookieDomain:    "",
			CookieSecure:    false,
			HashKey:         "dev-insecure-hash-key-change-me-0123456789abcdef",
			BlockKey:        "dev-insecure-block-key-32-bytes!",
			SessionDuration: 14 * 24 * time.Hour,
		},
		Theme: ThemeConfig{
			SiteName:     "Kohchang Hospital",
			PrimaryColor: "0d9488",
		},
		Dev: DevConfig{
			LiveTemplates: false,
		},
	}
}

func init() {
	path := os.Getenv(ConfigPathEnv)
	if path != "" {
		contents, err := os.ReadFile(path)
		if err != nil {
			panic(fmt.Sprintf("failed to read config file %s: %v", path, err))
		}
		if err := Overlay(&Config, contents); err != nil {
			panic(fmt.Sprintf("failed to load config file %s: %v", path, err))
		}
	}

	if addr := os.Getenv("KCH_ADMIN_ADDR"); addr != "" {
		Config.Addr = addr
	}
	if backendUrl := os.Getenv("KCH_BACKEND_URL"); backendUrl != "" {
		Config.Backend.BaseUrl = strings.TrimSuffix(backendUrl, "/")
	}
}

// Overlay decodes YAML into cfg. Keys absent from the document keep their
// current values.
func Overlay(cfg *AdminConfig, contents []byte) error {
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return err
	}

	cfg.BaseUrl = strings.TrimSuffix(cfg.BaseUrl, "/")
	cfg.Backend.BaseUrl = strings.TrimSuffix(cfg.Backend.BaseUrl, "/")

	level, err := zerolog.ParseLevel(cfg.LogLevelName)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevelName, err)
	}
	cfg.LogLevel = level

	switch cfg.Env {
	case Live, Beta, Dev:
	default:
		return fmt.Errorf("unknown environment %q", cfg.Env)
	}

	return nil
}

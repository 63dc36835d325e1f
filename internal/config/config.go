// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Server     ServerConfig
	CMS        CMSConfig
	Catalog    CatalogConfig
	Revalidate RevalidateConfig
	Site       SiteConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 30s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	TemplateDir  string        // Optional: parse templates from disk and reload on change
}

// CMSConfig holds WordPress client configuration.
type CMSConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Retries   int
	RPS       float64
}

// CatalogConfig holds cache lifetimes and navigation policy.
type CatalogConfig struct {
	RoomsTTL    time.Duration
	PostsTTL    time.Duration
	ProfileSlot bool // rooms get a profile slot 00 before their photos
	TagWrap     bool // tag sequences wrap around instead of returning to the tag list
}

// RevalidateConfig holds the cache webhook settings.
type RevalidateConfig struct {
	// Secret compared against the ?secret= parameter. Empty disables the webhook.
	Secret string
	// RPS and Burst limit webhook calls per client IP.
	RPS   float64
	Burst int
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
// Site content comes from the YAML file named by SITE_CONFIG, layered over
// the built-in defaults.
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	templateDir := fs.String("template-dir", "", "Load templates from this directory and reload on change")

	// CMS flags
	cmsBaseURL := fs.String("cms-base-url", "", "WordPress REST root")
	cmsTimeout := fs.String("cms-timeout", "", "CMS request timeout (default: 15s)")
	cmsRetries := fs.String("cms-retries", "", "CMS retries on 429/5xx (default: 2)")

	// Catalog flags
	catalogTTL := fs.String("catalog-ttl", "", "Room catalog cache lifetime (default: 60s)")
	profileSlot := fs.String("profile-slot", "", "Enable the room profile slot 00 (default: true)")
	tagWrap := fs.String("tag-wrap", "", "Wrap tag sequences around (default: false)")

	siteConfig := fs.String("site-config", "", "Path to the site YAML file")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			TemplateDir: getConfigValue(*templateDir, "TEMPLATE_DIR", ""),
		},
		CMS: CMSConfig{
			BaseURL:   strings.TrimRight(getConfigValue(*cmsBaseURL, "CMS_BASE_URL", "https://cms.roomandroom.org/w/wp-json/wp/v2"), "/"),
			UserAgent: getConfigValue("", "CMS_USER_AGENT", ""),
			Retries:   getIntConfigValue(*cmsRetries, "CMS_RETRIES", 2),
			RPS:       getFloatConfigValue("", "CMS_RPS", 5),
		},
		Catalog: CatalogConfig{
			ProfileSlot: getBoolConfigValue(*profileSlot, "PROFILE_SLOT", true),
			TagWrap:     getBoolConfigValue(*tagWrap, "TAG_WRAP", false),
		},
		Revalidate: RevalidateConfig{
			Secret: getConfigValue("", "REVALIDATE_SECRET", ""),
			RPS:    getFloatConfigValue("", "REVALIDATE_RPS", 0.2),
			Burst:  getIntConfigValue("", "REVALIDATE_BURST", 5),
		},
	}

	durations := []struct {
		flagValue, envKey, def string
		dst                    *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*cmsTimeout, "CMS_TIMEOUT", "15s", &cfg.CMS.Timeout},
		{*catalogTTL, "CATALOG_TTL", "60s", &cfg.Catalog.RoomsTTL},
		{"", "POSTS_TTL", "10m", &cfg.Catalog.PostsTTL},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	site, err := LoadSite(getConfigValue(*siteConfig, "SITE_CONFIG", ""))
	if err != nil {
		return nil, fmt.Errorf("load site config: %w", err)
	}
	cfg.Site = *site

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %q", c.Server.Port)
	}

	u, err := url.Parse(c.CMS.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid CMS base URL: %q", c.CMS.BaseURL)
	}

	if c.CMS.Retries < 0 {
		return fmt.Errorf("CMS retries cannot be negative: %d", c.CMS.Retries)
	}

	if c.Catalog.RoomsTTL <= 0 || c.Catalog.PostsTTL <= 0 {
		return errors.New("cache lifetimes must be positive")
	}

	// An empty secret is allowed; the webhook then rejects every call.

	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}

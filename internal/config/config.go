package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the entire application configuration
type Config struct {
	// Application settings
	App AppConfig `yaml:"app"`

	// Console backend server configuration
	API APIConfig `yaml:"api"`

	// Installer service connection
	Installer InstallerConfig `yaml:"installer"`

	// Log and kubeconfig download behaviour
	Downloads DownloadsConfig `yaml:"downloads"`

	// Initial values of the new cluster form
	ClusterDefaults ClusterDefaultsConfig `yaml:"cluster_defaults"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// AppConfig contains general application settings
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
	Debug       bool   `yaml:"debug"`
}

// APIConfig contains console backend server settings
type APIConfig struct {
	Host         string          `yaml:"host"`
	Port         int             `yaml:"port"`
	ReadTimeout  string          `yaml:"read_timeout"`
	WriteTimeout string          `yaml:"write_timeout"`
	TLSCertFile  string          `yaml:"tls_cert_file"`
	TLSKeyFile   string          `yaml:"tls_key_file"`
	AuthEnabled  bool            `yaml:"auth_enabled"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
	// WatchInterval is how often clusters followed over the websocket are polled
	WatchInterval string `yaml:"watch_interval"`
}

// RateLimitConfig configures the per-client request limiter
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// InstallerConfig describes how to reach the assisted installer service
type InstallerConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	// TokenEnv names an environment variable holding the token
	TokenEnv          string  `yaml:"token_env"`
	Timeout           string  `yaml:"timeout"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// DownloadsConfig contains download settings
type DownloadsConfig struct {
	// Presigned fetches logs through presigned object storage URLs instead of
	// streaming them from the installer.
	Presigned bool `yaml:"presigned"`
}

// ClusterDefaultsConfig contains defaults for cluster creation
type ClusterDefaultsConfig struct {
	OpenshiftVersion string `yaml:"openshift_version"`
	PullSecretFile   string `yaml:"pull_secret_file"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load loads configuration from YAML file with defaults
func Load(configPath string) (*Config, error) {
	config := getDefaults()

	var configFile string
	if configPath != "" {
		configFile = configPath
	} else {
		searchPaths := []string{
			"./assisted-console.yaml",
			"./config/assisted-console.yaml",
			"/etc/assisted-console/assisted-console.yaml",
			filepath.Join(os.Getenv("HOME"), ".assisted-console", "assisted-console.yaml"),
		}

		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	}

	applyEnvOverrides(&config)

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// validate validates the configuration and sets derived values
func (c *Config) validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level '%s': %w", c.Log.Level, err)
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("invalid API port: %d", c.API.Port)
	}
	if c.API.RateLimit.RequestsPerSecond < 0 || c.API.RateLimit.Burst < 0 {
		return fmt.Errorf("invalid API rate limit: %v/%d", c.API.RateLimit.RequestsPerSecond, c.API.RateLimit.Burst)
	}

	if d, err := time.ParseDuration(c.API.WatchInterval); err != nil || d <= 0 {
		return fmt.Errorf("invalid API watch interval '%s'", c.API.WatchInterval)
	}

	u, err := url.Parse(c.Installer.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid installer base URL '%s'", c.Installer.BaseURL)
	}
	c.Installer.BaseURL = strings.TrimRight(c.Installer.BaseURL, "/")

	if _, err := time.ParseDuration(c.Installer.Timeout); err != nil {
		return fmt.Errorf("invalid installer timeout '%s': %w", c.Installer.Timeout, err)
	}
	if c.Installer.RequestsPerSecond < 0 || c.Installer.Burst < 0 {
		return fmt.Errorf("invalid installer rate limit: %v/%d", c.Installer.RequestsPerSecond, c.Installer.Burst)
	}

	if c.Installer.Token == "" && c.Installer.TokenEnv != "" {
		c.Installer.Token = os.Getenv(c.Installer.TokenEnv)
	}

	return nil
}

// getDefaults returns a Config struct with default values based on environment
func getDefaults() Config {
	env := os.Getenv("ASSISTED_CONSOLE_ENVIRONMENT")
	if env == "" {
		env = os.Getenv("ENVIRONMENT")
	}

	if env == "development" || env == "dev" {
		return getDevelopmentDefaults()
	}
	return getProductionDefaults()
}

// getDevelopmentDefaults returns development-friendly defaults
func getDevelopmentDefaults() Config {
	config := getProductionDefaults()

	config.App.Environment = "development"
	config.API.AuthEnabled = false
	config.Log.Format = "text"
	config.Log.Level = "debug"

	return config
}

// getProductionDefaults returns secure production defaults
func getProductionDefaults() Config {
	return Config{
		App: AppConfig{
			Name:        "assisted-console",
			Version:     "dev",
			Environment: "production",
			Debug:       false,
		},
		API: APIConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  "30s",
			WriteTimeout: "5m", // log downloads stream through the write deadline
			AuthEnabled:  true,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 20,
				Burst:             40,
			},
			WatchInterval: "10s",
		},
		Installer: InstallerConfig{
			BaseURL:           "http://localhost:8090",
			TokenEnv:          "ASSISTED_INSTALLER_TOKEN",
			Timeout:           "30s",
			RequestsPerSecond: 10,
			Burst:             20,
		},
		Downloads: DownloadsConfig{
			Presigned: false,
		},
		ClusterDefaults: ClusterDefaultsConfig{
			OpenshiftVersion: "4.7",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ASSISTED_CONSOLE_API_PORT"); env != "" {
		if port := parseIntEnv(env); port > 0 {
			config.API.Port = port
		}
	}
	if env := os.Getenv("ASSISTED_CONSOLE_API_HOST"); env != "" {
		config.API.Host = env
	}
	if env := os.Getenv("ASSISTED_CONSOLE_LOG_LEVEL"); env != "" {
		config.Log.Level = env
	}
	if env := os.Getenv("ASSISTED_CONSOLE_DEBUG"); env == "true" {
		config.App.Debug = true
	}
	if env := os.Getenv("ASSISTED_CONSOLE_INSTALLER_URL"); env != "" {
		config.Installer.BaseURL = env
	}
	if env := os.Getenv("ASSISTED_CONSOLE_INSTALLER_TOKEN"); env != "" {
		config.Installer.Token = env
	}
	if env := os.Getenv("ASSISTED_CONSOLE_DOWNLOADS_PRESIGNED"); env != "" {
		config.Downloads.Presigned = env == "true"
	}
}

// parseIntEnv safely parses an integer from environment variable
func parseIntEnv(env string) int {
	var i int
	if _, err := fmt.Sscanf(env, "%d", &i); err == nil {
		return i
	}
	return 0
}

// GetAddress returns the formatted listen address
func (c *APIConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsTLSEnabled returns true if TLS is configured for API
func (c *APIConfig) IsTLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// GetWatchInterval returns the websocket poll interval, 10s when unset
func (c *APIConfig) GetWatchInterval() time.Duration {
	d, err := time.ParseDuration(c.WatchInterval)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// GetTimeout returns the per-request installer timeout. Load has already
// validated it, so a parse failure falls back to 30s.
func (c *InstallerConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// PullSecret reads the configured pull secret file, or returns "" when none is set
func (c *ClusterDefaultsConfig) PullSecret() (string, error) {
	if c.PullSecretFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.PullSecretFile)
	if err != nil {
		return "", fmt.Errorf("failed to read pull secret file %s: %w", c.PullSecretFile, err)
	}
	return strings.TrimSpace(string(data)), nil
}

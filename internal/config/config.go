// Package config loads the agent configuration.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/netinit-io/netinit/internal/log"
)

// Config holds the agent configuration.
type Config struct {
	// MetadataURL is the base URL of the HTTP metadata service.
	MetadataURL string `yaml:"metadata_url"`
	// MetadataFile points at a local network_data.json (config drive).
	// When set it takes precedence over the HTTP service.
	MetadataFile string `yaml:"metadata_file"`
	// DataDir holds the run-history database.
	DataDir string `yaml:"data_dir"`
	// AdapterBackend selects the OS configurer: "iproute" or "noop".
	AdapterBackend string `yaml:"adapter_backend"`
	// Schedule is the re-provisioning cron expression for serve mode.
	Schedule string `yaml:"schedule"`
	// RequestTimeout bounds one metadata fetch, in seconds.
	RequestTimeout int `yaml:"request_timeout"`

	ConfigFile string `yaml:"-"`
}

// Load loads configuration with the following priority (highest to
// lowest): CLI opts, config file, environment variables, defaults.
func Load(opts *Config) *Config {
	cfg := &Config{
		MetadataURL:    "http://169.254.169.254/",
		DataDir:        "./data",
		AdapterBackend: "iproute",
		Schedule:       "@every 15m",
		RequestTimeout: 10,
	}

	// Environment first, then the config file on top of it.
	cfg.MetadataURL = coalesce(os.Getenv("NETINIT_METADATA_URL"), cfg.MetadataURL)
	cfg.MetadataFile = coalesce(os.Getenv("NETINIT_METADATA_FILE"), cfg.MetadataFile)
	cfg.DataDir = coalesce(os.Getenv("NETINIT_DATA_DIR"), cfg.DataDir)
	cfg.AdapterBackend = coalesce(os.Getenv("NETINIT_ADAPTER_BACKEND"), cfg.AdapterBackend)
	cfg.Schedule = coalesce(os.Getenv("NETINIT_SCHEDULE"), cfg.Schedule)
	if v := os.Getenv("NETINIT_REQUEST_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RequestTimeout = n
		}
	}

	configFile := coalesce(os.Getenv("NETINIT_CONFIG"), "netinit.yaml")
	if _, err := os.Stat(configFile); err == nil {
		if err := loadFromFile(cfg, configFile); err != nil {
			log.Warn("failed to load config file", "file", configFile, "error", err)
		} else {
			cfg.ConfigFile = configFile
		}
	}

	if opts != nil {
		if opts.MetadataURL != "" {
			cfg.MetadataURL = opts.MetadataURL
		}
		if opts.MetadataFile != "" {
			cfg.MetadataFile = opts.MetadataFile
		}
		if opts.DataDir != "" {
			cfg.DataDir = opts.DataDir
		}
		if opts.AdapterBackend != "" {
			cfg.AdapterBackend = opts.AdapterBackend
		}
		if opts.Schedule != "" {
			cfg.Schedule = opts.Schedule
		}
		if opts.RequestTimeout > 0 {
			cfg.RequestTimeout = opts.RequestTimeout
		}
	}

	if cfg.AdapterBackend != "iproute" && cfg.AdapterBackend != "noop" {
		cfg.AdapterBackend = "iproute"
	}
	return cfg
}

func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// String returns a description of the config source.
func (c *Config) String() string {
	if c.ConfigFile != "" {
		return fmt.Sprintf("config file (%s)", c.ConfigFile)
	}
	return "environment variables"
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

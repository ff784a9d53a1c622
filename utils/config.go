package utils

import (
	"eduadmin-client/models"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// GetConfig reads the configuration from environment variables or config files
func GetConfig() (*models.Config, error) {
	config, err := Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return config, nil
}

// Load initializes and returns the application configuration using Viper
func Load() (*models.Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../")

	setDefaults(v)

	// Enable environment variable support
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Config file not found, continue with defaults and env vars
		fmt.Printf("Config file not found (%v), using defaults and environment variables\n", err)
	}

	var config models.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Durations may arrive as strings from the config file
	if s := v.GetString("monitor_interval"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid monitor_interval format: %w", err)
		}
		config.MonitorInterval = d
	}
	if s := v.GetString("local_auth_ttl"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid local_auth_ttl format: %w", err)
		}
		config.LocalAuthTTL = d
	}
	if s := v.GetString("api_timeout"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid api_timeout format: %w", err)
		}
		config.APITimeout = d
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("app_name", "EduAdmin Client")
	v.SetDefault("app_version", "1.0.0")
	v.SetDefault("app_env", "development")
	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", "8082")
	v.SetDefault("cors_origins", []string{"*"})

	// Session defaults
	v.SetDefault("monitor_interval", "1m")
	v.SetDefault("default_school_code", "ADS001")

	// Credential exchange defaults
	v.SetDefault("api_base_url", "http://localhost:8081/api/v1")
	v.SetDefault("api_timeout", "15s")
	v.SetDefault("auth_provider", "http")

	// Local auth provider defaults (dev/offline only)
	v.SetDefault("local_auth_secret", "change-this-local-dev-secret")
	v.SetDefault("local_auth_ttl", "24h")

	// Storage defaults
	v.SetDefault("storage_backend", "file")
	v.SetDefault("storage_file_path", "./.eduadmin-session.json")

	// Redis defaults
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	// AWS defaults
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("aws_access_key_id", "")
	v.SetDefault("aws_secret_access_key", "")
	v.SetDefault("dynamodb_endpoint", "")
	v.SetDefault("dynamodb_table", "eduadmin-client-state")

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// validate checks if all required configuration is provided
func validate(c *models.Config) error {
	if c.AuthProvider != "http" && c.AuthProvider != "local" {
		return fmt.Errorf("auth_provider must be \"http\" or \"local\", got %q", c.AuthProvider)
	}

	if c.AuthProvider == "local" && c.LocalAuthSecret == "change-this-local-dev-secret" && c.AppEnv == "production" {
		return fmt.Errorf("LOCAL_AUTH_SECRET must be set when using the local provider in production")
	}

	switch c.StorageBackend {
	case "file", "memory", "redis", "dynamo":
	default:
		return fmt.Errorf("unknown storage_backend %q", c.StorageBackend)
	}

	if c.MonitorInterval < time.Second {
		return fmt.Errorf("monitor_interval must be at least 1s, got %s", c.MonitorInterval)
	}

	return nil
}

package models

import "time"

// Config holds all configuration for the client core.
type Config struct {
	// Application
	AppName    string `mapstructure:"app_name"`
	AppVersion string `mapstructure:"app_version"`
	AppEnv     string `mapstructure:"app_env"`
	AppHost    string `mapstructure:"app_host"`
	AppPort    string `mapstructure:"app_port"`

	// CORS
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Session
	MonitorInterval   time.Duration `mapstructure:"monitor_interval"`
	DefaultSchoolCode string        `mapstructure:"default_school_code"`

	// Credential exchange
	APIBaseURL   string        `mapstructure:"api_base_url"`
	APITimeout   time.Duration `mapstructure:"api_timeout"`
	AuthProvider string        `mapstructure:"auth_provider"` // "http" or "local"

	// Local auth provider (dev/offline)
	LocalAuthSecret string        `mapstructure:"local_auth_secret"`
	LocalAuthTTL    time.Duration `mapstructure:"local_auth_ttl"`

	// Storage
	StorageBackend  string `mapstructure:"storage_backend"` // "file", "memory", "redis", "dynamo"
	StorageFilePath string `mapstructure:"storage_file_path"`

	// Redis
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	// AWS / DynamoDB
	AWSRegion          string `mapstructure:"aws_region"`
	AWSAccessKeyID     string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey string `mapstructure:"aws_secret_access_key"`
	DynamoDBEndpoint   string `mapstructure:"dynamodb_endpoint"`
	DynamoDBTable      string `mapstructure:"dynamodb_table"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

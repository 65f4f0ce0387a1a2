package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/famledger/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of Config. Durations go through
// timex.Duration so both "1s" and integer nanoseconds are accepted. Zero
// values leave the current setting alone.
type FileConfig struct {
	Backend                     string         `json:"backend" yaml:"backend"`
	LocalDriver                 string         `json:"local_driver" yaml:"local_driver"`
	SQLitePath                  string         `json:"sqlite_path" yaml:"sqlite_path"`
	RedisURL                    string         `json:"redis_url" yaml:"redis_url"`
	KeyPrefix                   string         `json:"key_prefix" yaml:"key_prefix"`
	RemoteDriver                string         `json:"remote_driver" yaml:"remote_driver"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	QueueSize                   int            `json:"queue_size" yaml:"queue_size"`
	QueueWorkers                int            `json:"queue_workers" yaml:"queue_workers"`
	QueueMaxRetries             int            `json:"queue_max_retries" yaml:"queue_max_retries"`
	QueueRetryDelay             timex.Duration `json:"queue_retry_delay" yaml:"queue_retry_delay"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	CORSAllowOrigins            []string       `json:"cors_allow_origins" yaml:"cors_allow_origins"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	LogFormat                   string         `json:"log_format" yaml:"log_format"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
	S3RootUser                  string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	CredentialsPassphrase       string         `json:"credentials_passphrase" yaml:"credentials_passphrase"`
}

// parseFile overlays path onto config. ".yaml" and ".yml" files are read as
// YAML, anything else as JSON.
func parseFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.Backend, c.Backend)
	setString(&config.LocalDriver, c.LocalDriver)
	setString(&config.SQLitePath, c.SQLitePath)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.KeyPrefix, c.KeyPrefix)
	setString(&config.RemoteDriver, c.RemoteDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	if c.QueueSize != 0 {
		config.QueueSize = c.QueueSize
	}
	if c.QueueWorkers != 0 {
		config.QueueWorkers = c.QueueWorkers
	}
	if c.QueueMaxRetries != 0 {
		config.QueueMaxRetries = c.QueueMaxRetries
	}
	if c.QueueRetryDelay.Duration != 0 {
		config.QueueRetryDelay = c.QueueRetryDelay.Duration
	}
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	if len(c.CORSAllowOrigins) > 0 {
		config.CORSAllowOrigins = c.CORSAllowOrigins
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.CredentialsPassphrase, c.CredentialsPassphrase)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

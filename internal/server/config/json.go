package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/passkeeper/internal/flagx"
	"github.com/dmitrijs2005/passkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of a config file. Duration fields accept
// both "1s"-style strings and integer nanoseconds. Pointer fields tell an
// explicit false or zero apart from an omitted key.
type JsonConfig struct {
	EndpointAddrHTTP        string         `json:"endpoint_addr_http"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	EncryptionKey           string         `json:"encryption_key"`
	BcryptCost              int            `json:"bcrypt_cost"`
	QueryTimeout            timex.Duration `json:"query_timeout"`
	CleanupInterval         timex.Duration `json:"cleanup_interval"`
	DevMode                 *bool          `json:"dev_mode"`
	LogLevel                string         `json:"log_level"`
	S3RootUser              string         `json:"s3_root_user"`
	S3RootPassword          string         `json:"s3_root_password"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
	ExportLinkValidity      timex.Duration `json:"export_link_validity"`
}

// parseJson overlays values from the file named by -c / -config. Keys
// missing from the file leave the current values alone. An unreadable or
// malformed file panics, as flag errors do.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.applyTo(config)
}

func (c *JsonConfig) applyTo(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.EncryptionKey, c.EncryptionKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.QueryTimeout.Duration > 0 {
		config.QueryTimeout = c.QueryTimeout.Duration
	}
	if c.CleanupInterval.Duration > 0 {
		config.CleanupInterval = c.CleanupInterval.Duration
	}
	if c.ExportLinkValidity.Duration > 0 {
		config.ExportLinkValidity = c.ExportLinkValidity.Duration
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.DevMode != nil {
		config.DevMode = *c.DevMode
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

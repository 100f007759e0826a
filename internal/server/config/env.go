package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "PASSKEEPER_"

// parseEnv overlays PASSKEEPER_* environment variables. Durations use Go
// syntax ("90s", "24h"). A malformed value panics, as flag errors do.
func parseEnv(config *Config) {
	parseEnvWith(config, os.LookupEnv)
}

func parseEnvWith(config *Config, lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		}
		*dst = d
	}

	str("HTTP_ADDR", &config.EndpointAddrHTTP)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	str("ENCRYPTION_KEY", &config.EncryptionKey)
	str("LOG_LEVEL", &config.LogLevel)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)

	dur("SESSION_VALIDITY", &config.SessionValidityDuration)
	dur("QUERY_TIMEOUT", &config.QueryTimeout)
	dur("CLEANUP_INTERVAL", &config.CleanupInterval)
	dur("EXPORT_LINK_VALIDITY", &config.ExportLinkValidity)

	if v, ok := lookup(EnvPrefix + "BCRYPT_COST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("%sBCRYPT_COST: %w", EnvPrefix, err))
		}
		config.BcryptCost = n
	}
	if v, ok := lookup(EnvPrefix + "DEV_MODE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("%sDEV_MODE: %w", EnvPrefix, err))
		}
		config.DevMode = b
	}
}

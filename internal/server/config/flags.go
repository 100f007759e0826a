package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/flagx"
)

var (
	knownFlags = []string{
		"-a", "-d", "-s", "-t", "-k", "-w", "-q", "-i", "-dev", "-l",
		"-u", "-p", "-b", "-g", "-e", "-x",
	}
	boolFlags = []string{"-dev"}
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN, or "memory://"
//	-s string   session token HMAC secret
//	-t int      session validity, minutes
//	-k string   hex-encoded 32 byte encryption master key
//	-w int      bcrypt cost
//	-q int      store query timeout, seconds
//	-i int      revoked token cleanup interval, minutes
//	-dev        development mode
//	-l string   log level (debug, info, warn, error)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-x int      export link validity, minutes
//
// os.Args is filtered with flagx so that -c/-config and unknown flags
// are left to other parsers. Integer duration flags are converted to
// time.Duration in their stated unit.
func parseFlags(config *Config) {
	args := flagx.FilterArgsWithBools(os.Args[1:], knownFlags, boolFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")
	fs.StringVar(&config.EncryptionKey, "k", config.EncryptionKey, "hex encoded encryption master key")
	fs.IntVar(&config.BcryptCost, "w", config.BcryptCost, "bcrypt cost")
	queryTimeout := fs.Int("q", int(config.QueryTimeout.Seconds()), "query timeout (in seconds)")
	cleanupInterval := fs.Int("i", int(config.CleanupInterval.Minutes()), "revoked token cleanup interval (in minutes)")
	fs.BoolVar(&config.DevMode, "dev", config.DevMode, "development mode")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	exportValidity := fs.Int("x", int(config.ExportLinkValidity.Minutes()), "export link validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
	config.QueryTimeout = time.Duration(*queryTimeout) * time.Second
	config.CleanupInterval = time.Duration(*cleanupInterval) * time.Minute
	config.ExportLinkValidity = time.Duration(*exportValidity) * time.Minute
}

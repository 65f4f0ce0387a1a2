package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/famledger/internal/flagx"
)

var flagNames = []string{
	"-a", "-m", "-l", "-f", "-k", "-x", "-r", "-d", "-w", "-q", "-n",
	"-s", "-t", "-o", "-v", "-u", "-p", "-b", "-g", "-e",
}

// parseFlags overlays the short flags found in args.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-m string   backend: local or remote
//	-l string   local driver: sqlite, redis or memory
//	-f string   SQLite file
//	-k string   Redis URL
//	-x string   key prefix of local snapshots
//	-r string   remote driver: postgres, mysql or memory
//	-d string   remote database DSN
//	-w int      write queue workers
//	-q int      write queue size
//	-n int      write retries
//	-s string   JWT HMAC secret key
//	-t int      token validity, minutes
//	-o string   log format: json, text or console
//	-v string   log level
//	-u/-p/-b/-g/-e string   S3 user, password, bucket, region, endpoint
//
// Other arguments are filtered out with flagx.FilterArgs first, so the
// CLI subcommands can carry their own flags.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, flagNames)

	fs := flag.NewFlagSet("config", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.Backend, "m", config.Backend, "backend (local|remote)")
	fs.StringVar(&config.LocalDriver, "l", config.LocalDriver, "local driver (sqlite|redis|memory)")
	fs.StringVar(&config.SQLitePath, "f", config.SQLitePath, "sqlite file")
	fs.StringVar(&config.RedisURL, "k", config.RedisURL, "redis url")
	fs.StringVar(&config.KeyPrefix, "x", config.KeyPrefix, "local key prefix")
	fs.StringVar(&config.RemoteDriver, "r", config.RemoteDriver, "remote driver (postgres|mysql|memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.QueueWorkers, "w", config.QueueWorkers, "write queue workers")
	fs.IntVar(&config.QueueSize, "q", config.QueueSize, "write queue size")
	fs.IntVar(&config.QueueMaxRetries, "n", config.QueueMaxRetries, "write retries")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "token validity (in minutes)")
	fs.StringVar(&config.LogFormat, "o", config.LogFormat, "log format (json|text|console)")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	config.AccessTokenValidityDuration = time.Duration(*tokenMinutes) * time.Minute
	return nil
}

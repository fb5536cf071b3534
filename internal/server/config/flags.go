package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/beppofit-auth/internal/flagx"
)

// parseFlags overlays selected Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-g string   gRPC health bind address (e.g. ":50051")
//	-d string   PostgreSQL DSN, or "memory"
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-f string   frontend base URL
//	-m string   mail driver (log, smtp, ses)
//	-r string   Redis address
//	-l string   log level
//
// Only these flags are looked at, so other components can parse their own.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-t", "-f", "-m", "-r", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT secret key")
	sessionTTL := fs.Int("t", int(config.SessionTokenTTL.Minutes()), "session token validity (in minutes)")
	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend base URL")
	fs.StringVar(&config.MailDriver, "m", config.MailDriver, "mail driver: log, smtp or ses")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.SessionTokenTTL = time.Duration(*sessionTTL) * time.Minute
	return nil
}

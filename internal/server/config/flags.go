package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC bind address, empty disables it
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-m string   signing method, HS256 or RS256
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-private-key-file / -public-key-file string   RS256 PEM files
//	-hash string        password hash, bcrypt or argon2id
//	-redis string       Redis address for the revocation list
//	-log-format string  json, text or zap
//	-log-level string   debug, info, warn, error
//	-seed bool          seed default data (use -seed=false to disable)
func parseFlags(config *Config) {
	args := flagx.Filter{
		Values: []string{
			"-a", "-g", "-d", "-s", "-m", "-t", "-r",
			"-private-key-file", "-public-key-file", "-hash", "-redis",
			"-log-format", "-log-level",
		},
		Switches: []string{"-seed"},
	}.Apply(os.Args[1:])

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.SigningMethod, "m", config.SigningMethod, "token signing method")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.RSAPrivateKeyFile, "private-key-file", config.RSAPrivateKeyFile, "RSA private key PEM file")
	fs.StringVar(&config.RSAPublicKeyFile, "public-key-file", config.RSAPublicKeyFile, "RSA public key PEM file")
	fs.StringVar(&config.PasswordHashAlgorithm, "hash", config.PasswordHashAlgorithm, "password hash algorithm")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.BoolVar(&config.SeedData, "seed", config.SeedData, "seed default data")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Minute flags only override when given, so sub-minute values from
	// earlier layers survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
		}
	})
}

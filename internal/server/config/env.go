package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays variables that are set, even to an empty string. Values
// that fail to parse panic, like the other layers.
func parseEnv(config *Config) {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	str("TM_HTTP_ADDR", &config.EndpointAddrHTTP)
	str("TM_GRPC_ADDR", &config.EndpointAddrGRPC)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("TM_SECRET_KEY", &config.SecretKey)
	str("TM_SIGNING_METHOD", &config.SigningMethod)
	str("RSA_PRIVATE_KEY", &config.RSAPrivateKeyPEM)
	str("RSA_PUBLIC_KEY", &config.RSAPublicKeyPEM)
	str("TM_REDIS_ADDR", &config.RedisAddr)
	str("TM_LOG_FORMAT", &config.LogFormat)
	str("TM_LOG_LEVEL", &config.LogLevel)

	if v, ok := os.LookupEnv("TM_ACCESS_TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.AccessTokenValidityDuration = d
	}
	if v, ok := os.LookupEnv("TM_SEED_DATA"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.SeedData = b
	}
}

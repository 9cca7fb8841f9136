package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/taskmanager/internal/flagx"
	"github.com/dmitrijs2005/taskmanager/internal/timex"
)

// JsonConfig mirrors Config for unmarshalling. Durations use timex.Duration
// so both "15m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	SigningMethod                string         `json:"signing_method"`
	RSAPrivateKeyFile            string         `json:"rsa_private_key_file"`
	RSAPublicKeyFile             string         `json:"rsa_public_key_file"`
	TokenIssuer                  string         `json:"token_issuer"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	PasswordHashAlgorithm        string         `json:"password_hash_algorithm"`
	BcryptCost                   int            `json:"bcrypt_cost"`
	RedisAddr                    string         `json:"redis_addr"`
	LogFormat                    string         `json:"log_format"`
	LogLevel                     string         `json:"log_level"`
	SeedData                     bool           `json:"seed_data"`
}

// parseJson overlays the file named by -c/-config onto config. Keys absent
// from the file keep their current value. Unreadable or invalid files panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.SigningMethod = c.SigningMethod
	config.RSAPrivateKeyFile = c.RSAPrivateKeyFile
	config.RSAPublicKeyFile = c.RSAPublicKeyFile
	config.TokenIssuer = c.TokenIssuer
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	config.PasswordHashAlgorithm = c.PasswordHashAlgorithm
	config.BcryptCost = c.BcryptCost
	config.RedisAddr = c.RedisAddr
	config.LogFormat = c.LogFormat
	config.LogLevel = c.LogLevel
	config.SeedData = c.SeedData
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrHTTP:             c.EndpointAddrHTTP,
		EndpointAddrGRPC:             c.EndpointAddrGRPC,
		DatabaseDSN:                  c.DatabaseDSN,
		SecretKey:                    c.SecretKey,
		SigningMethod:                c.SigningMethod,
		RSAPrivateKeyFile:            c.RSAPrivateKeyFile,
		RSAPublicKeyFile:             c.RSAPublicKeyFile,
		TokenIssuer:                  c.TokenIssuer,
		AccessTokenValidityDuration:  timex.Duration{Duration: c.AccessTokenValidityDuration},
		RefreshTokenValidityDuration: timex.Duration{Duration: c.RefreshTokenValidityDuration},
		PasswordHashAlgorithm:        c.PasswordHashAlgorithm,
		BcryptCost:                   c.BcryptCost,
		RedisAddr:                    c.RedisAddr,
		LogFormat:                    c.LogFormat,
		LogLevel:                     c.LogLevel,
		SeedData:                     c.SeedData,
	}
}

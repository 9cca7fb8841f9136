package server

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/auth"
	"github.com/dmitrijs2005/taskmanager/internal/server/config"
)

const (
	keyID         = "primary"
	generatedBits = 2048
)

// loadSigningKey picks the token key: the shared secret for HS256, and for
// RS256 the PEM strings, then the PEM files, then a freshly generated pair.
func loadSigningKey(ctx context.Context, c *config.Config, log logging.Logger) (*auth.SigningKey, error) {
	if strings.EqualFold(c.SigningMethod, config.SigningMethodHS256) {
		return auth.NewHMACKey(keyID, []byte(c.SecretKey))
	}

	if c.RSAPrivateKeyPEM != "" || c.RSAPublicKeyPEM != "" {
		return auth.LoadRSAKeyFromPEM(keyID, []byte(c.RSAPrivateKeyPEM), []byte(c.RSAPublicKeyPEM))
	}

	if c.RSAPrivateKeyFile != "" || c.RSAPublicKeyFile != "" {
		priv, err := readKeyFile(c.RSAPrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		pub, err := readKeyFile(c.RSAPublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read public key: %w", err)
		}
		return auth.LoadRSAKeyFromPEM(keyID, priv, pub)
	}

	log.Warn(ctx, "no RSA key configured, generating an ephemeral key pair; tokens will not survive a restart")
	return auth.GenerateRSAKey(keyID, generatedBits)
}

// readKeyFile returns nil for an unset path; the public half is then taken
// from the private key.
func readKeyFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

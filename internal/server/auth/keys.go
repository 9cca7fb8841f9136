package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/golang-jwt/jwt/v5"
)

// SigningKey pairs a JWT signing method with its key material. It is
// immutable once constructed.
type SigningKey struct {
	ID     string
	Method jwt.SigningMethod
	sign   any
	verify any
}

// NewHMACKey builds an HS256 key from a shared secret.
func NewHMACKey(id string, secret []byte) (*SigningKey, error) {
	if len(secret) == 0 {
		return nil, errors.New("hmac key: empty secret")
	}
	s := make([]byte, len(secret))
	copy(s, secret)
	return &SigningKey{ID: id, Method: jwt.SigningMethodHS256, sign: s, verify: s}, nil
}

// NewRSAKey builds an RS256 key. A nil pub is derived from priv; a nil priv
// yields a verify-only key.
func NewRSAKey(id string, priv *rsa.PrivateKey, pub *rsa.PublicKey) (*SigningKey, error) {
	if priv == nil && pub == nil {
		return nil, errors.New("rsa key: no key material")
	}
	if pub == nil {
		pub = &priv.PublicKey
	}
	k := &SigningKey{ID: id, Method: jwt.SigningMethodRS256, verify: pub}
	if priv != nil {
		k.sign = priv
	}
	return k, nil
}

// GenerateRSAKey creates a fresh key pair. Tokens signed with it do not
// survive a restart.
func GenerateRSAKey(id string, bits int) (*SigningKey, error) {
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("rsa key: %w", err)
	}
	return NewRSAKey(id, priv, nil)
}

// LoadRSAKeyFromPEM parses PKCS#1/PKCS#8 private and PKIX public keys.
// Either side may be given as bare base64 without the PEM armour, which is
// how keys usually arrive through environment variables.
func LoadRSAKeyFromPEM(id string, privPEM, pubPEM []byte) (*SigningKey, error) {
	var (
		priv *rsa.PrivateKey
		pub  *rsa.PublicKey
		err  error
	)
	if len(privPEM) > 0 {
		priv, err = jwt.ParseRSAPrivateKeyFromPEM(armour(privPEM, "PRIVATE KEY"))
		if err != nil {
			return nil, fmt.Errorf("rsa private key: %w", err)
		}
	}
	if len(pubPEM) > 0 {
		pub, err = jwt.ParseRSAPublicKeyFromPEM(armour(pubPEM, "PUBLIC KEY"))
		if err != nil {
			return nil, fmt.Errorf("rsa public key: %w", err)
		}
	}
	if priv != nil && pub != nil && !priv.PublicKey.Equal(pub) {
		return nil, errors.New("rsa key: public key does not match private key")
	}
	return NewRSAKey(id, priv, pub)
}

func armour(b []byte, kind string) []byte {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, "-----BEGIN") {
		return []byte(s)
	}
	return []byte("-----BEGIN " + kind + "-----\n" + s + "\n-----END " + kind + "-----\n")
}

// EncodePEM returns the PKCS#8 private and PKIX public encodings of an RSA key.
func (k *SigningKey) EncodePEM() (privPEM, pubPEM []byte, err error) {
	priv, ok := k.sign.(*rsa.PrivateKey)
	if !ok {
		return nil, nil, errors.New("encode pem: not an rsa private key")
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, nil, err
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	privPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	pubPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return privPEM, pubPEM, nil
}

// Keyring holds the current signing key. Readers never lock; Rotate swaps
// the pointer atomically so in-flight validations keep the key they loaded.
type Keyring struct {
	current atomic.Pointer[SigningKey]
}

func NewKeyring(k *SigningKey) *Keyring {
	r := &Keyring{}
	r.current.Store(k)
	return r
}

func (r *Keyring) Current() *SigningKey {
	return r.current.Load()
}

// Rotate makes k the only key accepted from now on.
func (r *Keyring) Rotate(k *SigningKey) {
	r.current.Store(k)
}

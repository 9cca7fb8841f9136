// Package cryptox implements one-way password hashing. Digests are
// self-describing strings (modular crypt format), so a stored digest can be
// verified regardless of which algorithm is currently configured for new
// passwords.
package cryptox

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskmanager/internal/common"
)

// Hasher hashes and verifies passwords.
//
// Verify returns (false, nil) for a wrong password and wraps
// common.ErrCorruptCredential when the digest itself cannot be parsed.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
}

// Algorithm names accepted by NewHasher.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// MultiHasher hashes with a primary algorithm and verifies digests produced
// by any supported algorithm, dispatching on the digest prefix.
type MultiHasher struct {
	primary Hasher
	bcrypt  *BcryptHasher
	argon2  *Argon2Hasher
}

// NewHasher returns a MultiHasher whose new digests use algorithm.
// bcryptCost is ignored for argon2id.
func NewHasher(algorithm string, bcryptCost int) (*MultiHasher, error) {
	m := &MultiHasher{
		bcrypt: NewBcryptHasher(bcryptCost),
		argon2: NewArgon2Hasher(DefaultArgon2Params),
	}
	switch strings.ToLower(algorithm) {
	case "", AlgorithmBcrypt:
		m.primary = m.bcrypt
	case AlgorithmArgon2id:
		m.primary = m.argon2
	default:
		return nil, fmt.Errorf("unknown password hash algorithm %q", algorithm)
	}
	return m, nil
}

func (m *MultiHasher) Hash(plaintext string) (string, error) {
	return m.primary.Hash(plaintext)
}

func (m *MultiHasher) Verify(plaintext, digest string) (bool, error) {
	switch {
	case isBcryptDigest(digest):
		return m.bcrypt.Verify(plaintext, digest)
	case strings.HasPrefix(digest, argon2Prefix):
		return m.argon2.Verify(plaintext, digest)
	default:
		return false, fmt.Errorf("%w: unrecognized digest format", common.ErrCorruptCredential)
	}
}

// Package security implements the authentication primitives: password
// hashing and session token encoding/decoding.
package security

import (
	"fmt"

	"github.com/matthewhartstonge/argon2"
)

// hashConfig holds the argon2id parameters used for new digests.
// Verification reads its parameters from the digest itself.
var hashConfig = argon2.DefaultConfig()

// HashPassword derives an encoded argon2id digest from a plaintext password.
// The digest is self-describing: algorithm, parameters, salt, and derived key
// are all embedded in the returned string.
func HashPassword(plain string) (string, error) {
	encoded, err := hashConfig.HashEncoded([]byte(plain))
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(encoded), nil
}

// VerifyPassword checks a plaintext password against an encoded digest.
// It returns false on mismatch or on a malformed digest; it never reports
// the cause. The underlying comparison is constant-time.
func VerifyPassword(plain, digest string) bool {
	ok, err := argon2.VerifyEncoded([]byte(plain), []byte(digest))
	return err == nil && ok
}

// AngelaMos | 2026
// security.go

package core

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const derivedKeyLength = 32

// DeriveKey expands the configured secret into a purpose-bound key so that
// a single secret never signs two kinds of token with the same bytes.
func DeriveKey(secret, purpose string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("derive key: empty secret")
	}

	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))

	key := make([]byte, derivedKeyLength)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	return key, nil
}

package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrNoCredential = errors.New("auth: neither password nor password_hash is configured")

// Credential is the single shared admin secret. It is kept either as a
// bcrypt hash or as the plain password.
type Credential struct {
	hash  []byte
	plain []byte
}

// New prefers hash when both are set.
func New(password, hash string) (*Credential, error) {
	if hash = strings.TrimSpace(hash); hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, err
		}
		return &Credential{hash: []byte(hash)}, nil
	}

	if password == "" {
		return nil, ErrNoCredential
	}

	return &Credential{plain: []byte(password)}, nil
}

// Verify reports whether candidate matches the credential.
func (c *Credential) Verify(candidate string) bool {
	if candidate == "" {
		return false
	}

	if c.hash != nil {
		return bcrypt.CompareHashAndPassword(c.hash, []byte(candidate)) == nil
	}

	return subtle.ConstantTimeCompare(c.plain, []byte(candidate)) == 1
}

// Hash returns a bcrypt hash suitable for the password_hash setting.
func Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(h), nil
}

// Package crypto seals provider credentials before they are written to the
// integrations table.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var ErrMalformedCiphertext = errors.New("malformed ciphertext")

type Cipher struct {
	key []byte
}

// NewCipher derives a 256-bit key from an arbitrary secret.
func NewCipher(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("encryption key is empty")
	}
	sum := sha256.Sum256([]byte(secret))
	return &Cipher{key: sum[:]}, nil
}

// Encrypt returns base64(nonce || ciphertext).
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrMalformedCiphertext
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}

	if len(raw) < aead.NonceSize() {
		return "", ErrMalformedCiphertext
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}

// EncryptOptional leaves nil values alone.
func (c *Cipher) EncryptOptional(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	out, err := c.Encrypt(*v)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Cipher) DecryptOptional(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	out, err := c.Decrypt(*v)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

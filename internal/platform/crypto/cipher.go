// Package crypto seals sensitive columns (salaries) at rest with AES-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Cipher is a no-op passthrough when built without a key so local
// environments work without DATA_ENCRYPTION_KEY.
type Cipher struct {
	aead cipher.AEAD
}

func NewCipher(key string) (*Cipher, error) {
	if key == "" {
		return &Cipher{}, nil
	}
	decoded := decodeKey(key)
	if len(decoded) != 32 {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must be 32 bytes after decoding, got %d", len(decoded))
	}
	block, err := aes.NewCipher(decoded)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

func (c *Cipher) Configured() bool {
	return c != nil && c.aead != nil
}

func (c *Cipher) Seal(plain []byte) ([]byte, error) {
	if len(plain) == 0 || !c.Configured() {
		return plain, nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plain, nil), nil
}

func (c *Cipher) Open(sealed []byte) ([]byte, error) {
	if len(sealed) == 0 || !c.Configured() {
		return sealed, nil
	}
	size := c.aead.NonceSize()
	if len(sealed) < size {
		return nil, ErrCiphertextTooShort
	}
	return c.aead.Open(nil, sealed[:size], sealed[size:], nil)
}

// SealAmount encrypts a monetary value. Zero is stored as NULL.
func (c *Cipher) SealAmount(amount float64) ([]byte, error) {
	if amount == 0 {
		return nil, nil
	}
	return c.Seal([]byte(strconv.FormatFloat(amount, 'f', 2, 64)))
}

func (c *Cipher) OpenAmount(sealed []byte) (float64, error) {
	if len(sealed) == 0 {
		return 0, nil
	}
	plain, err := c.Open(sealed)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(string(plain), 64)
}

func decodeKey(raw string) []byte {
	if len(raw) == 64 {
		if decoded, err := hex.DecodeString(raw); err == nil {
			return decoded
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return decoded
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		return decoded
	}
	return []byte(raw)
}

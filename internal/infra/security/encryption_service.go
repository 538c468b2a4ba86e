// File: internal/infra/security/encryption_service.go
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// sealedPrefix marks values written by Seal so plaintext rows written while
// encryption was disabled can still be read back.
const sealedPrefix = "enc:v1:"

// EncryptionService encrypts answer-log payloads at rest with AES-GCM.
// Wire format: base64(nonce || ciphertext). A nil service is valid and passes text through.
type EncryptionService struct {
	gcm cipher.AEAD
}

// NewEncryptionService requires a 32-byte key (AES-256).
func NewEncryptionService(key string) (*EncryptionService, error) {
	k := []byte(key)
	if len(k) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes; got %d", len(k))
	}
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &EncryptionService{gcm: gcm}, nil
}

// Enabled reports whether values are actually encrypted.
func (e *EncryptionService) Enabled() bool { return e != nil && e.gcm != nil }

func (e *EncryptionService) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}
	ct := e.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ct), nil
}

func (e *EncryptionService) Decrypt(b64 string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}
	ns := e.gcm.NonceSize()
	if len(data) < ns {
		return "", errors.New("ciphertext too short")
	}
	nonce, ct := data[:ns], data[ns:]
	pt, err := e.gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("gcm open: %w", err)
	}
	return string(pt), nil
}

// Seal encrypts s when the service is enabled and tags the result; otherwise s is returned as is.
func (e *EncryptionService) Seal(s string) (string, error) {
	if !e.Enabled() {
		return s, nil
	}
	ct, err := e.Encrypt(s)
	if err != nil {
		return "", err
	}
	return sealedPrefix + ct, nil
}

// Open reverses Seal. Untagged values are returned unchanged.
func (e *EncryptionService) Open(s string) (string, error) {
	if len(s) < len(sealedPrefix) || s[:len(sealedPrefix)] != sealedPrefix {
		return s, nil
	}
	if !e.Enabled() {
		return "", errors.New("value is encrypted but no encryption key is configured")
	}
	return e.Decrypt(s[len(sealedPrefix):])
}

package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// AESEncryptionService implements ports.EncryptionService using AES-256-GCM.
// It protects reader credentials at rest. Ciphertexts written under a
// retired key stay readable while that key is listed as previous.
type AESEncryptionService struct {
	current  cipher.AEAD
	previous []cipher.AEAD
}

// NewAESEncryptionService creates a new AES-256-GCM encryption service.
// Every key must be a 64-character hex string (32 bytes decoded).
func NewAESEncryptionService(hexKey string, previousKeys ...string) (*AESEncryptionService, error) {
	current, err := newGCM(hexKey)
	if err != nil {
		return nil, err
	}
	s := &AESEncryptionService{current: current}
	for i, k := range previousKeys {
		aead, err := newGCM(k)
		if err != nil {
			return nil, fmt.Errorf("previous key %d: %w", i, err)
		}
		s.previous = append(s.previous, aead)
	}
	return s, nil
}

func newGCM(hexKey string) (cipher.AEAD, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding AES key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("AES key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return aead, nil
}

// Encrypt encrypts plaintext under the current key.
// Returns hex-encoded string: nonce(12) + ciphertext.
func (s *AESEncryptionService) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, s.current.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	ciphertext := s.current.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(ciphertext), nil
}

// Decrypt decrypts a hex-encoded AES-256-GCM ciphertext, trying the current
// key first and then each previous key.
func (s *AESEncryptionService) Decrypt(ciphertextHex string) (string, error) {
	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}

	var lastErr error
	for _, aead := range append([]cipher.AEAD{s.current}, s.previous...) {
		nonceSize := aead.NonceSize()
		if len(ciphertext) < nonceSize {
			return "", errors.New("ciphertext too short")
		}
		plaintext, err := aead.Open(nil, ciphertext[:nonceSize], ciphertext[nonceSize:], nil)
		if err == nil {
			return string(plaintext), nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("decrypting: %w", lastErr)
}

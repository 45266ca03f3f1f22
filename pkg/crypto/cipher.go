package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"io"
)

// Sealer encrypts short secrets at rest using AES-GCM keyed from a passphrase.
type Sealer struct {
	key []byte
}

// NewSealer derives a 32 byte key from secret using SHA-256.
func NewSealer(secret string) Sealer {
	sum := sha256.Sum256([]byte(secret))
	return Sealer{key: sum[:]}
}

// Seal encrypts plaintext and returns nonce||ciphertext as base64.
func (s Sealer) Seal(plaintext string) (string, error) {
	gcm, err := s.aead()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func (s Sealer) Open(encoded string) (string, error) {
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	gcm, err := s.aead()
	if err != nil {
		return "", err
	}
	nonceSize := gcm.NonceSize()
	if len(payload) < nonceSize {
		return "", io.ErrUnexpectedEOF
	}
	plain, err := gcm.Open(nil, payload[:nonceSize], payload[nonceSize:], nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Matches reports whether encoded decrypts to candidate, comparing in constant time.
func (s Sealer) Matches(encoded, candidate string) bool {
	if encoded == "" || candidate == "" {
		return false
	}
	plain, err := s.Open(encoded)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(plain), []byte(candidate)) == 1
}

func (s Sealer) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

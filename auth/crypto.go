package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
)

func hashTo64(value string) []byte {
	hasher := sha256.New()
	hasher.Write([]byte(value))
	return hasher.Sum(nil)
}

// EncryptToken seals token with AES-GCM under a key derived from key. The
// nonce is prepended to the ciphertext.
func EncryptToken(token string, key string) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return aesGCM.Seal(nonce, nonce, []byte(token), nil), nil
}

func DecryptToken(encrypted []byte, key string) (string, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonceSize := aesGCM.NonceSize()
	if len(encrypted) < nonceSize {
		return "", errors.New("ciphertext too short")
	}
	nonce, ciphertext := encrypted[:nonceSize], encrypted[nonceSize:]
	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func newGCM(key string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(hashTo64(key))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

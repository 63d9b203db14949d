// Package cryptox seals and opens passphrase-protected blobs. Keys are
// derived with argon2id and payloads are encrypted with AES-256-GCM.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/babylog/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize  = 16
	NonceSize = 12
	KeySize   = 32
)

var (
	// ErrMalformed is returned when a sealed blob is too short or carries the
	// wrong magic prefix.
	ErrMalformed = errors.New("malformed sealed blob")
	// ErrDecrypt is returned when authentication fails, which almost always
	// means the passphrase is wrong.
	ErrDecrypt = errors.New("decryption failed")
)

// DeriveKey stretches a passphrase into a KeySize key.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// Seal encrypts plaintext under a key derived from passphrase. The result is
// laid out as magic | salt | nonce | ciphertext.
func Seal(magic, passphrase, plaintext []byte) ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(magic)+SaltSize+NonceSize+len(plaintext)+aead.Overhead())
	out = append(out, magic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, magic), nil
}

// Open reverses Seal.
func Open(magic, passphrase, blob []byte) ([]byte, error) {
	if len(blob) < len(magic)+SaltSize+NonceSize || !bytes.HasPrefix(blob, magic) {
		return nil, ErrMalformed
	}
	rest := blob[len(magic):]
	salt, nonce, ciphertext := rest[:SaltSize], rest[SaltSize:SaltSize+NonceSize], rest[SaltSize+NonceSize:]

	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, magic)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

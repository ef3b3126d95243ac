package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"autopipe/internal/errors"
	"autopipe/ports"
)

const (
	saltLength = 16
	keyLength  = 32 // AES-256
	pbkdf2Iter = 100_000
)

// Encryptor seals payloads with AES-256-GCM. The key is derived per payload
// from the master key with PBKDF2-SHA256 and a random salt, so two seals of
// the same bytes never share a key or ciphertext.
//
// Sealed layout: salt | nonce | ciphertext+tag.
type Encryptor struct {
	masterKey []byte
}

// NewEncryptor creates an encryptor from the configured master key.
func NewEncryptor(masterKey string) (*Encryptor, error) {
	if masterKey == "" {
		return nil, errors.New(errors.CodeEncryptionError, "master key is required")
	}
	return &Encryptor{masterKey: []byte(masterKey)}, nil
}

var _ ports.Encryptor = (*Encryptor)(nil)

// Seal encrypts plaintext.
func (e *Encryptor) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, errors.WithCode(errors.CodeEncryptionError,
			errors.Wrap(err, "failed to generate salt"))
	}

	gcm, err := e.aead(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.WithCode(errors.CodeEncryptionError,
			errors.Wrap(err, "failed to generate nonce"))
	}

	out := make([]byte, 0, saltLength+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// Open decrypts a sealed payload.
func (e *Encryptor) Open(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < saltLength {
		return nil, errors.New(errors.CodeEncryptionError, "sealed payload too short")
	}
	salt := ciphertext[:saltLength]

	gcm, err := e.aead(salt)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < saltLength+nonceSize {
		return nil, errors.New(errors.CodeEncryptionError, "sealed payload too short")
	}
	nonce := ciphertext[saltLength : saltLength+nonceSize]

	plaintext, err := gcm.Open(nil, nonce, ciphertext[saltLength+nonceSize:], nil)
	if err != nil {
		return nil, errors.WithCode(errors.CodeEncryptionError,
			errors.Wrap(err, "failed to decrypt payload"))
	}
	return plaintext, nil
}

func (e *Encryptor) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(e.masterKey, salt, pbkdf2Iter, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.WithCode(errors.CodeEncryptionError,
			errors.Wrap(err, "failed to create cipher"))
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.WithCode(errors.CodeEncryptionError,
			errors.Wrap(err, "failed to create GCM"))
	}
	return gcm, nil
}

package ports

import (
	"context"
)

// Encryptor seals and opens byte payloads for at-rest protection.
type Encryptor interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(ciphertext []byte) ([]byte, error)
}

// FileStore persists raw dataset bytes, encrypted at rest.
type FileStore interface {
	Put(ctx context.Context, key string, data []byte) (path string, err error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

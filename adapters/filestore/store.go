package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"autopipe/internal/errors"
	"autopipe/ports"
)

// LocalStore keeps dataset files on the local filesystem, sealed with the
// configured encryptor before they touch disk. Keys are flat names; path
// separators are rejected so a key can never escape the root.
type LocalStore struct {
	root      string
	encryptor ports.Encryptor
}

// NewLocalStore creates the store and its root directory.
func NewLocalStore(root string, encryptor ports.Encryptor) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, errors.Wrapf(err, "failed to create upload directory %s", root)
	}
	return &LocalStore{root: root, encryptor: encryptor}, nil
}

var _ ports.FileStore = (*LocalStore)(nil)

// Put seals and writes data under key, returning the on-disk path.
func (s *LocalStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	sealed, err := s.encryptor.Seal(data)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, sealed, 0o640); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", key)
	}
	return path, nil
}

// Get reads and opens the sealed file under key.
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	sealed, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("stored file")
		}
		return nil, errors.Wrapf(err, "failed to read %s", key)
	}
	return s.encryptor.Open(sealed)
}

// Delete removes the file under key. Deleting a missing key is not an error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete %s", key)
	}
	return nil
}

func (s *LocalStore) resolve(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return "", errors.InvalidInput("invalid storage key")
	}
	return filepath.Join(s.root, key+".enc"), nil
}

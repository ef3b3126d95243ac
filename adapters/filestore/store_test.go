package filestore

import (
	"bytes"
	"context"
	"os"
	"testing"

	"autopipe/adapters/crypt"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	enc, err := crypt.NewEncryptor("test-master-key")
	if err != nil {
		t.Fatal(err)
	}
	store, err := NewLocalStore(t.TempDir(), enc)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestPutGetDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	data := []byte("a,b\n1,2\n")

	path, err := store.Put(ctx, "ds-123", data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	// On-disk bytes must be sealed, not the raw upload.
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(onDisk, data) {
		t.Error("stored file contains plaintext")
	}

	got, err := store.Get(ctx, "ds-123")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get = %q, want %q", got, data)
	}

	if err := store.Delete(ctx, "ds-123"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "ds-123"); err == nil {
		t.Error("Get after Delete succeeded")
	}
	if err := store.Delete(ctx, "ds-123"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "../escape", "a/b", `a\b`} {
		if _, err := store.Put(ctx, key, []byte("x")); err == nil {
			t.Errorf("Put accepted key %q", key)
		}
	}
}

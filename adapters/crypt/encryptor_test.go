package crypt

import (
	"bytes"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	e, err := NewEncryptor("test-master-key")
	if err != nil {
		t.Fatalf("NewEncryptor: %v", err)
	}

	plaintext := []byte("age,income\n25,50000\n")
	sealed, err := e.Seal(plaintext)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if bytes.Contains(sealed, plaintext) {
		t.Fatal("sealed payload contains plaintext")
	}

	opened, err := e.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("round trip mismatch: got %q", opened)
	}
}

func TestSealIsNonDeterministic(t *testing.T) {
	e, _ := NewEncryptor("test-master-key")
	a, err := e.Seal([]byte("same bytes"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Seal([]byte("same bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Error("two seals of the same payload produced identical ciphertext")
	}
}

func TestOpenRejectsTampering(t *testing.T) {
	e, _ := NewEncryptor("test-master-key")
	sealed, err := e.Seal([]byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := e.Open(sealed); err == nil {
		t.Error("tampered payload opened without error")
	}
}

func TestOpenRejectsWrongKey(t *testing.T) {
	a, _ := NewEncryptor("key-one")
	b, _ := NewEncryptor("key-two")
	sealed, err := a.Seal([]byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Open(sealed); err == nil {
		t.Error("payload opened with the wrong master key")
	}
}

func TestOpenRejectsShortPayload(t *testing.T) {
	e, _ := NewEncryptor("test-master-key")
	if _, err := e.Open([]byte("short")); err == nil {
		t.Error("short payload opened without error")
	}
}

func TestNewEncryptorRequiresKey(t *testing.T) {
	if _, err := NewEncryptor(""); err == nil {
		t.Error("empty master key accepted")
	}
}

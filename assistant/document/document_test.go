package document

import (
	"crypto/md5"
	"encoding/hex"
	"testing"
)

func TestDocument_Hash(t *testing.T) {
	doc := Document{Content: "hello world"}

	sum := md5.Sum([]byte("hello world"))
	want := hex.EncodeToString(sum[:])
	if got := doc.Hash(); got != want {
		t.Errorf("expected hash %s, got %s", want, got)
	}

	// Same content hashes the same regardless of other fields.
	other := Document{ID: "different", Name: "other.txt", Content: "hello world"}
	if other.Hash() != doc.Hash() {
		t.Error("expected identical content to hash identically")
	}

	// NUL bytes are cleaned before hashing.
	withNul := Document{Content: "hello\x00world"}
	cleaned := Document{Content: "hello�world"}
	if withNul.Hash() != cleaned.Hash() {
		t.Error("expected NUL-containing content to hash like cleaned content")
	}
}

func TestDocument_Key(t *testing.T) {
	withID := Document{ID: "doc-1", Content: "some content"}
	if got := withID.Key(); got != "doc-1" {
		t.Errorf("expected explicit ID as key, got %q", got)
	}

	withoutID := Document{Content: "some content"}
	if got := withoutID.Key(); got != withoutID.Hash() {
		t.Errorf("expected content hash as key, got %q", got)
	}
}

func TestCleanContent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no NUL", "plain text", "plain text"},
		{"single NUL", "a\x00b", "a�b"},
		{"multiple NULs", "\x00x\x00", "�x�"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanContent(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

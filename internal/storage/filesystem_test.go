package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pawws/pawws/internal/config"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "proofs/a.png", strings.NewReader("first"), "image/png"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "proofs/a.png", strings.NewReader("second"), "image/png"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	rc, err := store.Open(ctx, "proofs/a.png")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "second" {
		t.Fatalf("content = %q, want second", data)
	}

	if err := store.Delete(ctx, "proofs/a.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(ctx, "proofs/a.png"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("open after delete err = %v, want ErrObjectNotFound", err)
	}
	if err := store.Delete(ctx, "proofs/a.png"); err != nil {
		t.Fatalf("deleting a missing blob must succeed: %v", err)
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "proofs/a.png", want: "proofs/a.png"},
		{key: "/animals/b.jpg", want: "animals/b.jpg"},
		{key: "./qr/c.png", want: "qr/c.png"},
		{key: `proofs\d.png`, want: "proofs/d.png"},
		{key: "../etc/passwd", wantErr: true},
		{key: "proofs/../../x", wantErr: true},
		{key: "  ", wantErr: true},
	}

	for _, tt := range tests {
		got, err := sanitizeKey(tt.key)
		if tt.wantErr {
			if err == nil {
				t.Errorf("sanitizeKey(%q) = %q, want error", tt.key, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("sanitizeKey(%q) = %q, %v; want %q", tt.key, got, err, tt.want)
		}
	}
}

func TestNewSelectsDriver(t *testing.T) {
	s, err := New(&config.Config{StorageDriver: "local", StoragePath: t.TempDir()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Fatalf("got %T, want *FileStore", s)
	}

	if _, err := New(&config.Config{StorageDriver: "ftp"}); err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
}

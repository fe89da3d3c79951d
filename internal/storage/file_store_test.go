package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"go.uber.org/zap"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func webpBytes() []byte {
	b := make([]byte, 16)
	copy(b, "RIFF\x00\x00\x00\x00WEBP")
	return b
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewFileStore(zap.NewNop(), dir, "http://localhost:8080")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return store
}

func TestFileStoreSaveImage_Success(t *testing.T) {
	store := newTestStore(t)

	saved, err := store.SaveImage("photo.png", "image/png", int64(len(pngBytes)), pngBytes)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(saved.URL, "http://localhost:8080/") {
		t.Fatalf("unexpected url %q", saved.URL)
	}
	// Nombre aleatorio de 32 hex más extensión, bajo año/mes.
	base := filepath.Base(saved.Path)
	if ok, _ := regexp.MatchString(`^[0-9a-f]{32}\.png$`, base); !ok {
		t.Fatalf("unexpected file name %q", base)
	}
	if strings.Contains(saved.Path, "photo") {
		t.Fatalf("stored path must not leak the original name: %q", saved.Path)
	}

	data, err := os.ReadFile(filepath.FromSlash(saved.Path))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(data, pngBytes) {
		t.Fatalf("stored bytes differ")
	}
}

func TestFileStoreSaveImage_RejectsDeclaredType(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.SaveImage("a.gif", "image/gif", 4, []byte{1, 2, 3, 4}); !errors.Is(err, ErrFileTypeNotAllowed) {
		t.Fatalf("expected ErrFileTypeNotAllowed, got %v", err)
	}
}

func TestFileStoreSaveImage_RejectsOversize(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.SaveImage("a.png", "image/png", maxFileSize+1, pngBytes); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestFileStoreSaveImage_RejectsMismatchedContent(t *testing.T) {
	store := newTestStore(t)

	// Un ejecutable renombrado a .png con tipo declarado válido.
	exe := []byte{0x4D, 0x5A, 0x90, 0x00, 0x03, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00}
	if _, err := store.SaveImage("evil.png", "image/png", int64(len(exe)), exe); !errors.Is(err, ErrFileContentInvalid) {
		t.Fatalf("expected ErrFileContentInvalid, got %v", err)
	}
}

func TestFileStoreSaveImage_AcceptsWebP(t *testing.T) {
	store := newTestStore(t)
	data := webpBytes()
	if _, err := store.SaveImage("a.webp", "image/webp", int64(len(data)), data); err != nil {
		t.Fatalf("expected webp accepted, got %v", err)
	}
}

func TestFileStoreDelete_SwallowsFailures(t *testing.T) {
	store := newTestStore(t)

	saved, err := store.SaveImage("a.png", "image/png", int64(len(pngBytes)), pngBytes)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	store.Delete(saved.Path)
	if _, err := os.Stat(filepath.FromSlash(saved.Path)); !os.IsNotExist(err) {
		t.Fatalf("expected file removed")
	}

	// Ni rutas inexistentes ni intentos de traversal deben producir pánico o error.
	store.Delete(saved.Path)
	store.Delete("../etc/passwd")
	store.Delete("/etc/passwd")
	store.Delete("")
}

func TestFileStoreDelete_IgnoresPathsOutsideBase(t *testing.T) {
	store := newTestStore(t)

	outside := filepath.Join(t.TempDir(), "keep.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store.Delete(outside)
	if _, err := os.Stat(outside); err != nil {
		t.Fatalf("file outside upload dir must not be deleted: %v", err)
	}
}

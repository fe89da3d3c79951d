package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// FileStore guarda imágenes subidas bajo un directorio base particionado por
// fecha, con nombres aleatorios desligados del nombre original.
type FileStore struct {
	logger  *zap.Logger
	baseDir string
	baseURL string
}

// StoredFile describe una imagen persistida.
type StoredFile struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

var (
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrFileTooLarge       = errors.New("file too large")
	ErrFileContentInvalid = errors.New("file content invalid")
)

const maxFileSize = 5 * 1024 * 1024

var allowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
	"image/avif": {},
}

func NewFileStore(logger *zap.Logger, baseDir, baseURL string) (*FileStore, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{
		logger:  logger,
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// ValidateImage aplica las dos etapas de validación: el tipo y tamaño
// declarados primero, la firma real del contenido después.
func ValidateImage(mimeType string, size int64, data []byte) error {
	if _, ok := allowedMIMETypes[strings.ToLower(mimeType)]; !ok {
		return ErrFileTypeNotAllowed
	}
	if size > maxFileSize || int64(len(data)) > maxFileSize {
		return ErrFileTooLarge
	}
	if !hasImageSignature(data) {
		return ErrFileContentInvalid
	}
	return nil
}

// SaveImage valida y escribe el archivo bajo {base}/YYYY/MM con un nombre
// aleatorio desligado del original.
func (s *FileStore) SaveImage(originalName, mimeType string, size int64, data []byte) (StoredFile, error) {
	if err := ValidateImage(mimeType, size, data); err != nil {
		return StoredFile{}, err
	}

	now := time.Now().UTC()
	dir := filepath.Join(s.baseDir, fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("create upload dir: %w", err)
	}

	name, err := randomFileName(originalName)
	if err != nil {
		return StoredFile{}, err
	}

	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return StoredFile{}, fmt.Errorf("write file: %w", err)
	}

	relPath := filepath.ToSlash(target)
	return StoredFile{
		URL:  s.baseURL + "/" + relPath,
		Path: relPath,
	}, nil
}

// Delete elimina un archivo subido. Los fallos no son críticos: se registran
// y no se propagan. Solo se aceptan rutas dentro del directorio base.
func (s *FileStore) Delete(relPath string) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimSpace(relPath)))
	base := filepath.Clean(s.baseDir)
	if cleaned == "" || cleaned == "." || !strings.HasPrefix(cleaned, base+string(os.PathSeparator)) {
		if s.logger != nil {
			s.logger.Warn("rejected file delete path", zap.String("path", relPath))
		}
		return
	}
	if err := os.Remove(cleaned); err != nil && !os.IsNotExist(err) {
		if s.logger != nil {
			s.logger.Warn("file delete failed", zap.Error(err), zap.String("path", relPath))
		}
	}
}

// hasImageSignature valida los números mágicos de JPEG, PNG y WebP.
func hasImageSignature(data []byte) bool {
	if len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return true
	}
	if len(data) >= 4 && data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return true
	}
	if len(data) >= 12 && data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return true
	}
	return false
}

func randomFileName(originalName string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate file name: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	return hex.EncodeToString(buf) + ext, nil
}

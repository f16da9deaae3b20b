package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"
	"github.com/pawws/pawws/internal/storage"
)

// Blob folders
const (
	FolderProofs    = "proofs"
	FolderAnimals   = "animals"
	FolderPaymentQR = "payment-qr"
)

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// FileService stores uploaded blobs under generated names.
// Note: type and size validation is done by the caller before calling Upload
type FileService struct {
	storage storage.Storage
}

func NewFileService(storage storage.Storage) *FileService {
	return &FileService{
		storage: storage,
	}
}

// Upload saves r under folder and returns the storage path.
func (s *FileService) Upload(ctx context.Context, folder string, r io.Reader, contentType string) (string, error) {
	storagePath := path.Join(folder, uuid.New().String()+extensions[contentType])

	err := s.storage.Save(ctx, storagePath, r, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return storagePath, nil
}

func (s *FileService) Open(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	return s.storage.Open(ctx, storagePath)
}

// Delete removes blobs, logging failures; the physical file may already be gone.
func (s *FileService) Delete(ctx context.Context, storagePaths ...string) {
	for _, p := range storagePaths {
		if p == "" {
			continue
		}
		err := s.storage.Delete(ctx, p)
		if err != nil {
			slog.Warn("failed to delete file from storage", "storage_path", p, "error", err)
		}
	}
}

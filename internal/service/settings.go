package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pawws/pawws/internal/model"
	"github.com/pawws/pawws/internal/repository"
)

// SettingsService manages shelter wide settings; today that is the payment QR code.
type SettingsService struct {
	paymentQRRepository repository.PaymentQRRepository
	fileService         *FileService
}

func NewSettingsService(paymentQRRepository repository.PaymentQRRepository, fileService *FileService) *SettingsService {
	return &SettingsService{
		paymentQRRepository: paymentQRRepository,
		fileService:         fileService,
	}
}

func (s *SettingsService) SetPaymentQR(ctx context.Context, actor *model.User, r io.Reader, contentType string) (*model.PaymentQR, error) {
	err := Authorize(actor, model.RoleAdmin)
	if err != nil {
		return nil, err
	}

	previous, err := s.paymentQRRepository.Get(ctx)
	if err != nil && !errors.Is(err, repository.ErrPaymentQRNotFound) {
		return nil, fmt.Errorf("failed to get payment qr: %w", err)
	}

	imagePath, err := s.fileService.Upload(ctx, FolderPaymentQR, r, contentType)
	if err != nil {
		return nil, err
	}

	qr := &model.PaymentQR{
		ImagePath:        imagePath,
		ImageContentType: contentType,
		UpdatedAt:        time.Now(),
	}

	err = s.paymentQRRepository.Save(ctx, qr)
	if err != nil {
		s.fileService.Delete(ctx, imagePath)
		return nil, fmt.Errorf("failed to save payment qr: %w", err)
	}

	if previous != nil {
		s.fileService.Delete(ctx, previous.ImagePath)
	}

	return qr, nil
}

// PaymentQR opens the current QR image. The caller closes the reader.
func (s *SettingsService) PaymentQR(ctx context.Context) (io.ReadCloser, string, error) {
	qr, err := s.paymentQRRepository.Get(ctx)
	if errors.Is(err, repository.ErrPaymentQRNotFound) {
		return nil, "", ErrPaymentQRNotSet
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get payment qr: %w", err)
	}

	rc, err := s.fileService.Open(ctx, qr.ImagePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open payment qr: %w", err)
	}

	return rc, qr.ImageContentType, nil
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/finwise-app/finwise-backend/internal/repository/storage"
	"github.com/google/uuid"
)

const (
	MaxReceiptSize    = 5 * 1024 * 1024 // 5MB
	MinReceiptWidth   = 50
	MinReceiptHeight  = 50
	ThumbnailWidth    = 200
	DisplayWidth      = 800
	JPEGQuality       = 85
	PresignedURLValid = 15 * time.Minute
)

var (
	ErrReceiptTooLarge    = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidFormat      = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrReceiptTooSmall    = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidImageData   = errors.New("invalid image data")
	ErrNoReceipt          = errors.New("expense has no receipt")
	ErrStorageUnavailable = errors.New("receipt storage not configured")
)

// AllowedExtensions maps extensions to content types
var AllowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

var receiptVariants = []struct {
	name     string
	maxWidth int
}{
	{"thumb", ThumbnailWidth},
	{"display", DisplayWidth},
	{"original", 0}, // 0 means keep original size
}

// ReceiptMetadata contains presigned URLs for the receipt variants
type ReceiptMetadata struct {
	ExpenseID    uuid.UUID `json:"expenseId"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	DisplayURL   string    `json:"displayUrl"`
	OriginalURL  string    `json:"originalUrl"`
}

// ReceiptService attaches receipt images to expenses. Uploads are resized
// into thumb/display/original JPEG variants stored under one base object
// path; the base path is saved on the expense row and presigned URLs are
// generated on demand.
type ReceiptService struct {
	storage     storage.ReceiptRepository
	expenseRepo domain.ExpenseRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(storage storage.ReceiptRepository, expenseRepo domain.ExpenseRepository) *ReceiptService {
	return &ReceiptService{storage: storage, expenseRepo: expenseRepo}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured).
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// validateAndDecode validates the image and returns the decoded image
func (s *ReceiptService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return nil, ErrInvalidFormat
	}

	// Decode to verify validity and check dimensions
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImageData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinReceiptWidth || bounds.Dy() < MinReceiptHeight {
		return nil, ErrReceiptTooSmall
	}

	return img, nil
}

// UploadReceipt validates the image, stores all variants and records the
// receipt path on the expense. Replaces any previous receipt.
func (s *ReceiptService) UploadReceipt(ctx context.Context, userID string, expenseID uuid.UUID, data []byte, filename string) (*ReceiptMetadata, error) {
	if !s.IsEnabled() {
		return nil, ErrStorageUnavailable
	}

	expense, err := s.expenseRepo.GetByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	basePath := path.Join("receipts", userID, expenseID.String(), uuid.New().String())

	uploaded := make([]string, 0, len(receiptVariants))
	for _, variant := range receiptVariants {
		var processed image.Image
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			// Resize maintaining aspect ratio
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		} else {
			processed = img
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			s.cleanupObjects(ctx, uploaded)
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}

		objectPath := variantPath(basePath, variant.name)
		if _, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
			s.cleanupObjects(ctx, uploaded)
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}
		uploaded = append(uploaded, objectPath)
	}

	// Remove the previous receipt's objects after the new ones are in place
	if expense.ReceiptURL != nil && *expense.ReceiptURL != "" {
		s.deleteVariants(ctx, *expense.ReceiptURL)
	}

	if err := s.expenseRepo.SetReceiptURL(userID, expenseID, &basePath); err != nil {
		s.cleanupObjects(ctx, uploaded)
		return nil, err
	}

	return s.presignMetadata(ctx, expenseID, basePath)
}

// GetReceipt returns presigned URLs for the expense's receipt variants
func (s *ReceiptService) GetReceipt(ctx context.Context, userID string, expenseID uuid.UUID) (*ReceiptMetadata, error) {
	if !s.IsEnabled() {
		return nil, ErrStorageUnavailable
	}

	expense, err := s.expenseRepo.GetByID(userID, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.ReceiptURL == nil || *expense.ReceiptURL == "" {
		return nil, ErrNoReceipt
	}

	return s.presignMetadata(ctx, expenseID, *expense.ReceiptURL)
}

// DeleteReceipt removes the expense's receipt objects and clears the
// receipt path on the row
func (s *ReceiptService) DeleteReceipt(ctx context.Context, userID string, expenseID uuid.UUID) error {
	if !s.IsEnabled() {
		return ErrStorageUnavailable
	}

	expense, err := s.expenseRepo.GetByID(userID, expenseID)
	if err != nil {
		return err
	}
	if expense.ReceiptURL == nil || *expense.ReceiptURL == "" {
		return ErrNoReceipt
	}

	s.deleteVariants(ctx, *expense.ReceiptURL)

	return s.expenseRepo.SetReceiptURL(userID, expenseID, nil)
}

func (s *ReceiptService) presignMetadata(ctx context.Context, expenseID uuid.UUID, basePath string) (*ReceiptMetadata, error) {
	metadata := &ReceiptMetadata{ExpenseID: expenseID}
	for _, variant := range receiptVariants {
		url, err := s.storage.GeneratePresignedURL(ctx, variantPath(basePath, variant.name), PresignedURLValid)
		if err != nil {
			return nil, err
		}
		switch variant.name {
		case "thumb":
			metadata.ThumbnailURL = url
		case "display":
			metadata.DisplayURL = url
		case "original":
			metadata.OriginalURL = url
		}
	}
	return metadata, nil
}

// deleteVariants removes all variant objects for a base path, best effort
func (s *ReceiptService) deleteVariants(ctx context.Context, basePath string) {
	for _, variant := range receiptVariants {
		_ = s.storage.Delete(ctx, variantPath(basePath, variant.name))
	}
}

// cleanupObjects removes objects uploaded during a failed operation
func (s *ReceiptService) cleanupObjects(ctx context.Context, objectPaths []string) {
	for _, objectPath := range objectPaths {
		_ = s.storage.Delete(ctx, objectPath)
	}
}

func variantPath(basePath, variant string) string {
	return basePath + "_" + variant + ".jpg"
}

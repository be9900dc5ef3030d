package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/imaging"
	"github.com/bandera-print/backoffice-api/internal/mapper"
	"github.com/bandera-print/backoffice-api/internal/repository"
	"github.com/bandera-print/backoffice-api/internal/storage"
)

// FileService stores artwork and product images, generating thumbnails for images
type FileService struct {
	fileRepo      *repository.FileRepository
	productRepo   *repository.ProductRepository
	quoteRepo     *repository.QuoteRepository
	orderRepo     *repository.OrderRepository
	activities    *ActivityService
	storage       storage.Storage
	maxBytes      int64
	thumbnailSize uint
	logger        *zap.Logger
}

// FileServiceOptions are the upload limits of a FileService
type FileServiceOptions struct {
	MaxBytes      int64
	ThumbnailSize uint
}

// NewFileService creates a new FileService instance with all required dependencies
func NewFileService(
	fileRepo *repository.FileRepository,
	productRepo *repository.ProductRepository,
	quoteRepo *repository.QuoteRepository,
	orderRepo *repository.OrderRepository,
	activities *ActivityService,
	store storage.Storage,
	opts FileServiceOptions,
	logger *zap.Logger,
) *FileService {
	return &FileService{
		fileRepo:      fileRepo,
		productRepo:   productRepo,
		quoteRepo:     quoteRepo,
		orderRepo:     orderRepo,
		activities:    activities,
		storage:       store,
		maxBytes:      opts.MaxBytes,
		thumbnailSize: opts.ThumbnailSize,
		logger:        logger,
	}
}

func (s *FileService) checkEntity(ctx context.Context, entityType domain.FileEntityType, entityID uuid.UUID) error {
	var err error
	switch entityType {
	case domain.FileEntityProduct:
		if _, err = s.productRepo.GetByID(ctx, entityID); err != nil {
			return notFound(err, ErrProductNotFound, "get product")
		}
	case domain.FileEntityQuote:
		if _, err = s.quoteRepo.GetByID(ctx, entityID); err != nil {
			return notFound(err, ErrQuoteNotFound, "get quote")
		}
	case domain.FileEntityOrder:
		if _, err = s.orderRepo.GetByID(ctx, entityID); err != nil {
			return notFound(err, ErrOrderNotFound, "get order")
		}
	default:
		return domain.NewValidationError("entityType", "must be product, quote or order")
	}
	return nil
}

func entityFolder(entityType domain.FileEntityType, entityID uuid.UUID) string {
	return string(entityType) + "s/" + entityID.String()
}

// Upload stores a file attached to a product, quote or order. JPEG and PNG
// uploads get a thumbnail; for products the upload also becomes the product image.
func (s *FileService) Upload(ctx context.Context, entityType domain.FileEntityType, entityID uuid.UUID, filename, contentType string, data io.Reader) (*domain.FileDTO, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == "/" {
		return nil, domain.NewValidationError("file", "filename is required")
	}
	if err := s.checkEntity(ctx, entityType, entityID); err != nil {
		return nil, err
	}

	content, err := s.readLimited(data)
	if err != nil {
		return nil, err
	}

	folder := entityFolder(entityType, entityID)
	storagePath, size, err := s.storage.Upload(ctx, folder, filename, contentType, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	file := &domain.File{
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
		EntityType:  entityType,
		EntityID:    entityID,
	}
	file.ThumbnailPath = s.storeThumbnail(ctx, folder, filename, contentType, content)

	if err := s.fileRepo.Create(ctx, file); err != nil {
		s.removeObjects(ctx, file)
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	if entityType == domain.FileEntityProduct && imaging.SupportsThumbnail(contentType) {
		if err := s.productRepo.UpdateImage(ctx, entityID, file.StoragePath, file.ThumbnailPath); err != nil {
			s.logger.Warn("failed to set product image", zap.String("productID", entityID.String()), zap.Error(err))
		}
	}

	s.recordActivity(ctx, file, "File uploaded", fmt.Sprintf("File '%s' was uploaded", filename))

	dto := mapper.ToFileDTO(file)
	return &dto, nil
}

func (s *FileService) readLimited(data io.Reader) ([]byte, error) {
	if s.maxBytes <= 0 {
		return io.ReadAll(data)
	}
	content, err := io.ReadAll(io.LimitReader(data, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(content)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}
	return content, nil
}

// storeThumbnail returns the storage key of the thumbnail, or "" when none was made
func (s *FileService) storeThumbnail(ctx context.Context, folder, filename, contentType string, content []byte) string {
	if !imaging.SupportsThumbnail(contentType) {
		return ""
	}
	thumb, err := imaging.Thumbnail(bytes.NewReader(content), contentType, s.thumbnailSize)
	if err != nil {
		s.logger.Warn("failed to generate thumbnail", zap.String("filename", filename), zap.Error(err))
		return ""
	}
	key, _, err := s.storage.Upload(ctx, folder+"/thumbs", filename, contentType, bytes.NewReader(thumb))
	if err != nil {
		s.logger.Warn("failed to store thumbnail", zap.String("filename", filename), zap.Error(err))
		return ""
	}
	return key
}

// GetByID returns file metadata
func (s *FileService) GetByID(ctx context.Context, id uuid.UUID) (*domain.FileDTO, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrFileNotFound, "get file")
	}
	dto := mapper.ToFileDTO(file)
	return &dto, nil
}

// Download opens the stored content of a file or of its thumbnail
func (s *FileService) Download(ctx context.Context, id uuid.UUID, thumbnail bool) (io.ReadCloser, *domain.File, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, ErrFileNotFound, "get file")
	}

	key := file.StoragePath
	if thumbnail {
		if file.ThumbnailPath == "" {
			return nil, nil, ErrFileNotFound
		}
		key = file.ThumbnailPath
	}

	reader, err := s.storage.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to download file: %w", err)
	}
	return reader, file, nil
}

// ListByEntity returns the files attached to a record
func (s *FileService) ListByEntity(ctx context.Context, entityType domain.FileEntityType, entityID uuid.UUID) ([]domain.FileDTO, error) {
	if err := s.checkEntity(ctx, entityType, entityID); err != nil {
		return nil, err
	}
	files, err := s.fileRepo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	dtos := make([]domain.FileDTO, len(files))
	for i := range files {
		dtos[i] = mapper.ToFileDTO(&files[i])
	}
	return dtos, nil
}

// Delete removes the file record and its stored objects
func (s *FileService) Delete(ctx context.Context, id uuid.UUID) error {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, ErrFileNotFound, "get file")
	}

	if err := s.fileRepo.Delete(ctx, id); err != nil {
		return notFound(err, ErrFileNotFound, "delete file")
	}
	s.removeObjects(ctx, file)

	if file.EntityType == domain.FileEntityProduct {
		if product, err := s.productRepo.GetByID(ctx, file.EntityID); err == nil && product.ImagePath == file.StoragePath {
			if err := s.productRepo.UpdateImage(ctx, product.ID, "", ""); err != nil {
				s.logger.Warn("failed to clear product image", zap.String("productID", product.ID.String()), zap.Error(err))
			}
		}
	}

	s.recordActivity(ctx, file, "File deleted", fmt.Sprintf("File '%s' was deleted", file.Filename))
	return nil
}

// DeleteForEntity removes every file attached to a record. Storage errors are logged.
func (s *FileService) DeleteForEntity(ctx context.Context, entityType domain.FileEntityType, entityID uuid.UUID) error {
	files, err := s.fileRepo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	for i := range files {
		if err := s.fileRepo.Delete(ctx, files[i].ID); err != nil {
			return fmt.Errorf("failed to delete file record: %w", err)
		}
		s.removeObjects(ctx, &files[i])
	}
	return nil
}

func (s *FileService) removeObjects(ctx context.Context, file *domain.File) {
	for _, key := range []string{file.StoragePath, file.ThumbnailPath} {
		if key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete stored object", zap.String("storagePath", key), zap.Error(err))
		}
	}
}

func (s *FileService) recordActivity(ctx context.Context, file *domain.File, title, body string) {
	var target domain.ActivityTargetType
	switch file.EntityType {
	case domain.FileEntityQuote:
		target = domain.ActivityTargetQuote
	case domain.FileEntityOrder:
		target = domain.ActivityTargetOrder
	default:
		target = domain.ActivityTargetProduct
	}
	s.activities.Record(ctx, target, file.EntityID, title, body)
}

package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/pitch-booking-backend/internal/field"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/storage"
)

const (
	ThumbnailSize = 400
	// DefaultMaxSize caps photo uploads.
	DefaultMaxSize = 10 << 20
)

// DefaultAllowedTypes are the photo formats accepted for upload.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/gif"}

// FieldReader checks that the owning field exists.
type FieldReader interface {
	GetByID(ctx context.Context, id string) (*field.Field, error)
}

// UploadInput describes one uploaded photo.
type UploadInput struct {
	FileHeader   *multipart.FileHeader
	FieldID      string
	MaxSizeBytes int64    // 0 means DefaultMaxSize
	AllowedTypes []string // empty means DefaultAllowedTypes
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*File, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*File, error)
	ListByField(ctx context.Context, fieldID string) ([]*File, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *File, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error)
}

type service struct {
	repo    Repository
	fields  FieldReader
	storage storage.Storage
	imgProc *storage.ImageProcessor
}

func NewService(repo Repository, fields FieldReader, store storage.Storage) Service {
	return &service{
		repo:    repo,
		fields:  fields,
		storage: store,
		imgProc: storage.NewImageProcessor(),
	}
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*File, error) {
	if _, err := s.fields.GetByID(ctx, in.FieldID); err != nil {
		if errors.Is(err, field.ErrNotFound) {
			return nil, ErrFieldNotFound
		}
		return nil, err
	}

	maxSize := in.MaxSizeBytes
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if in.FileHeader.Size > maxSize {
		return nil, ErrFileTooLarge
	}

	src, err := in.FileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Photos are small enough to buffer for sniffing, thumbnailing and saving.
	fileBytes, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if int64(len(fileBytes)) > maxSize {
		return nil, ErrFileTooLarge
	}

	contentType := http.DetectContentType(fileBytes)
	allowed := in.AllowedTypes
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes
	}
	if !typeAllowed(contentType, allowed) {
		return nil, ErrUnsupportedType
	}

	ext := strings.ToLower(filepath.Ext(in.FileHeader.Filename))
	fileID := uuid.New().String()

	// Sharding path: fields/<field>/ab/UUID.ext
	shard := fileID[:2]
	storagePath := fmt.Sprintf("fields/%s/%s/%s%s", in.FieldID, shard, fileID, ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(fileBytes)); err != nil {
		return nil, fmt.Errorf("failed to save file to storage: %w", err)
	}

	var thumbnailPath *string
	thumbReader, err := s.imgProc.GenerateThumbnail(bytes.NewReader(fileBytes), ThumbnailSize, ThumbnailSize)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("file_id", fileID).Msg("thumbnail generation failed")
	} else {
		tPath := fmt.Sprintf("fields/%s/%s/%s_thumb.jpg", in.FieldID, shard, fileID)
		if err := s.storage.Save(ctx, tPath, thumbReader); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("file_id", fileID).Msg("thumbnail save failed")
		} else {
			thumbnailPath = &tPath
		}
	}

	f := &File{
		ID:            fileID,
		FieldID:       in.FieldID,
		Filename:      filepath.Base(in.FileHeader.Filename),
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          int64(len(fileBytes)),
		CreatedAt:     time.Now(),
	}

	if err := s.repo.Create(ctx, f); err != nil {
		// Cleanup storage if db fails
		_ = s.storage.Delete(ctx, storagePath)
		if thumbnailPath != nil {
			_ = s.storage.Delete(ctx, *thumbnailPath)
		}
		return nil, err
	}

	return f, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Storage cleanup is best effort once the record is gone.
	if err := s.storage.Delete(ctx, f.StoragePath); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("file_id", id).Msg("delete stored file failed")
	}
	if f.ThumbnailPath != nil {
		if err := s.storage.Delete(ctx, *f.ThumbnailPath); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("file_id", id).Msg("delete stored thumbnail failed")
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByField(ctx context.Context, fieldID string) ([]*File, error) {
	if _, err := s.fields.GetByID(ctx, fieldID); err != nil {
		if errors.Is(err, field.ErrNotFound) {
			return nil, ErrFieldNotFound
		}
		return nil, err
	}
	return s.repo.ListByField(ctx, fieldID)
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.storage.Get(ctx, f.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to retrieve file from storage: %w", err)
	}

	return stream, f, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if f.ThumbnailPath == nil {
		return nil, nil, ErrThumbnailUnavailable
	}

	stream, err := s.storage.Get(ctx, *f.ThumbnailPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrThumbnailUnavailable
		}
		return nil, nil, fmt.Errorf("failed to retrieve thumbnail from storage: %w", err)
	}

	return stream, f, nil
}

func typeAllowed(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

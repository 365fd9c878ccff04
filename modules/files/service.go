package files

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrEmptyFile is returned when an upload carries no data.
	ErrEmptyFile = errors.New("file data is empty")
	// ErrMissingFileName is returned when an upload has no file name.
	ErrMissingFileName = errors.New("file name is required")
	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size")
)

// MaxPictureSize bounds uploads at 5 MiB.
const MaxPictureSize = 5 << 20

// Service provides profile picture storage operations.
type Service struct {
	store ObjectStore
}

// NewService creates a new picture service.
func NewService(store ObjectStore) *Service {
	return &Service{store: store}
}

// Upload stores a picture and returns its metadata, including the path it
// can be served from.
func (s *Service) Upload(ctx context.Context, fileName string, data []byte, contentType string) (*PictureMeta, error) {
	if fileName == "" {
		return nil, ErrMissingFileName
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if len(data) > MaxPictureSize {
		return nil, ErrFileTooLarge
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := uuid.New().String()
	info, err := s.store.Put(ctx, id, fileName, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store picture: %w", err)
	}

	return &PictureMeta{
		ID:          id,
		FileName:    fileName,
		Size:        int64(info.Size),
		ContentType: contentType,
		URL:         PictureURL(id),
		CreatedAt:   info.ModTime,
	}, nil
}

// Get retrieves a picture and its metadata by ID.
func (s *Service) Get(ctx context.Context, id string) ([]byte, *PictureMeta, error) {
	if id == "" {
		return nil, nil, ErrMissingFileName
	}

	data, info, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return data, &PictureMeta{
		ID:          info.ID,
		FileName:    info.FileName,
		Size:        int64(info.Size),
		ContentType: info.ContentType,
		URL:         PictureURL(info.ID),
		CreatedAt:   info.ModTime,
	}, nil
}

// PictureURL returns the path a stored picture is served from.
func PictureURL(id string) string {
	return "/files/" + id
}

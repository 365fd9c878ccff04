package files

import (
	"time"
)

// PictureMeta describes a stored profile picture.
type PictureMeta struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}

// UploadRequest represents a picture upload request.
type UploadRequest struct {
	FileName    string `json:"file_name"`
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

// UploadResponse represents a picture upload response.
type UploadResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetFileRequest represents a get picture request.
type GetFileRequest struct {
	ID string `json:"id"`
}

// GetFileResponse represents a get picture response.
type GetFileResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"data"`
	CreatedAt   time.Time `json:"created_at"`
}

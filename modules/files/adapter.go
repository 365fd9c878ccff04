package files

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// FilesPort defines the interface for picture operations from other modules.
type FilesPort interface {
	UploadFile(ctx context.Context, fileName string, data []byte, contentType string) (*UploadResponse, error)
	GetFile(ctx context.Context, id string) (*GetFileResponse, error)
}

// filesAdapter wraps ServiceContainer for type-safe cross-module communication.
type filesAdapter struct {
	container mono.ServiceContainer
}

// NewFilesAdapter creates a new adapter for files services.
func NewFilesAdapter(container mono.ServiceContainer) FilesPort {
	if container == nil {
		panic("files adapter requires non-nil ServiceContainer")
	}
	return &filesAdapter{container: container}
}

// UploadFile uploads a picture via the upload-file service.
func (a *filesAdapter) UploadFile(ctx context.Context, fileName string, data []byte, contentType string) (*UploadResponse, error) {
	req := UploadRequest{
		FileName:    fileName,
		Data:        data,
		ContentType: contentType,
	}
	var resp UploadResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"upload-file",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("upload-file service call failed: %w", err)
	}
	return &resp, nil
}

// GetFile retrieves a picture by ID via the get-file service.
func (a *filesAdapter) GetFile(ctx context.Context, id string) (*GetFileResponse, error) {
	req := GetFileRequest{ID: id}
	var resp GetFileResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-file",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("get-file service call failed: %w", err)
	}
	return &resp, nil
}

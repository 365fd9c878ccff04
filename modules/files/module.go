package files

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// FilesModule provides profile picture storage using NATS JetStream
// Object Store.
type FilesModule struct {
	store   *JetStreamObjectStore
	service *Service
	natsURL string
	bucket  string
}

// Compile-time interface checks.
var _ mono.Module = (*FilesModule)(nil)
var _ mono.ServiceProviderModule = (*FilesModule)(nil)
var _ mono.HealthCheckableModule = (*FilesModule)(nil)

// NewModule creates a new FilesModule.
func NewModule(natsURL, bucket string) *FilesModule {
	return &FilesModule{
		natsURL: natsURL,
		bucket:  bucket,
	}
}

// Name returns the module name.
func (m *FilesModule) Name() string {
	return "files"
}

// RegisterServices registers request-reply services in the service container.
func (m *FilesModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"upload-file",
		json.Unmarshal,
		json.Marshal,
		m.uploadFile,
	); err != nil {
		return fmt.Errorf("failed to register upload-file service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"get-file",
		json.Unmarshal,
		json.Marshal,
		m.getFile,
	); err != nil {
		return fmt.Errorf("failed to register get-file service: %w", err)
	}

	log.Printf("[files] Registered services: upload-file, get-file")
	return nil
}

// Start connects to NATS JetStream and prepares the bucket.
func (m *FilesModule) Start(ctx context.Context) error {
	var err error
	m.store, err = NewJetStreamObjectStore(m.natsURL, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to create object store: %w", err)
	}

	if err := m.store.Init(ctx); err != nil {
		m.store.Close()
		return fmt.Errorf("failed to initialize object store: %w", err)
	}

	m.service = NewService(m.store)

	log.Printf("[files] Module started (NATS: %s, bucket: %s)", m.natsURL, m.bucket)
	return nil
}

// Stop shuts down the module.
func (m *FilesModule) Stop(_ context.Context) error {
	if m.store != nil {
		m.store.Close()
	}
	log.Println("[files] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *FilesModule) Health(_ context.Context) mono.HealthStatus {
	healthy := m.store != nil && m.store.IsConnected()
	message := "connected"
	if !healthy {
		message = "disconnected"
	}
	return mono.HealthStatus{
		Healthy: healthy,
		Message: message,
		Details: map[string]any{
			"nats_url": m.natsURL,
			"bucket":   m.bucket,
		},
	}
}

// uploadFile handles picture uploads.
func (m *FilesModule) uploadFile(ctx context.Context, req UploadRequest, _ *mono.Msg) (UploadResponse, error) {
	meta, err := m.service.Upload(ctx, req.FileName, req.Data, req.ContentType)
	if err != nil {
		return UploadResponse{}, err
	}

	return UploadResponse{
		ID:          meta.ID,
		FileName:    meta.FileName,
		Size:        meta.Size,
		ContentType: meta.ContentType,
		URL:         meta.URL,
		CreatedAt:   meta.CreatedAt,
	}, nil
}

// getFile handles picture retrieval.
func (m *FilesModule) getFile(ctx context.Context, req GetFileRequest, _ *mono.Msg) (GetFileResponse, error) {
	data, meta, err := m.service.Get(ctx, req.ID)
	if err != nil {
		return GetFileResponse{}, err
	}

	return GetFileResponse{
		ID:          meta.ID,
		FileName:    meta.FileName,
		Size:        meta.Size,
		ContentType: meta.ContentType,
		Data:        data,
		CreatedAt:   meta.CreatedAt,
	}, nil
}

package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const fileNameHeader = "X-File-Name"

// ObjectStore defines the interface for picture storage operations.
type ObjectStore interface {
	Put(ctx context.Context, id, fileName string, data []byte, contentType string) (*ObjectInfo, error)
	Get(ctx context.Context, id string) ([]byte, *ObjectInfo, error)
	Delete(ctx context.Context, id string) error
}

// ObjectInfo represents metadata about a stored picture.
type ObjectInfo struct {
	ID          string
	FileName    string
	Size        uint64
	ContentType string
	ModTime     time.Time
}

// headerValue extracts a header with a fallback default.
func headerValue(headers nats.Header, key, def string) string {
	if headers != nil {
		if v := headers.Get(key); v != "" {
			return v
		}
	}
	return def
}

// JetStreamObjectStore implements ObjectStore using NATS JetStream Object Store.
type JetStreamObjectStore struct {
	conn       *nats.Conn
	js         jetstream.JetStream
	store      jetstream.ObjectStore
	bucketName string
}

// NewJetStreamObjectStore creates a new JetStream Object Store client.
func NewJetStreamObjectStore(natsURL, bucketName string) (*JetStreamObjectStore, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &JetStreamObjectStore{
		conn:       conn,
		js:         js,
		bucketName: bucketName,
	}, nil
}

// Init initializes the object store bucket.
func (s *JetStreamObjectStore) Init(ctx context.Context) error {
	store, err := s.js.ObjectStore(ctx, s.bucketName)
	if err == nil {
		s.store = store
		return nil
	}

	store, err = s.js.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      s.bucketName,
		Description: "Profile picture storage bucket",
	})
	if err != nil {
		return fmt.Errorf("failed to create object store bucket: %w", err)
	}

	s.store = store
	return nil
}

// Put stores a picture keyed by its ID. The original file name and content
// type travel in object headers.
func (s *JetStreamObjectStore) Put(ctx context.Context, id, fileName string, data []byte, contentType string) (*ObjectInfo, error) {
	meta := jetstream.ObjectMeta{
		Name: id,
		Headers: nats.Header{
			"Content-Type": []string{contentType},
			fileNameHeader: []string{fileName},
		},
	}

	info, err := s.store.Put(ctx, meta, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to store object: %w", err)
	}

	return &ObjectInfo{
		ID:          info.Name,
		FileName:    fileName,
		Size:        info.Size,
		ContentType: contentType,
		ModTime:     info.ModTime,
	}, nil
}

// Get retrieves a picture by ID.
func (s *JetStreamObjectStore) Get(ctx context.Context, id string) ([]byte, *ObjectInfo, error) {
	result, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer result.Close()

	data, err := io.ReadAll(result)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read object data: %w", err)
	}

	info, err := result.Info()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get object info: %w", err)
	}

	return data, &ObjectInfo{
		ID:          info.Name,
		FileName:    headerValue(info.Headers, fileNameHeader, info.Name),
		Size:        info.Size,
		ContentType: headerValue(info.Headers, "Content-Type", "application/octet-stream"),
		ModTime:     info.ModTime,
	}, nil
}

// Delete removes a picture from the object store.
func (s *JetStreamObjectStore) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// IsConnected returns whether the NATS connection is active.
func (s *JetStreamObjectStore) IsConnected() bool {
	return s.conn != nil && s.conn.IsConnected()
}

// Close closes the NATS connection.
func (s *JetStreamObjectStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}

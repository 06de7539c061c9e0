package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/nikhilbhutani/etpassistant/internal/config"
)

const pdfContentType = "application/pdf"

// Sink stores an exported file and returns where it went.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// NewSink builds the sink named in cfg. The "none" sink returns nil.
func NewSink(ctx context.Context, cfg config.ExportConfig) (Sink, error) {
	switch cfg.Sink {
	case "", "none":
		return nil, nil
	case "dir":
		return DirSink{Dir: cfg.Dir}, nil
	case "supabase":
		return NewSupabaseSink(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Bucket), nil
	case "gcs":
		g, err := NewGCSSink(ctx, cfg.Bucket)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown export sink %q", cfg.Sink)
	}
}

// DirSink writes files into a local directory.
type DirSink struct {
	Dir string
}

func (d DirSink) Put(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(d.Dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// SupabaseSink uploads to a Supabase Storage bucket over its REST API.
type SupabaseSink struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

func NewSupabaseSink(supabaseURL, serviceKey, bucket string) *SupabaseSink {
	return &SupabaseSink{
		baseURL:    supabaseURL + "/storage/v1",
		serviceKey: serviceKey,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (s *SupabaseSink) Put(ctx context.Context, name string, data []byte) (string, error) {
	url := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", pdfContentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed (%d): %s", resp.StatusCode, string(body))
	}

	return s.PublicURL(name), nil
}

func (s *SupabaseSink) PublicURL(name string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, s.bucket, name)
}

// GCSSink writes to a Cloud Storage bucket. Objects are never overwritten:
// an existing object with the same name is left as is.
type GCSSink struct {
	client *storage.Client
	bucket string
}

func NewGCSSink(ctx context.Context, bucket string) (*GCSSink, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSSink{client: client, bucket: bucket}, nil
}

func (g *GCSSink) Put(ctx context.Context, name string, data []byte) (string, error) {
	location := fmt.Sprintf("gs://%s/%s", g.bucket, name)

	writer := g.client.Bucket(g.bucket).Object(name).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = pdfContentType

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			return location, nil
		}
		return "", fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			return location, nil
		}
		return "", fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return location, nil
}

func (g *GCSSink) Close() error {
	return g.client.Close()
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

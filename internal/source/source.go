// Package source reads schedule exports from local files, HTTP endpoints and
// S3 buckets, and publishes snapshot documents back to S3.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// MaxDocumentSize caps how much of a remote export is read.
const MaxDocumentSize = 32 << 20

var ErrUnsupportedScheme = errors.New("unsupported source scheme")

// Document is the raw content of one export.
type Document struct {
	Location string
	Name     string
	Data     []byte
	ModTime  time.Time
}

// ObjectStore is the subset of object storage the loader needs.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key, contentType string, body []byte) error
}

// Loader dispatches on the location scheme: s3://bucket/key, http(s)://...,
// file://path or a bare path.
type Loader struct {
	HTTP    *http.Client
	Objects ObjectStore
}

func NewLoader(timeout time.Duration, objects ObjectStore) *Loader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Loader{HTTP: &http.Client{Timeout: timeout}, Objects: objects}
}

func (l *Loader) Load(ctx context.Context, location string) (*Document, error) {
	scheme, rest := splitScheme(location)
	switch scheme {
	case "", "file":
		return loadFile(rest)
	case "http", "https":
		return l.loadHTTP(ctx, location)
	case "s3":
		bucket, key, err := splitBucketKey(rest)
		if err != nil {
			return nil, err
		}
		if l.Objects == nil {
			return nil, fmt.Errorf("loading %s: no object store configured", location)
		}
		data, err := l.Objects.Get(ctx, bucket, key)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", location, err)
		}
		return &Document{Location: location, Name: path.Base(key), Data: data}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

// Publish writes body to an s3:// location.
func (l *Loader) Publish(ctx context.Context, location, contentType string, body []byte) error {
	scheme, rest := splitScheme(location)
	if scheme != "s3" {
		return fmt.Errorf("%w: publishing needs s3://, got %q", ErrUnsupportedScheme, location)
	}
	bucket, key, err := splitBucketKey(rest)
	if err != nil {
		return err
	}
	if l.Objects == nil {
		return fmt.Errorf("publishing %s: no object store configured", location)
	}
	if err := l.Objects.Put(ctx, bucket, key, contentType, body); err != nil {
		return fmt.Errorf("publishing %s: %w", location, err)
	}
	return nil
}

func loadFile(p string) (*Document, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("reading %s: is a directory", p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return &Document{Location: p, Name: filepath.Base(p), Data: data, ModTime: info.ModTime()}, nil
}

func (l *Loader) loadHTTP(ctx context.Context, location string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")
	// Always revalidate so a freshly exported file is picked up.
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := l.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", location, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("fetching %s: document exceeds %d bytes", location, MaxDocumentSize)
	}

	doc := &Document{Location: location, Data: data}
	if u, err := url.Parse(location); err == nil {
		doc.Name = path.Base(u.Path)
	}
	if lm, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		doc.ModTime = lm
	}
	return doc, nil
}

func splitScheme(location string) (scheme, rest string) {
	i := strings.Index(location, "://")
	if i <= 0 {
		return "", location
	}
	return strings.ToLower(location[:i]), location[i+3:]
}

func splitBucketKey(rest string) (bucket, key string, err error) {
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 location %q: want s3://bucket/key", "s3://"+rest)
	}
	return bucket, key, nil
}

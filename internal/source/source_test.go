package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return data, nil
}

func (m *memStore) Put(_ context.Context, bucket, key, contentType string, body []byte) error {
	m.objects[bucket+"/"+key] = body
	m.types[bucket+"/"+key] = contentType
	return nil
}

func TestLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cronograma.csv")
	require.NoError(t, os.WriteFile(path, []byte("Id;Nome\n1;Parada\n"), 0o644))
	l := NewLoader(time.Second, nil)

	for _, loc := range []string{path, "file://" + path} {
		doc, err := l.Load(context.Background(), loc)
		require.NoError(t, err, loc)
		assert.Equal(t, "cronograma.csv", doc.Name)
		assert.Equal(t, "Id;Nome\n1;Parada\n", string(doc.Data))
		assert.False(t, doc.ModTime.IsZero())
	}

	_, err := l.Load(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "is a directory")
	_, err = l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cronograma-operacional.csv" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Header().Set("Last-Modified", "Sun, 17 Aug 2025 10:00:00 GMT")
		_, _ = w.Write([]byte("Id;Nome\n"))
	}))
	defer srv.Close()
	l := NewLoader(time.Second, nil)

	doc, err := l.Load(context.Background(), srv.URL+"/cronograma-operacional.csv")
	require.NoError(t, err)
	assert.Equal(t, "cronograma-operacional.csv", doc.Name)
	assert.Equal(t, "Id;Nome\n", string(doc.Data))
	assert.Equal(t, 2025, doc.ModTime.Year())

	_, err = l.Load(context.Background(), srv.URL+"/other.csv")
	assert.ErrorContains(t, err, "unexpected status 404")
}

func TestLoader_ObjectStore(t *testing.T) {
	store := newMemStore()
	l := NewLoader(time.Second, store)
	ctx := context.Background()

	require.NoError(t, l.Publish(ctx, "s3://plant/snapshots/pfus3.json", "application/json", []byte(`{}`)))
	assert.Equal(t, "application/json", store.types["plant/snapshots/pfus3.json"])

	doc, err := l.Load(ctx, "s3://plant/snapshots/pfus3.json")
	require.NoError(t, err)
	assert.Equal(t, "pfus3.json", doc.Name)
	assert.Equal(t, `{}`, string(doc.Data))

	_, err = l.Load(ctx, "s3://plant/absent.csv")
	assert.ErrorContains(t, err, "NoSuchKey")
}

func TestLoader_BadLocations(t *testing.T) {
	l := NewLoader(time.Second, nil)
	ctx := context.Background()

	_, err := l.Load(ctx, "ftp://host/file.csv")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
	_, err = l.Load(ctx, "s3://bucket-only")
	assert.ErrorContains(t, err, "want s3://bucket/key")
	_, err = l.Load(ctx, "s3://plant/file.csv")
	assert.ErrorContains(t, err, "no object store configured")
	err = l.Publish(ctx, "/tmp/out.json", "application/json", nil)
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestS3Store_Get(t *testing.T) {
	body := "ID,Nome da tarefa\n0,Preparação\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/plant/prep.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials:  aws.AnonymousCredentials{},
	})
	data, err := NewS3StoreFromClient(client).Get(context.Background(), "plant", "prep.csv")
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
}

// AngelaMos | 2026
// service_test.go

package bundle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelamos/scoreshop/internal/core"
)

type stubStore struct {
	objects map[string][]byte
	err     error
}

func (s *stubStore) GetObject(_ context.Context, key string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	body, ok := s.objects[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return body, nil
}

func (s *stubStore) PresignGetObject(
	_ context.Context,
	key string,
	_ time.Duration,
) (string, error) {
	return "https://r2.example.com/signed/" + key, nil
}

type stubRepo struct {
	bundles []Bundle
}

func (r *stubRepo) List(_ context.Context) ([]Bundle, error) {
	return r.bundles, nil
}

func (r *stubRepo) GetByID(_ context.Context, id string) (*Bundle, error) {
	for i := range r.bundles {
		if r.bundles[i].ID == id {
			return &r.bundles[i], nil
		}
	}
	return nil, core.ErrNotFound
}

func TestMetadataDecodesStoredObject(t *testing.T) {
	store := &stubStore{objects: map[string][]byte{
		"bundles/bundle-1/metadata.json": []byte(`{
			"files": [
				{"key": "bundles/bundle-1/score.pdf", "filename": "score.pdf", "type": "pdf", "size_bytes": 1048576}
			],
			"composer": "Chopin",
			"difficulty": "advanced"
		}`),
	}}
	svc := NewService(&stubRepo{}, store)

	meta, err := svc.Metadata(context.Background(), &Bundle{
		ID:          "bundle-1",
		MetadataURL: "bundles/bundle-1/metadata.json",
	})
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}

	if len(meta.Files) != 1 {
		t.Fatalf("files = %d, want 1", len(meta.Files))
	}
	if meta.Files[0].Key != "bundles/bundle-1/score.pdf" {
		t.Errorf("file key = %q", meta.Files[0].Key)
	}
	if meta.Composer != "Chopin" {
		t.Errorf("composer = %q, want Chopin", meta.Composer)
	}
}

func TestMetadataAbsentURL(t *testing.T) {
	svc := NewService(&stubRepo{}, &stubStore{})

	meta, err := svc.Metadata(context.Background(), &Bundle{ID: "bundle-1"})
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta != nil {
		t.Error("bundle without metadata_url must yield nil metadata")
	}
}

func TestMetadataFetchFailure(t *testing.T) {
	store := &stubStore{err: errors.New("connection reset")}
	svc := NewService(&stubRepo{}, store)

	if _, err := svc.Metadata(context.Background(), &Bundle{
		ID:          "bundle-1",
		MetadataURL: "bundles/bundle-1/metadata.json",
	}); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
}

func TestMetadataMalformedObject(t *testing.T) {
	store := &stubStore{objects: map[string][]byte{
		"bundles/bundle-1/metadata.json": []byte(`not json`),
	}}
	svc := NewService(&stubRepo{}, store)

	if _, err := svc.Metadata(context.Background(), &Bundle{
		ID:          "bundle-1",
		MetadataURL: "bundles/bundle-1/metadata.json",
	}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFindFileExactMatchOnly(t *testing.T) {
	meta := &Metadata{Files: []File{
		{Key: "bundles/bundle-1/score.pdf"},
		{Key: "bundles/bundle-1/score.musicxml"},
	}}

	if f := meta.FindFile("bundles/bundle-1/score.musicxml"); f == nil {
		t.Error("exact key must match")
	}
	if f := meta.FindFile("score.pdf"); f != nil {
		t.Error("partial key must not match")
	}
	if f := meta.FindFile(""); f != nil {
		t.Error("empty key must not match")
	}
}

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
)

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network_data.json")
	if err := os.WriteFile(path, []byte(`{"links":[],"networks":[]}`), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	src := &FileSource{Path: path}
	data, err := src.NetworkData(context.Background())
	if err != nil {
		t.Fatalf("NetworkData() error = %v", err)
	}
	if len(data) == 0 {
		t.Error("expected the file contents")
	}
}

func TestFileSource_Missing(t *testing.T) {
	src := &FileSource{Path: filepath.Join(t.TempDir(), "absent.json")}
	_, err := src.NetworkData(context.Background())
	if !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable for a missing file, got %v", err)
	}
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/"+networkDataPath {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"links":[],"networks":[]}`))
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL, 2*time.Second)
	data, err := src.NetworkData(context.Background())
	if err != nil {
		t.Fatalf("NetworkData() error = %v", err)
	}
	if len(data) == 0 {
		t.Error("expected the response body")
	}
}

func TestHTTPSource_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewHTTPSource(server.URL, 2*time.Second).NetworkData(context.Background())
	if !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable for 404, got %v", err)
	}
}

func TestHTTPSource_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewHTTPSource(server.URL, 2*time.Second).NetworkData(context.Background())
	if err == nil || errors.Is(err, ErrNotAvailable) {
		t.Fatalf("expected a hard error for 500, got %v", err)
	}
}

package services

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestImagenService(srv *httptest.Server) *ImagenService {
	s := NewImagenService("9:16")
	s.baseURL = srv.URL
	s.client = srv.Client()
	return s
}

func TestImagenGenerate(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "imagen-3.0-generate-002:predict") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "key-3" {
			t.Errorf("key query param = %q", r.URL.Query().Get("key"))
		}
		w.Write([]byte(`{"predictions":[{"mimeType":"image/jpeg","bytesBase64Encoded":"` + encoded + `"}]}`))
	}))
	defer srv.Close()

	mime, data, err := newTestImagenService(srv).Generate(context.Background(), "key-3", "a river delta")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("mime = %q", mime)
	}
	if string(data) != "fake-png-bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestImagenEmptyPredictionsIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"predictions":[]}`))
	}))
	defer srv.Close()

	mime, data, err := newTestImagenService(srv).Generate(context.Background(), "k", "p")
	if err != nil {
		t.Fatalf("empty predictions should not error: %v", err)
	}
	if mime != "" || data != nil {
		t.Errorf("expected no image, got (%q, %d bytes)", mime, len(data))
	}
}

func TestImagenDefaultsMimeType(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("x"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"predictions":[{"bytesBase64Encoded":"` + encoded + `"}]}`))
	}))
	defer srv.Close()

	mime, _, err := newTestImagenService(srv).Generate(context.Background(), "k", "p")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png fallback", mime)
	}
}

func TestImagenErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	if _, _, err := newTestImagenService(srv).Generate(context.Background(), "k", "p"); err == nil {
		t.Fatal("expected error from error payload")
	}
}

func TestImagenNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	if _, _, err := newTestImagenService(srv).Generate(context.Background(), "k", "p"); err == nil {
		t.Fatal("expected error on 403")
	}
}

package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/davitk/edureel/internal/models"
)

func newTestRenderService(srv *httptest.Server) *RenderService {
	s := NewRenderService(srv.URL, "test-key")
	s.client = srv.Client()
	return s
}

func TestSubmitReturnsJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/render" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		var edit map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
			t.Errorf("body is not json: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"response":{"id":"job-abc","status":"queued"}}`))
	}))
	defer srv.Close()

	id, err := newTestRenderService(srv).Submit(context.Background(), map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != "job-abc" {
		t.Errorf("job id = %q", id)
	}
}

func TestSubmitMissingJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"invalid edit","response":{}}`))
	}))
	defer srv.Close()

	if _, err := newTestRenderService(srv).Submit(context.Background(), nil); err == nil {
		t.Fatal("expected error when response has no job id")
	}
}

func TestSubmitNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := newTestRenderService(srv).Submit(context.Background(), nil); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestStatusParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/render/job-abc" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"success":true,"response":{"id":"job-abc","status":"done","url":"https://cdn.example.com/out.mp4"}}`))
	}))
	defer srv.Close()

	job, err := newTestRenderService(srv).Status(context.Background(), "job-abc")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if job.Status != models.RenderStatusDone {
		t.Errorf("status = %q", job.Status)
	}
	if job.ResultURL != "https://cdn.example.com/out.mp4" {
		t.Errorf("url = %q", job.ResultURL)
	}
}

func TestStatusErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	if _, err := newTestRenderService(srv).Status(context.Background(), "job-abc"); err == nil {
		t.Fatal("expected error on 504")
	}
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/davitk/edureel/internal/models"
)

// RenderService is the client for the remote rendering API. Submit posts a
// timeline edit and returns the job id; Status fetches the job's current
// state. The bounded polling loop lives in the pipeline package.
type RenderService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRenderService(baseURL, apiKey string) *RenderService {
	return &RenderService{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Render API response envelope. Both the submit and status endpoints wrap
// their payload in {success, response}.
type renderEnvelope struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message,omitempty"`
	Response renderPayload `json:"response"`
}

type renderPayload struct {
	ID     string              `json:"id"`
	Status models.RenderStatus `json:"status,omitempty"`
	URL    string              `json:"url,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// Submit posts the edit document and returns the created job id.
func (s *RenderService) Submit(ctx context.Context, edit interface{}) (string, error) {
	jsonData, err := json.Marshal(edit)
	if err != nil {
		return "", fmt.Errorf("failed to marshal edit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/render", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("render submit failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("render submit returned status %d: %s", resp.StatusCode, truncateString(string(bodyBytes), 200))
	}

	var envelope renderEnvelope
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		return "", fmt.Errorf("failed to decode submit response: %w", err)
	}

	if envelope.Response.ID == "" {
		return "", fmt.Errorf("submit response has no job id (message: %q)", envelope.Message)
	}

	return envelope.Response.ID, nil
}

// Status fetches the render job's current state by id.
func (s *RenderService) Status(ctx context.Context, jobID string) (models.RenderJob, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/render/"+jobID, nil)
	if err != nil {
		return models.RenderJob{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return models.RenderJob{}, fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.RenderJob{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return models.RenderJob{}, fmt.Errorf("status returned %d: %s", resp.StatusCode, truncateString(string(bodyBytes), 200))
	}

	var envelope renderEnvelope
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		return models.RenderJob{}, fmt.Errorf("failed to decode status response: %w", err)
	}

	return models.RenderJob{
		ID:        envelope.Response.ID,
		Status:    envelope.Response.Status,
		ResultURL: envelope.Response.URL,
	}, nil
}

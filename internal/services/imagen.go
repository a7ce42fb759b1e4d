package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const imagenModel = "imagen-3.0-generate-002"

// ImagenService issues single-image synthesis requests against the Imagen
// REST endpoint. Each call carries its own API key so the caller can
// partition a credential pool across concurrent requests.
type ImagenService struct {
	baseURL     string
	model       string
	aspectRatio string
	client      *http.Client
}

func NewImagenService(aspectRatio string) *ImagenService {
	return &ImagenService{
		baseURL:     "https://generativelanguage.googleapis.com",
		model:       imagenModel,
		aspectRatio: aspectRatio,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

// Imagen API request/response structures
type imagenPredictRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenParameters struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio"`
}

type imagenPredictResponse struct {
	Predictions []imagenPrediction `json:"predictions"`
	Error       *imagenError       `json:"error,omitempty"`
}

type imagenPrediction struct {
	MimeType           string `json:"mimeType"`
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
}

type imagenError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Generate requests exactly one image for prompt using the given key.
//
// An empty predictions list is a valid non-error response from the
// provider; it is reported as (nil, nil) — "no image for this prompt" —
// and the caller decides whether that sinks the batch.
func (s *ImagenService) Generate(ctx context.Context, apiKey, prompt string) (mimeType string, data []byte, err error) {
	reqBody := imagenPredictRequest{
		Instances: []imagenInstance{{Prompt: prompt}},
		Parameters: imagenParameters{
			SampleCount: 1,
			AspectRatio: s.aspectRatio,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:predict?key=%s", s.baseURL, s.model, apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("imagen returned status %d: %s", resp.StatusCode, truncateString(string(bodyBytes), 200))
	}

	var predictResp imagenPredictResponse
	if err := json.Unmarshal(bodyBytes, &predictResp); err != nil {
		return "", nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if predictResp.Error != nil {
		return "", nil, fmt.Errorf("imagen error %d: %s", predictResp.Error.Code, predictResp.Error.Message)
	}

	if len(predictResp.Predictions) == 0 {
		return "", nil, nil
	}

	pred := predictResp.Predictions[0]
	imageData, err := base64.StdEncoding.DecodeString(pred.BytesBase64Encoded)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}

	mime := pred.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return mime, imageData, nil
}

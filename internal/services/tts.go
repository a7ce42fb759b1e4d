package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SpeechService proxies Google Cloud Text-to-Speech. It exists to back the
// /v1/text-to-speech passthrough endpoint; the response body is returned
// untouched so the caller sees the provider's own {audioContent} JSON.
type SpeechService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewSpeechService(apiKey string) *SpeechService {
	return &SpeechService{
		baseURL: "https://texttospeech.googleapis.com",
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type speechSynthesizeRequest struct {
	AudioConfig speechAudioConfig `json:"audioConfig"`
	Input       speechInput       `json:"input"`
	Voice       speechVoice       `json:"voice"`
}

type speechAudioConfig struct {
	AudioEncoding string `json:"audioEncoding"`
}

type speechInput struct {
	Text string `json:"text"`
}

type speechVoice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

// Synthesize converts text to MP3 speech and returns the provider's raw
// JSON response.
func (s *SpeechService) Synthesize(ctx context.Context, text string) (json.RawMessage, error) {
	reqBody := speechSynthesizeRequest{
		AudioConfig: speechAudioConfig{AudioEncoding: "MP3"},
		Input:       speechInput{Text: text},
		Voice: speechVoice{
			LanguageCode: "en-US",
			Name:         "en-US-Standard-A",
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta1/text:synthesize?key=%s", s.baseURL, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech synthesis returned status %d: %s", resp.StatusCode, truncateString(string(bodyBytes), 200))
	}

	return json.RawMessage(bodyBytes), nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"google.golang.org/genai"

	"github.com/davitk/edureel/internal/models"
)

const geminiTextModel = "gemini-2.0-flash"

// GeminiService generates the narration script and the image-prompt list
// using the Gemini API. It is the default text provider; OpenAIService is
// used instead when an OpenAI key is configured.
type GeminiService struct {
	apiKey       string
	model        string
	segmentCount int
}

func NewGeminiService(apiKey string, segmentCount int) *GeminiService {
	return &GeminiService{
		apiKey:       apiKey,
		model:        geminiTextModel,
		segmentCount: segmentCount,
	}
}

// scriptDocument is the structured shape the script prompt demands.
type scriptDocument struct {
	Script []models.ScriptSegment `json:"script"`
}

func (s *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

// GenerateScript asks for a narration script divided into exactly
// segmentCount timed segments and decodes the structured response.
func (s *GeminiService) GenerateScript(ctx context.Context, topic string) ([]models.ScriptSegment, error) {
	raw, err := s.generate(ctx, buildScriptPrompt(topic, s.segmentCount))
	if err != nil {
		return nil, err
	}
	return parseScript(raw, "Gemini")
}

// GenerateImagePrompts asks for a numbered list of visual descriptions and
// splits it into individual prompts.
func (s *GeminiService) GenerateImagePrompts(ctx context.Context, topic string) ([]string, error) {
	raw, err := s.generate(ctx, buildImagePromptsPrompt(topic, s.segmentCount))
	if err != nil {
		return nil, err
	}

	prompts := splitPrompts(raw)
	if len(prompts) == 0 {
		return nil, fmt.Errorf("gemini returned no image prompts")
	}
	return prompts, nil
}

// parseScript strips any code fencing and decodes the script document.
// Shared by both text providers.
func parseScript(raw, provider string) ([]models.ScriptSegment, error) {
	cleaned := stripCodeFence(raw)

	var doc scriptDocument
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		log.Printf("[%s script] parse failed: %v", provider, err)
		log.Printf("[%s script] raw response: %s", provider, truncateString(raw, 2000))
		return nil, fmt.Errorf("malformed script: %w", err)
	}

	if len(doc.Script) == 0 {
		log.Printf("[%s script] raw response: %s", provider, truncateString(raw, 2000))
		return nil, fmt.Errorf("malformed script: no segments")
	}

	for i, seg := range doc.Script {
		if seg.Seconds <= 0 {
			return nil, fmt.Errorf("malformed script: segment %d has non-positive duration", i)
		}
	}

	return doc.Script, nil
}

func buildScriptPrompt(topic string, segments int) string {
	return fmt.Sprintf(`Create a voiceover script explaining the following topic: "%s".
The script is for elementary school students. Focus on simple explanations
and engaging language, avoid jargon, and make it sound like a friendly
teacher is explaining it.

Divide the narration into exactly %d segments. For each segment, estimate
how many seconds it takes to read aloud at a natural pace (minimum 4).

Respond with ONLY a JSON object of this exact shape, no commentary:
{"script": [{"text": "...", "time": 4}, ...]}`, topic, segments)
}

func buildImagePromptsPrompt(topic string, count int) string {
	return fmt.Sprintf(`Generate %d image prompts suitable for a short educational video about "%s" for elementary school students.
Each prompt should describe a visual scene that illustrates the topic.
Focus on clear and engaging visuals. The prompts should be concise and visually descriptive.
Format the output as a numbered list:
1. [Description of image]
2. [Description of image]
...and so on.`, count, topic)
}

// truncateString truncates a string to maxLen and appends "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

package services

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/davitk/edureel/internal/models"
)

const openaiModel = "gpt-4o-mini"

// OpenAIService is the alternate text provider, selected at startup when
// OPENAI_API_KEY is set. Same contract as GeminiService.
type OpenAIService struct {
	client       *openai.Client
	segmentCount int
}

func NewOpenAIService(apiKey string, segmentCount int) *OpenAIService {
	return &OpenAIService{
		client:       openai.NewClient(apiKey),
		segmentCount: segmentCount,
	}
}

func (s *OpenAIService) complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: openaiModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) GenerateScript(ctx context.Context, topic string) ([]models.ScriptSegment, error) {
	raw, err := s.complete(ctx, buildScriptPrompt(topic, s.segmentCount), true)
	if err != nil {
		return nil, err
	}
	return parseScript(raw, "OpenAI")
}

func (s *OpenAIService) GenerateImagePrompts(ctx context.Context, topic string) ([]string, error) {
	raw, err := s.complete(ctx, buildImagePromptsPrompt(topic, s.segmentCount), false)
	if err != nil {
		return nil, err
	}

	prompts := splitPrompts(raw)
	if len(prompts) == 0 {
		return nil, fmt.Errorf("openai returned no image prompts")
	}
	return prompts, nil
}

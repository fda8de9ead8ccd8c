package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"paintquote_backend/internal/logger"
)

// Analyzer описывает анализ плана этажа vision-моделью. Интерфейс
// нужен, чтобы в тестах сервиса подставлять фейк вместо OpenAI.
type Analyzer interface {
	// AnalyzeFloorPlan возвращает сырой текстовый ответ модели и имя
	// модели, которая его сгенерировала
	AnalyzeFloorPlan(ctx context.Context, imageData []byte, contentType string) (string, string, error)
}

type openAIAnalyzer struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewAnalyzer создает клиент vision-модели
func NewAnalyzer(apiKey, model string, maxTokens int) Analyzer {
	return &openAIAnalyzer{
		client:    openai.NewClient(apiKey),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (a *openAIAnalyzer) AnalyzeFloorPlan(ctx context.Context, imageData []byte, contentType string) (string, string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(imageData))

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: floorPlanPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	})
	logger.ExternalCallLog("openai", "chat_completion", time.Since(start), err)

	if err != nil {
		return "", a.model, fmt.Errorf("vision request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", a.model, fmt.Errorf("vision response contained no choices")
	}

	return resp.Choices[0].Message.Content, a.model, nil
}

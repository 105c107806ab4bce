package models

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// openaiModel adapts an OpenAI-compatible chat endpoint to model.LLM.
// Classifier calls are single-shot, so only the non-streaming path exists.
type openaiModel struct {
	client *openai.Client
	name   string
}

// NewOpenAIModel returns an OpenAI-compatible LLM for the classifier.
// baseURL may be empty for the default endpoint.
func NewOpenAIModel(modelName, apiKey, baseURL string) (model.LLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	return &openaiModel{client: &client, name: modelName}, nil
}

func (m *openaiModel) Name() string {
	return m.name
}

func (m *openaiModel) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		resp, err := m.generate(ctx, req)
		yield(resp, err)
	}
}

func (m *openaiModel) generate(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: convertContentsToMessages(req.Contents, req.Config),
	}
	if params.Model == "" {
		params.Model = m.name
	}
	if req.Config != nil && req.Config.Temperature != nil {
		params.Temperature = openai.Float(float64(*req.Config.Temperature))
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to call chat completions API: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return &model.LLMResponse{}, nil
	}

	message := resp.Choices[0].Message
	content := &genai.Content{
		Role: string(message.Role),
	}
	if message.Content != "" {
		content.Parts = append(content.Parts, &genai.Part{Text: message.Content})
	}
	return &model.LLMResponse{Content: content}, nil
}

// convertContentsToMessages maps genai contents onto chat messages. When the
// request carries a JSON response schema, the schema is appended to the
// system message since not every compatible endpoint supports response_format.
func convertContentsToMessages(contents []*genai.Content, cfg *genai.GenerateContentConfig) []openai.ChatCompletionMessageParamUnion {
	schemaSuffix := renderSchemaInstruction(cfg)

	var messages []openai.ChatCompletionMessageParamUnion
	sawSystem := false
	for _, content := range contents {
		if content == nil {
			continue
		}

		var sb strings.Builder
		for _, part := range content.Parts {
			if part != nil && part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
		text := sb.String()

		switch content.Role {
		case "system":
			if !sawSystem && schemaSuffix != "" {
				text += schemaSuffix
			}
			sawSystem = true
			messages = append(messages, openai.SystemMessage(text))
		case "model":
			messages = append(messages, openai.AssistantMessage(text))
		default:
			messages = append(messages, openai.UserMessage(text))
		}
	}

	if !sawSystem && schemaSuffix != "" {
		messages = append([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("Return ONLY JSON." + schemaSuffix),
		}, messages...)
	}
	return messages
}

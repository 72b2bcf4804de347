package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/rasoi/voice-server/domain/repositories"
)

const (
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultGeminiTimeout = 60 // seconds
)

// GeminiGenerator implements LargeLanguageModel using Google's Gemini
// API. Alternative to the OpenAI adapter, selected with
// LLM_PROVIDER=gemini.
type GeminiGenerator struct {
	client       *genai.Client
	model        string
	systemPrompt string
	maxTokens    int
	temperature  float32
	timeout      time.Duration
	logger       *zap.Logger
}

// Ensure GeminiGenerator implements the LargeLanguageModel interface
var _ repositories.LargeLanguageModel = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a new Gemini adapter. It reuses the shared
// persona/sampling configuration; only APIKey is read from
// GEMINI_API_KEY instead of the OpenAI key.
func NewGeminiGenerator(config OpenAIConfig, logger *zap.Logger) (*GeminiGenerator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultGeminiModel
		logger.Info("Using default Gemini model", zap.String("model", model))
	}

	systemPrompt := config.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	maxTokens := config.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	temperature := config.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}

	timeoutSeconds := config.TimeoutSeconds
	if timeoutSeconds == 0 {
		timeoutSeconds = defaultGeminiTimeout
	}

	return &GeminiGenerator{
		client:       client,
		model:        model,
		systemPrompt: systemPrompt,
		maxTokens:    maxTokens,
		temperature:  float32(temperature),
		timeout:      time.Duration(timeoutSeconds) * time.Second,
		logger:       logger,
	}, nil
}

// Generate submits a single-turn request under the configured persona.
func (g *GeminiGenerator) Generate(ctx context.Context, query string) (string, error) {
	g.logger.Info("Generating cooking response", zap.Int("queryLength", len(query)))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(query, genai.RoleUser),
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		MaxOutputTokens:   int32(g.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generation request failed: %w", err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini generation returned no candidates")
	}

	var reply string
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			reply += part.Text
		}
	}

	if reply == "" {
		return "", fmt.Errorf("gemini generation returned empty content")
	}

	g.logger.Info("Cooking response generated", zap.Int("replyLength", len(reply)))

	return reply, nil
}

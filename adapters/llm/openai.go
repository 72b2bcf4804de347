package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/rasoi/voice-server/domain/repositories"
)

const (
	defaultChatModel    = openai.GPT4
	defaultMaxTokens    = 500
	defaultTemperature  = 0.7
	defaultChatTimeout  = 60 // seconds
	defaultSystemPrompt = `We are Rasoi, a helpful kitchen assistant AI. You specialize in cooking, recipes, ingredient substitutions, cooking techniques, and culinary advice.
Provide clear, practical, and helpful responses about cooking. Keep responses conversational but informative.
If asked about non-cooking topics, politely redirect to cooking-related assistance.`
)

// OpenAIConfig holds configuration for the OpenAIGenerator adapter.
// Required fields:
// - APIKey: Your OpenAI API key
// Optional fields with defaults:
// - APIBaseURL: OpenAI API base URL (default: the public endpoint)
// - Model: chat model (default: "gpt-4")
// - SystemPrompt: assistant persona instruction (default: Rasoi cooking persona)
// - MaxTokens: reply length ceiling (default: 500)
// - Temperature: sampling temperature between 0 and 2 (default: 0.7)
// - TimeoutSeconds: upstream HTTP timeout (default: 60)
type OpenAIConfig struct {
	APIKey         string
	APIBaseURL     string
	Model          string
	SystemPrompt   string
	MaxTokens      int
	Temperature    float64
	TimeoutSeconds int
}

// OpenAIGenerator implements LargeLanguageModel using OpenAI chat completions
type OpenAIGenerator struct {
	client       *openai.Client
	model        string
	systemPrompt string
	maxTokens    int
	temperature  float32
	logger       *zap.Logger
}

// Ensure OpenAIGenerator implements the LargeLanguageModel interface
var _ repositories.LargeLanguageModel = (*OpenAIGenerator)(nil)

// ValidateOpenAIConfig validates the OpenAIConfig. A missing API key
// is allowed: startup proceeds and requests fail upstream instead.
func ValidateOpenAIConfig(config OpenAIConfig) error {
	if config.Temperature != 0 && (config.Temperature < 0 || config.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2, got %f", config.Temperature)
	}

	if config.MaxTokens < 0 {
		return fmt.Errorf("max tokens must be positive, got %d", config.MaxTokens)
	}

	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be positive, got %d", config.TimeoutSeconds)
	}

	return nil
}

// NewOpenAIGenerator creates a new OpenAI chat completion adapter
func NewOpenAIGenerator(config OpenAIConfig, logger *zap.Logger) (*OpenAIGenerator, error) {
	if err := ValidateOpenAIConfig(config); err != nil {
		return nil, err
	}

	if config.APIKey == "" {
		logger.Warn("OpenAI API key is not configured, generation requests will fail")
	}

	model := config.Model
	if model == "" {
		model = defaultChatModel
		logger.Info("Using default chat model", zap.String("model", model))
	}

	systemPrompt := config.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	maxTokens := config.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
		logger.Info("Using default max tokens", zap.Int("maxTokens", maxTokens))
	}

	temperature := config.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
		logger.Info("Using default temperature", zap.Float64("temperature", temperature))
	}

	timeoutSeconds := config.TimeoutSeconds
	if timeoutSeconds == 0 {
		timeoutSeconds = defaultChatTimeout
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.APIBaseURL != "" {
		clientConfig.BaseURL = config.APIBaseURL
		logger.Info("Using custom OpenAI base URL", zap.String("baseURL", config.APIBaseURL))
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}

	return &OpenAIGenerator{
		client:       openai.NewClientWithConfig(clientConfig),
		model:        model,
		systemPrompt: systemPrompt,
		maxTokens:    maxTokens,
		temperature:  float32(temperature),
		logger:       logger,
	}, nil
}

// Generate submits the query under the configured persona and returns
// the first completion choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, query string) (string, error) {
	g.logger.Info("Generating cooking response", zap.Int("queryLength", len(query)))

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	reply := resp.Choices[0].Message.Content

	g.logger.Info("Cooking response generated", zap.Int("replyLength", len(reply)))

	return reply, nil
}

// NewOpenAIConfigFromEnv creates a new OpenAIConfig from environment variables
func NewOpenAIConfigFromEnv() OpenAIConfig {
	config := OpenAIConfig{
		APIKey:       os.Getenv("OPENAI_API_KEY"),
		APIBaseURL:   os.Getenv("OPENAI_API_BASE_URL"),
		Model:        os.Getenv("OPENAI_CHAT_MODEL"),
		SystemPrompt: os.Getenv("ASSISTANT_SYSTEM_PROMPT"),
	}

	if maxTokensStr := os.Getenv("OPENAI_MAX_TOKENS"); maxTokensStr != "" {
		if maxTokens, err := strconv.Atoi(maxTokensStr); err == nil && maxTokens > 0 {
			config.MaxTokens = maxTokens
		}
	}

	if temperatureStr := os.Getenv("OPENAI_TEMPERATURE"); temperatureStr != "" {
		if temperature, err := strconv.ParseFloat(temperatureStr, 64); err == nil && temperature >= 0 && temperature <= 2 {
			config.Temperature = temperature
		}
	}

	if timeoutStr := os.Getenv("OPENAI_TIMEOUT_SECONDS"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil && timeout > 0 {
			config.TimeoutSeconds = timeout
		}
	}

	return config
}

package stt

import (
	"bytes"
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
	defaultWhisperModel    = openai.Whisper1
	defaultWhisperLanguage = "en"
	defaultWhisperTimeout  = 30 // seconds
)

// WhisperConfig holds configuration for the WhisperTranscriber adapter.
// Required fields:
// - APIKey: Your OpenAI API key
// Optional fields with defaults:
// - APIBaseURL: OpenAI API base URL (default: the public endpoint)
// - Model: transcription model (default: "whisper-1")
// - Language: language hint sent with every request (default: "en")
// - TimeoutSeconds: upstream HTTP timeout (default: 30)
type WhisperConfig struct {
	APIKey         string
	APIBaseURL     string
	Model          string
	Language       string
	TimeoutSeconds int
}

// WhisperTranscriber implements SpeechToText using the OpenAI Whisper API
type WhisperTranscriber struct {
	client   *openai.Client
	model    string
	language string
	logger   *zap.Logger
}

// Ensure WhisperTranscriber implements the SpeechToText interface
var _ repositories.SpeechToText = (*WhisperTranscriber)(nil)

// ValidateWhisperConfig validates the WhisperConfig. A missing API key
// is allowed: startup proceeds and requests fail upstream instead.
func ValidateWhisperConfig(config WhisperConfig) error {
	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be positive, got %d", config.TimeoutSeconds)
	}

	return nil
}

// NewWhisperTranscriber creates a new Whisper transcription adapter
func NewWhisperTranscriber(config WhisperConfig, logger *zap.Logger) (*WhisperTranscriber, error) {
	if err := ValidateWhisperConfig(config); err != nil {
		return nil, err
	}

	if config.APIKey == "" {
		logger.Warn("OpenAI API key is not configured, transcription requests will fail")
	}

	model := config.Model
	if model == "" {
		model = defaultWhisperModel
		logger.Info("Using default transcription model", zap.String("model", model))
	}

	language := config.Language
	if language == "" {
		language = defaultWhisperLanguage
		logger.Info("Using default transcription language", zap.String("language", language))
	}

	timeoutSeconds := config.TimeoutSeconds
	if timeoutSeconds == 0 {
		timeoutSeconds = defaultWhisperTimeout
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.APIBaseURL != "" {
		clientConfig.BaseURL = config.APIBaseURL
		logger.Info("Using custom OpenAI base URL", zap.String("baseURL", config.APIBaseURL))
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}

	return &WhisperTranscriber{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    model,
		language: language,
		logger:   logger,
	}, nil
}

// Transcribe converts audio data to text using the Whisper API. The
// language hint from the request config takes precedence over the
// adapter default.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, config repositories.AudioConfig) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio payload is empty")
	}

	language := config.Language
	if language == "" {
		language = w.language
	}

	filename := config.Filename
	if filename == "" {
		filename = "audio.webm"
	}

	w.logger.Info("Transcribing audio",
		zap.String("filename", filename),
		zap.Int("audioSize", len(audio)),
		zap.String("language", language))

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Language: language,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription request failed: %w", err)
	}

	w.logger.Info("Transcription completed", zap.Int("transcriptLength", len(resp.Text)))

	return resp.Text, nil
}

// NewWhisperConfigFromEnv creates a new WhisperConfig from environment variables
func NewWhisperConfigFromEnv() WhisperConfig {
	config := WhisperConfig{
		APIKey:     os.Getenv("OPENAI_API_KEY"),
		APIBaseURL: os.Getenv("OPENAI_API_BASE_URL"),
		Model:      os.Getenv("WHISPER_MODEL"),
		Language:   os.Getenv("WHISPER_LANGUAGE"),
	}

	if timeoutStr := os.Getenv("WHISPER_TIMEOUT_SECONDS"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil && timeout > 0 {
			config.TimeoutSeconds = timeout
		}
	}

	return config
}

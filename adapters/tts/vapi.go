package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rasoi/voice-server/domain/repositories"
)

const (
	defaultVapiBaseURL       = "https://api.vapi.ai"
	defaultVapiVoiceProvider = "eleven-labs"
	defaultVapiVoiceID       = "rachel"
	defaultVapiTimeout       = 30 // seconds
)

// VapiConfig holds configuration for the VapiSynthesizer adapter.
// Required fields:
// - APIKey: Your Vapi API key
// Optional fields with defaults:
// - APIBaseURL: The base URL for the Vapi API (default: "https://api.vapi.ai")
// - VoiceProvider: The upstream voice provider (default: "eleven-labs")
// - VoiceID: The voice to synthesize with (default: "rachel")
// - TimeoutSeconds: upstream HTTP timeout (default: 30)
type VapiConfig struct {
	APIKey         string
	APIBaseURL     string
	VoiceProvider  string
	VoiceID        string
	TimeoutSeconds int
}

// VapiSynthesizer implements TextToSpeech using the Vapi API with a
// fixed voice/provider selection.
//
// The upstream response shape is provisional: Vapi may answer success
// without an audio locator until the integration is fully configured.
// That is reported as a successful SpeechResult with an empty AudioURL,
// never as an error.
type VapiSynthesizer struct {
	apiKey        string
	apiBaseURL    string
	voiceProvider string
	voiceID       string
	httpClient    *http.Client
	logger        *zap.Logger
}

// Ensure VapiSynthesizer implements the TextToSpeech interface
var _ repositories.TextToSpeech = (*VapiSynthesizer)(nil)

// vapiVoice selects the upstream voice for a synthesis call
type vapiVoice struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voiceId"`
}

// vapiAssistant wraps the voice selection the way the call endpoint expects
type vapiAssistant struct {
	Voice vapiVoice `json:"voice"`
}

// vapiRequest represents the request payload for the Vapi call endpoint
type vapiRequest struct {
	Assistant vapiAssistant `json:"assistant"`
	Message   string        `json:"message"`
}

// vapiResponse represents the fields we consume from a Vapi response
type vapiResponse struct {
	AudioURL string `json:"audioUrl"`
}

// ValidateVapiConfig validates the VapiConfig. A missing API key is
// allowed: the pipeline degrades to text-only responses at request time.
func ValidateVapiConfig(config VapiConfig) error {
	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be positive, got %d", config.TimeoutSeconds)
	}

	return nil
}

// NewVapiSynthesizer creates a new Vapi TTS instance
func NewVapiSynthesizer(config VapiConfig, logger *zap.Logger) (*VapiSynthesizer, error) {
	if err := ValidateVapiConfig(config); err != nil {
		return nil, err
	}

	if config.APIKey == "" {
		logger.Warn("Vapi API key is not configured, synthesis requests will fail")
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultVapiBaseURL
		logger.Info("Using default API base URL", zap.String("apiBaseURL", apiBaseURL))
	}

	voiceProvider := config.VoiceProvider
	if voiceProvider == "" {
		voiceProvider = defaultVapiVoiceProvider
		logger.Info("Using default voice provider", zap.String("voiceProvider", voiceProvider))
	}

	voiceID := config.VoiceID
	if voiceID == "" {
		voiceID = defaultVapiVoiceID
		logger.Info("Using default voice ID", zap.String("voiceID", voiceID))
	}

	timeoutSeconds := config.TimeoutSeconds
	if timeoutSeconds == 0 {
		timeoutSeconds = defaultVapiTimeout
	}

	return &VapiSynthesizer{
		apiKey:        config.APIKey,
		apiBaseURL:    strings.TrimRight(apiBaseURL, "/"),
		voiceProvider: voiceProvider,
		voiceID:       voiceID,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		logger: logger,
	}, nil
}

// Synthesize converts reply text to speech through the Vapi call endpoint.
func (v *VapiSynthesizer) Synthesize(ctx context.Context, text string) (*repositories.SpeechResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	v.logger.Info("Synthesizing speech",
		zap.Int("textLength", len(text)),
		zap.String("voiceProvider", v.voiceProvider),
		zap.String("voiceID", v.voiceID))

	requestBody, err := json.Marshal(vapiRequest{
		Assistant: vapiAssistant{
			Voice: vapiVoice{
				Provider: v.voiceProvider,
				VoiceID:  v.voiceID,
			},
		},
		Message: text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := v.apiBaseURL + "/call"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+v.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorBody, _ := io.ReadAll(resp.Body)
		v.logger.Error("Vapi API returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(errorBody)))
		return nil, fmt.Errorf("vapi API returned status %d", resp.StatusCode)
	}

	var result vapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if result.AudioURL == "" {
		v.logger.Warn("Vapi response carried no audio URL, returning text-only result")
	} else {
		v.logger.Info("Speech synthesis completed", zap.String("audioURL", result.AudioURL))
	}

	return &repositories.SpeechResult{AudioURL: result.AudioURL}, nil
}

// NewVapiConfigFromEnv creates a new VapiConfig from environment variables
func NewVapiConfigFromEnv() VapiConfig {
	config := VapiConfig{
		APIKey:        os.Getenv("VAPI_API_KEY"),
		APIBaseURL:    os.Getenv("VAPI_API_BASE_URL"),
		VoiceProvider: os.Getenv("VAPI_VOICE_PROVIDER"),
		VoiceID:       os.Getenv("VAPI_VOICE_ID"),
	}

	if timeoutStr := os.Getenv("VAPI_TIMEOUT_SECONDS"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil && timeout > 0 {
			config.TimeoutSeconds = timeout
		}
	}

	return config
}

package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestNewVapiSynthesizer_Defaults(t *testing.T) {
	logger := zaptest.NewLogger(t)

	synthesizer, err := NewVapiSynthesizer(VapiConfig{APIKey: "test-api-key"}, logger)
	if err != nil {
		t.Fatalf("Failed to create VapiSynthesizer: %v", err)
	}

	if synthesizer.apiBaseURL != defaultVapiBaseURL {
		t.Errorf("Expected default base URL %q, got %q", defaultVapiBaseURL, synthesizer.apiBaseURL)
	}
	if synthesizer.voiceProvider != defaultVapiVoiceProvider {
		t.Errorf("Expected default voice provider %q, got %q", defaultVapiVoiceProvider, synthesizer.voiceProvider)
	}
	if synthesizer.voiceID != defaultVapiVoiceID {
		t.Errorf("Expected default voice ID %q, got %q", defaultVapiVoiceID, synthesizer.voiceID)
	}
}

func TestValidateVapiConfig(t *testing.T) {
	if err := ValidateVapiConfig(VapiConfig{TimeoutSeconds: -1}); err == nil {
		t.Error("Expected error for negative timeout")
	}
	if err := ValidateVapiConfig(VapiConfig{}); err != nil {
		t.Errorf("Missing API key must not fail validation: %v", err)
	}
}

func TestVapiSynthesizer_EmptyText(t *testing.T) {
	synthesizer, err := NewVapiSynthesizer(VapiConfig{APIKey: "test-api-key"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create VapiSynthesizer: %v", err)
	}

	ctx := context.Background()
	if _, err := synthesizer.Synthesize(ctx, ""); err == nil {
		t.Error("Expected error for empty text")
	}
	if _, err := synthesizer.Synthesize(ctx, "   "); err == nil {
		t.Error("Expected error for whitespace-only text")
	}
}

func TestVapiSynthesizer_Synthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/call" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-api-key" {
			t.Errorf("Unexpected authorization header %q", auth)
		}

		var req vapiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Message != "Boil for 7 minutes." {
			t.Errorf("Unexpected message %q", req.Message)
		}
		if req.Assistant.Voice.Provider != "eleven-labs" {
			t.Errorf("Unexpected voice provider %q", req.Assistant.Voice.Provider)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"audioUrl":"https://cdn.vapi.ai/speech/abc.mp3"}`))
	}))
	defer server.Close()

	synthesizer, err := NewVapiSynthesizer(VapiConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create VapiSynthesizer: %v", err)
	}

	result, err := synthesizer.Synthesize(context.Background(), "Boil for 7 minutes.")
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	if result.AudioURL != "https://cdn.vapi.ai/speech/abc.mp3" {
		t.Errorf("Unexpected audio URL %q", result.AudioURL)
	}
}

func TestVapiSynthesizer_MissingAudioURLIsSuccess(t *testing.T) {
	// The provider's locator format is provisional: a 2xx answer
	// without an audioUrl is a normal text-only outcome.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"call-123","status":"queued"}`))
	}))
	defer server.Close()

	synthesizer, err := NewVapiSynthesizer(VapiConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create VapiSynthesizer: %v", err)
	}

	result, err := synthesizer.Synthesize(context.Background(), "Boil for 7 minutes.")
	if err != nil {
		t.Fatalf("Missing audio URL must not be an error: %v", err)
	}

	if result.AudioURL != "" {
		t.Errorf("Expected empty audio URL, got %q", result.AudioURL)
	}
}

func TestVapiSynthesizer_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream synthesis failed"}`))
	}))
	defer server.Close()

	synthesizer, err := NewVapiSynthesizer(VapiConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create VapiSynthesizer: %v", err)
	}

	if _, err := synthesizer.Synthesize(context.Background(), "Boil for 7 minutes."); err == nil {
		t.Error("Expected error for upstream failure")
	}
}

func TestNewVapiConfigFromEnv(t *testing.T) {
	os.Setenv("VAPI_API_KEY", "env-key")
	os.Setenv("VAPI_VOICE_ID", "custom-voice")
	os.Setenv("VAPI_TIMEOUT_SECONDS", "15")
	defer func() {
		os.Unsetenv("VAPI_API_KEY")
		os.Unsetenv("VAPI_VOICE_ID")
		os.Unsetenv("VAPI_TIMEOUT_SECONDS")
	}()

	config := NewVapiConfigFromEnv()
	if config.APIKey != "env-key" {
		t.Errorf("Expected API key 'env-key', got %q", config.APIKey)
	}
	if config.VoiceID != "custom-voice" {
		t.Errorf("Expected voice ID 'custom-voice', got %q", config.VoiceID)
	}
	if config.TimeoutSeconds != 15 {
		t.Errorf("Expected timeout 15, got %d", config.TimeoutSeconds)
	}
}

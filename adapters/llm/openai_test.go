package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap/zaptest"
)

func TestNewOpenAIGenerator_Defaults(t *testing.T) {
	logger := zaptest.NewLogger(t)

	generator, err := NewOpenAIGenerator(OpenAIConfig{APIKey: "test-api-key"}, logger)
	if err != nil {
		t.Fatalf("Failed to create OpenAIGenerator: %v", err)
	}

	if generator.model != defaultChatModel {
		t.Errorf("Expected default model %q, got %q", defaultChatModel, generator.model)
	}
	if generator.maxTokens != defaultMaxTokens {
		t.Errorf("Expected default max tokens %d, got %d", defaultMaxTokens, generator.maxTokens)
	}
	if generator.temperature != float32(defaultTemperature) {
		t.Errorf("Expected default temperature %f, got %f", defaultTemperature, generator.temperature)
	}
	if !strings.Contains(generator.systemPrompt, "Rasoi") {
		t.Error("Expected default persona prompt to describe the cooking assistant")
	}
}

func TestValidateOpenAIConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  OpenAIConfig
		wantErr bool
	}{
		{"valid", OpenAIConfig{APIKey: "k", Temperature: 0.7, MaxTokens: 500}, false},
		{"missing key allowed", OpenAIConfig{}, false},
		{"temperature too high", OpenAIConfig{APIKey: "k", Temperature: 2.5}, true},
		{"negative max tokens", OpenAIConfig{APIKey: "k", MaxTokens: -1}, true},
		{"negative timeout", OpenAIConfig{APIKey: "k", TimeoutSeconds: -5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOpenAIConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOpenAIConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}

		if req.Model != openai.GPT4 {
			t.Errorf("Expected model gpt-4, got %q", req.Model)
		}
		if req.MaxTokens != 500 {
			t.Errorf("Expected max tokens 500, got %d", req.MaxTokens)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("Expected system + user messages, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != openai.ChatMessageRoleSystem || !strings.Contains(req.Messages[0].Content, "Rasoi") {
			t.Error("Expected the persona system instruction as the first message")
		}
		if req.Messages[1].Role != openai.ChatMessageRoleUser || req.Messages[1].Content != "how do I boil an egg" {
			t.Errorf("Unexpected user message %+v", req.Messages[1])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"choices": [
				{"index": 0, "message": {"role": "assistant", "content": "Boil for 7 minutes."}, "finish_reason": "stop"},
				{"index": 1, "message": {"role": "assistant", "content": "ignored second choice"}, "finish_reason": "stop"}
			]
		}`))
	}))
	defer server.Close()

	generator, err := NewOpenAIGenerator(OpenAIConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL + "/v1",
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create OpenAIGenerator: %v", err)
	}

	reply, err := generator.Generate(context.Background(), "how do I boil an egg")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	// Only the first completion choice is used.
	if reply != "Boil for 7 minutes." {
		t.Errorf("Unexpected reply %q", reply)
	}
}

func TestOpenAIGenerator_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer server.Close()

	generator, err := NewOpenAIGenerator(OpenAIConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL + "/v1",
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create OpenAIGenerator: %v", err)
	}

	if _, err := generator.Generate(context.Background(), "hi"); err == nil {
		t.Error("Expected error for upstream failure")
	}
}

func TestOpenAIGenerator_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "chatcmpl-test", "object": "chat.completion", "choices": []}`))
	}))
	defer server.Close()

	generator, err := NewOpenAIGenerator(OpenAIConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL + "/v1",
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create OpenAIGenerator: %v", err)
	}

	if _, err := generator.Generate(context.Background(), "hi"); err == nil {
		t.Error("Expected error for empty choices")
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/rasoi/voice-server/adapters/llm"
	"github.com/rasoi/voice-server/adapters/stt"
	"github.com/rasoi/voice-server/adapters/tts"
	"github.com/rasoi/voice-server/domain/repositories"
	"github.com/rasoi/voice-server/internal/api"
	"github.com/rasoi/voice-server/usecase"
)

// maxUploadSize caps multipart audio uploads at the transport boundary
const maxUploadSize = "25M"

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load .env if present
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using process environment")
	}

	// Missing credentials are a warning, not a startup failure: the
	// affected pipeline stage fails at request time instead.
	if os.Getenv("OPENAI_API_KEY") == "" {
		logger.Warn("OPENAI_API_KEY not set, transcription and generation will fail")
	}
	if os.Getenv("VAPI_API_KEY") == "" {
		logger.Warn("VAPI_API_KEY not set, speech synthesis will be unavailable")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(maxUploadSize))

	// Initialize adapters
	speechToText := newSpeechToText(logger)
	languageModel := newLanguageModel(logger)
	synthesizer := newSynthesizer(logger)

	// Initialize usecase services
	conversations := usecase.NewConversationService(speechToText, languageModel, synthesizer, logger)

	// Initialize API routes
	api.InitRoutes(e, conversations, logger)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newSpeechToText selects the transcription provider. Whisper is the
// default; STT_PROVIDER=google switches to Google Cloud Speech.
func newSpeechToText(logger *zap.Logger) repositories.SpeechToText {
	if os.Getenv("STT_PROVIDER") == "google" {
		logger.Info("Using Google Cloud Speech transcription")
		return stt.NewGoogleTranscriber(logger)
	}

	transcriber, err := stt.NewWhisperTranscriber(stt.NewWhisperConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize Whisper transcriber", zap.Error(err))
	}
	return transcriber
}

// newLanguageModel selects the chat provider. OpenAI is the default;
// LLM_PROVIDER=gemini switches to Gemini.
func newLanguageModel(logger *zap.Logger) repositories.LargeLanguageModel {
	config := llm.NewOpenAIConfigFromEnv()

	if os.Getenv("LLM_PROVIDER") == "gemini" {
		logger.Info("Using Gemini response generation")
		generator, err := llm.NewGeminiGenerator(config, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Gemini generator", zap.Error(err))
		}
		return generator
	}

	generator, err := llm.NewOpenAIGenerator(config, logger)
	if err != nil {
		logger.Fatal("Failed to initialize OpenAI generator", zap.Error(err))
	}
	return generator
}

func newSynthesizer(logger *zap.Logger) repositories.TextToSpeech {
	synthesizer, err := tts.NewVapiSynthesizer(tts.NewVapiConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize Vapi synthesizer", zap.Error(err))
	}
	return synthesizer
}

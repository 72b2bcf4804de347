package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rasoi/voice-server/domain/entities"
	"github.com/rasoi/voice-server/domain/repositories"
	"github.com/rasoi/voice-server/usecase"
)

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, conversations *usecase.ConversationService, logger *zap.Logger) {
	// Health check
	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:  "OK",
			Message: "Server is running",
		})
	})

	e.POST("/api/process-voice", func(c echo.Context) error {
		return processVoice(c, conversations, logger)
	})

	e.POST("/api/chat", func(c echo.Context) error {
		return processChat(c, conversations, logger)
	})
}

// processVoice handles a multipart audio upload: transcribe, answer,
// synthesize, and return the combined result.
func processVoice(c echo.Context, conversations *usecase.ConversationService, logger *zap.Logger) error {
	file, err := c.FormFile("audio")
	if err != nil {
		logger.Warn("Voice request rejected: no audio file attached", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "No audio file provided",
		})
	}

	src, err := file.Open()
	if err != nil {
		logger.Error("Failed to open uploaded audio", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to process voice input",
			Details: err.Error(),
		})
	}
	defer src.Close()

	audio, err := io.ReadAll(src)
	if err != nil {
		logger.Error("Failed to read uploaded audio", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to process voice input",
			Details: err.Error(),
		})
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/webm"
	}

	// Request-scoped filename; the upload's own name is untrusted input.
	filename := fmt.Sprintf("audio_%s.webm", uuid.NewString())

	logger.Info("Received voice processing request",
		zap.String("filename", filename),
		zap.Int64("size", file.Size),
		zap.String("contentType", contentType))

	result, err := conversations.ProcessVoice(c.Request().Context(), audio, repositories.AudioConfig{
		Filename:    filename,
		ContentType: contentType,
		Language:    "en",
	})
	if err != nil {
		logger.Error("Voice pipeline failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to process voice input",
			Details: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, VoiceResponse{
		Success:    true,
		Transcript: result.Transcript,
		Response:   result.Reply,
		AudioURL:   audioURLOrNull(result),
		VapiReady:  result.SpeechReady,
	})
}

// processChat handles text-only queries, skipping transcription.
func processChat(c echo.Context, conversations *usecase.ConversationService, logger *zap.Logger) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("Chat request rejected: malformed body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "No message provided",
		})
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "No message provided",
		})
	}

	logger.Info("Received text query", zap.Int("messageLength", len(req.Message)))

	result, err := conversations.ProcessText(c.Request().Context(), req.Message)
	if err != nil {
		logger.Error("Chat pipeline failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to process message",
			Details: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, ChatResponse{
		Success:   true,
		Response:  result.Reply,
		AudioURL:  audioURLOrNull(result),
		VapiReady: result.SpeechReady,
	})
}

// audioURLOrNull keeps the external contract's explicit JSON null when
// synthesis degraded or produced no locator.
func audioURLOrNull(result *entities.Exchange) *string {
	if result.AudioURL == "" {
		return nil
	}
	url := result.AudioURL
	return &url
}

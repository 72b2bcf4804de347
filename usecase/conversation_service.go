package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rasoi/voice-server/domain/entities"
	"github.com/rasoi/voice-server/domain/repositories"
	"github.com/rasoi/voice-server/internal/pipeline"
)

// Stage failure sentinels. The gateway and callers classify pipeline
// failures with errors.Is against these; the wrapped upstream detail
// stays attached for server-side logging.
var (
	ErrTranscription = errors.New("failed to transcribe audio")
	ErrGeneration    = errors.New("failed to generate response")
	ErrSynthesis     = errors.New("failed to synthesize speech")
)

const (
	stageTranscription pipeline.StageID = "transcription"
	stageGeneration    pipeline.StageID = "generation"
	stageSynthesis     pipeline.StageID = "synthesis"
)

// ConversationService orchestrates one assistant turn:
// audio -> transcript -> reply -> synthesized speech. All state is
// request-scoped, so concurrent requests stay independent.
type ConversationService struct {
	speechToText repositories.SpeechToText
	llm          repositories.LargeLanguageModel
	textToSpeech repositories.TextToSpeech
	runner       *pipeline.Runner
	logger       *zap.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(
	stt repositories.SpeechToText,
	llm repositories.LargeLanguageModel,
	tts repositories.TextToSpeech,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		speechToText: stt,
		llm:          llm,
		textToSpeech: tts,
		runner:       pipeline.NewRunner(logger),
		logger:       logger,
	}
}

// turn holds the state flowing between stages of a single request
type turn struct {
	query    string
	exchange entities.Exchange
}

// ProcessVoice runs the full pipeline on an uploaded audio payload.
func (s *ConversationService) ProcessVoice(ctx context.Context, audio []byte, config repositories.AudioConfig) (*entities.Exchange, error) {
	s.logger.Info("Processing voice input",
		zap.String("filename", config.Filename),
		zap.Int("audioSize", len(audio)))

	t := &turn{}

	stages := []pipeline.Stage{
		{
			ID: stageTranscription,
			Run: func(ctx context.Context) error {
				transcript, err := s.speechToText.Transcribe(ctx, audio, config)
				if err != nil {
					return fmt.Errorf("%w: %w", ErrTranscription, err)
				}
				t.query = transcript
				t.exchange.Transcript = transcript
				return nil
			},
		},
	}
	stages = append(stages, s.replyStages(t)...)

	if _, err := s.runner.Run(ctx, "voice_turn", stages); err != nil {
		return nil, err
	}

	return &t.exchange, nil
}

// ProcessText runs the pipeline on a typed message, skipping
// transcription since the input is already text.
func (s *ConversationService) ProcessText(ctx context.Context, message string) (*entities.Exchange, error) {
	s.logger.Info("Processing text input", zap.Int("messageLength", len(message)))

	t := &turn{query: message}

	if _, err := s.runner.Run(ctx, "chat_turn", s.replyStages(t)); err != nil {
		return nil, err
	}

	return &t.exchange, nil
}

// replyStages builds the shared tail of both input paths: generate the
// cooking reply, then synthesize it. Synthesis is non-fatal: when the
// provider fails the turn degrades to a text-only exchange with
// SpeechReady false instead of aborting the whole request.
func (s *ConversationService) replyStages(t *turn) []pipeline.Stage {
	return []pipeline.Stage{
		{
			ID: stageGeneration,
			Run: func(ctx context.Context) error {
				reply, err := s.llm.Generate(ctx, t.query)
				if err != nil {
					return fmt.Errorf("%w: %w", ErrGeneration, err)
				}
				t.exchange.Reply = reply
				return nil
			},
		},
		{
			ID:       stageSynthesis,
			NonFatal: true,
			Run: func(ctx context.Context) error {
				result, err := s.textToSpeech.Synthesize(ctx, t.exchange.Reply)
				if err != nil {
					return fmt.Errorf("%w: %w", ErrSynthesis, err)
				}
				t.exchange.AudioURL = result.AudioURL
				t.exchange.SpeechReady = true
				return nil
			},
		},
	}
}

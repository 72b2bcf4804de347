package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/rasoi/voice-server/domain/repositories"
)

// GoogleTranscriber implements SpeechToText using Google Cloud
// Speech-to-Text batch recognition. Credentials come from the standard
// GOOGLE_APPLICATION_CREDENTIALS mechanism.
type GoogleTranscriber struct {
	logger *zap.Logger
}

// Ensure GoogleTranscriber implements the SpeechToText interface
var _ repositories.SpeechToText = (*GoogleTranscriber)(nil)

// NewGoogleTranscriber creates a new Google Cloud Speech adapter
func NewGoogleTranscriber(logger *zap.Logger) *GoogleTranscriber {
	return &GoogleTranscriber{logger: logger}
}

// Transcribe converts audio data to text with a single synchronous
// Recognize call. Uploads are short recorded clips, well within the
// one-minute batch recognition limit.
func (g *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte, config repositories.AudioConfig) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio payload is empty")
	}

	client, err := speech.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	language := config.Language
	if language == "" {
		language = "en-US"
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:     encodingForContentType(config.ContentType),
			LanguageCode: language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("google speech recognition failed: %w", err)
	}

	// Concatenate the best alternative of each result. No results means
	// no recognizable speech, which is a valid empty transcript.
	var transcript strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript.WriteString(result.Alternatives[0].Transcript)
		}
	}

	g.logger.Info("Transcription completed",
		zap.Int("results", len(resp.Results)),
		zap.Int("transcriptLength", transcript.Len()))

	return transcript.String(), nil
}

// encodingForContentType maps upload content types to Google Speech API
// encodings. Browser MediaRecorder uploads are webm/opus.
func encodingForContentType(contentType string) speechpb.RecognitionConfig_AudioEncoding {
	switch {
	case strings.Contains(contentType, "webm"), strings.Contains(contentType, "ogg"):
		return speechpb.RecognitionConfig_WEBM_OPUS
	case strings.Contains(contentType, "flac"):
		return speechpb.RecognitionConfig_FLAC
	case strings.Contains(contentType, "wav"):
		return speechpb.RecognitionConfig_LINEAR16
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

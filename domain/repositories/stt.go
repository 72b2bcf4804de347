package repositories

import "context"

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// Transcribe converts a recorded audio payload to text. An empty
	// transcript is a valid result when no speech was recognized.
	Transcribe(ctx context.Context, audio []byte, config AudioConfig) (string, error)
}

// AudioConfig describes the uploaded audio payload for transcription
type AudioConfig struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Language    string `json:"language"`
}

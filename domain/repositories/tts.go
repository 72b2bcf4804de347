package repositories

import "context"

// TextToSpeech abstracts speech synthesis services
type TextToSpeech interface {
	Synthesize(ctx context.Context, text string) (*SpeechResult, error)
}

// SpeechResult is the locator for synthesized speech. AudioURL may be
// empty on success while the upstream provider integration is not fully
// wired; callers treat that as a normal text-only outcome.
type SpeechResult struct {
	AudioURL string `json:"audio_url"`
}

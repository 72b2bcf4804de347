package entities

// Exchange is one completed turn of the assistant pipeline. It is
// request-scoped: nothing here survives the response, the server keeps
// no conversation state between requests.
type Exchange struct {
	// Transcript is what the user said. Empty for text-input requests,
	// which never go through transcription.
	Transcript string `json:"transcript,omitempty"`
	// Reply is the assistant's answer.
	Reply string `json:"reply"`
	// AudioURL locates the synthesized speech for Reply, when available.
	AudioURL string `json:"audio_url,omitempty"`
	// SpeechReady reports whether synthesis succeeded. When false the
	// client falls back to text-only presentation.
	SpeechReady bool `json:"speech_ready"`
}

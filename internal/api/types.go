package api

// HealthResponse represents the liveness probe payload
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ChatRequest represents the request payload for text-only queries
type ChatRequest struct {
	Message string `json:"message"`
}

// VoiceResponse represents the response payload for a processed voice upload
type VoiceResponse struct {
	Success    bool    `json:"success"`
	Transcript string  `json:"transcript"`
	Response   string  `json:"response"`
	AudioURL   *string `json:"audioUrl"`
	VapiReady  bool    `json:"vapiReady"`
}

// ChatResponse represents the response payload for a text query
type ChatResponse struct {
	Success   bool    `json:"success"`
	Response  string  `json:"response"`
	AudioURL  *string `json:"audioUrl"`
	VapiReady bool    `json:"vapiReady"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

package genapi

// Wire paths of the generation service.
const (
	PathHealth = "/health"
	PathSend   = "/send"
	PathStatus = "/status/"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	WorkerID string `json:"worker_id"`
}

// SubmitRequest is the POST /send payload. Exactly one of Image or Text is set.
type SubmitRequest struct {
	// Image is the base64-encoded prompt image.
	Image string `json:"image,omitempty"`
	Text  string `json:"text,omitempty"`
	// Texture is always serialized.
	Texture bool `json:"texture"`
}

type submitResponse struct {
	UID string `json:"uid"`
}

// StatusResponse is returned by GET /status/{uid}.
type StatusResponse struct {
	Status      string `json:"status"`
	ModelBase64 string `json:"model_base64,omitempty"`
	Message     string `json:"message,omitempty"`
}

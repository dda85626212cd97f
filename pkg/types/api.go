package types

import "time"

// JobRequest is the POST /jobs payload.
type JobRequest struct {
	// Generation mode: text or image.
	// example: text
	Mode string `json:"mode" example:"text"`
	// Prompt for text mode.
	// example: a red cube
	Text string `json:"text,omitempty" example:"a red cube"`
	// Base64-encoded image for image mode.
	Image string `json:"image,omitempty"`
	// Ask the service to texture the model.
	// example: true
	Texture bool `json:"texture" example:"true"`
}

// JobView is the current job as shown to a UI.
type JobView struct {
	// Lifecycle state: idle, submitting, polling, completed, error.
	// example: polling
	State string `json:"state" example:"polling"`
	// example: text
	Mode string `json:"mode,omitempty" example:"text"`
	// example: a red cube
	Prompt string `json:"prompt,omitempty" example:"a red cube"`
	// example: true
	Texture bool `json:"texture" example:"true"`
	// Identifier assigned by the remote service.
	// example: abc123
	JobID string `json:"job_id,omitempty" example:"abc123"`
	// Last remote status: preparing, processing, texturing, completed, error, unknown.
	// example: processing
	Status string `json:"status,omitempty" example:"processing"`
	// Progress in [0,1].
	// example: 0.5
	Progress float64 `json:"progress" example:"0.5"`
	// Human-readable status line.
	// example: Generating 3D model...
	Message string `json:"message,omitempty" example:"Generating 3D model..."`
	// Path of the stored model once completed.
	ResultPath string `json:"result_path,omitempty"`
	// History entry created for the result.
	HistoryID string `json:"history_id,omitempty"`
	// Error message when the job failed or input was invalid.
	Error string `json:"error,omitempty"`
	// Error message while it is still shown inline; empty once dismissed.
	Notice string `json:"notice,omitempty"`
	// example: 2026-01-02T15:04:05Z
	UpdatedAt time.Time `json:"updated_at"`
}

// RemoteHealth mirrors the generation service health payload.
type RemoteHealth struct {
	// example: ok
	Status string `json:"status" example:"ok"`
	// example: gpu-worker-1
	WorkerID string `json:"worker_id" example:"gpu-worker-1"`
}

// RenameRequest is the PATCH /history/{id} payload.
type RenameRequest struct {
	// example: My robot
	Name string `json:"name" example:"My robot"`
}

// ImportRequest is the POST /history/import payload.
type ImportRequest struct {
	// Local path of a .usdz/.gltf/.glb/.obj/.dae file.
	// example: /home/user/Downloads/chair.glb
	Path string `json:"path" example:"/home/user/Downloads/chair.glb"`
}

// GeometryStats are reported by the renderer that loaded a model.
type GeometryStats struct {
	Vertices  int        `json:"vertices"`
	Triangles int        `json:"triangles"`
	Materials int        `json:"materials"`
	Extents   [3]float64 `json:"extents"`
}

// ViewerLoadRequest is the POST /viewer/load payload. Either ID (history entry) or Path is set.
type ViewerLoadRequest struct {
	ID    string        `json:"id,omitempty"`
	Path  string        `json:"path,omitempty"`
	Stats GeometryStats `json:"stats"`
}

// RotateRequest is the POST /viewer/rotate payload.
type RotateRequest struct {
	// Rotation delta in radians.
	// example: 0.7853981
	Delta float64 `json:"delta" example:"0.7853981"`
	// Absolute angle in radians; when set, delta is ignored.
	Angle *float64 `json:"angle,omitempty" example:"3.1415926"`
}

// ScaleRequest is the POST /viewer/scale payload.
type ScaleRequest struct {
	// Multiplicative factor.
	// example: 1.5
	Factor float64 `json:"factor" example:"1.5"`
	// Absolute scale, clamped to the viewer range; when set, factor is ignored.
	Value *float64 `json:"value,omitempty" example:"2"`
}

// ViewerView is the model view state.
type ViewerView struct {
	Model    string        `json:"model,omitempty"`
	Rotation float64       `json:"rotation"`
	Scale    float64       `json:"scale"`
	Stats    GeometryStats `json:"stats"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

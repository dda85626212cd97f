package generation

import "time"

// State is the lifecycle state of the manager's current job.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

// Active reports whether a job is in flight.
func (s State) Active() bool { return s == StateSubmitting || s == StatePolling }

// Mode selects the prompt payload.
type Mode string

const (
	ModeText  Mode = "text"
	ModeImage Mode = "image"
	// ModeFile marks imported models; such input is never submitted.
	ModeFile Mode = "file"
)

// Status is the remote job status.
type Status string

const (
	StatusPreparing  Status = "preparing"
	StatusProcessing Status = "processing"
	StatusTexturing  Status = "texturing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	StatusUnknown    Status = "unknown"
)

// Input is what a caller asks to generate.
type Input struct {
	Mode    Mode
	Text    string
	Image   []byte
	Texture bool
}

// Job is the data of the tracked job.
type Job struct {
	Mode    Mode
	Prompt  string
	// Image is the compressed JPEG that was submitted.
	Image      []byte
	Texture    bool
	JobID      string
	Status     Status
	Progress   float64
	Message    string
	ResultPath string
	HistoryID  string
}

// Snapshot is a point-in-time copy of the manager state.
type Snapshot struct {
	State State
	Job   Job
	// Error is set in StateError, or in StateIdle after a rejected input.
	Error     string
	ErrorAt   time.Time
	UpdatedAt time.Time
}

func (s Snapshot) clone() Snapshot {
	if s.Job.Image != nil {
		s.Job.Image = append([]byte(nil), s.Job.Image...)
	}
	return s
}

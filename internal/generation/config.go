package generation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"forge3d/internal/genapi"
	"forge3d/internal/history"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultPollInterval    = 2 * time.Second
	defaultMaxPromptLength = 500
	defaultMaxImageBytes   = 10 << 20
	defaultMaxDimension    = 2048
	defaultJPEGQuality     = 80
)

// API is the part of the remote client the manager needs.
type API interface {
	Submit(ctx context.Context, req genapi.SubmitRequest) (string, error)
	Status(ctx context.Context, uid string) (genapi.StatusResponse, error)
}

// ResultStore persists decoded model bytes and returns the file path and size.
// Remove discards a saved file whose job was canceled or failed before it was recorded.
type ResultStore interface {
	SaveGenerated(prefix string, data []byte) (string, int64, error)
	Remove(path string) error
}

// Recorder appends finished models to the history. Delete retracts an entry
// recorded for a job that was canceled meanwhile, together with its file.
type Recorder interface {
	Append(ctx context.Context, e history.Entry) (history.Entry, error)
	Delete(ctx context.Context, id string) error
}

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	API     API
	Results ResultStore
	History Recorder

	PollInterval      time.Duration
	MaxPromptLength   int
	MaxImageBytes     int64
	ImageMaxDimension int
	JPEGQuality       int

	Publisher EventPublisher
	Logger    zerolog.Logger
	// BaseContext parents every job; canceling it cancels the running job.
	BaseContext context.Context
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) (*Manager, error) {
	if cfg.API == nil || cfg.Results == nil || cfg.History == nil {
		return nil, errors.New("generation: API, Results and History are required")
	}
	m := &Manager{
		api:      cfg.API,
		results:  cfg.Results,
		history:  cfg.History,
		interval: cfg.PollInterval,
		limits: limits{
			maxPromptLength: cfg.MaxPromptLength,
			maxImageBytes:   cfg.MaxImageBytes,
			maxDimension:    cfg.ImageMaxDimension,
			jpegQuality:     cfg.JPEGQuality,
		},
		pub:     cfg.Publisher,
		log:     cfg.Logger,
		baseCtx: cfg.BaseContext,
		bcast:   newBroadcaster(),
		now:     time.Now,
	}
	// Apply defaults if unset
	if m.interval <= 0 {
		m.interval = defaultPollInterval
	}
	if m.limits.maxPromptLength <= 0 {
		m.limits.maxPromptLength = defaultMaxPromptLength
	}
	if m.limits.maxImageBytes <= 0 {
		m.limits.maxImageBytes = defaultMaxImageBytes
	}
	if m.limits.maxDimension <= 0 {
		m.limits.maxDimension = defaultMaxDimension
	}
	if m.limits.jpegQuality <= 0 || m.limits.jpegQuality > 100 {
		m.limits.jpegQuality = defaultJPEGQuality
	}
	if m.pub == nil {
		m.pub = noopPublisher{}
	}
	if m.baseCtx == nil {
		m.baseCtx = context.Background()
	}
	m.snap = Snapshot{State: StateIdle, UpdatedAt: m.now()}
	return m, nil
}

package generation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Manager owns at most one job. All state transitions happen under mu and
// are published in order before mu is released.
type Manager struct {
	mu     sync.Mutex
	snap   Snapshot
	token  uint64
	cancel context.CancelFunc
	start  time.Time

	api      API
	results  ResultStore
	history  Recorder
	interval time.Duration
	limits   limits

	pub     EventPublisher
	bcast   *broadcaster
	log     zerolog.Logger
	baseCtx context.Context
	loops   sync.WaitGroup
	now     func() time.Time
}

// SetEventPublisher installs an additional event sink (nil restores the no-op).
func (m *Manager) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		p = noopPublisher{}
	}
	m.pub = p
}

// Subscribe returns an ordered stream of events and a function that ends the
// subscription. The channel is closed on unsubscribe or Close.
func (m *Manager) Subscribe() (<-chan Event, func()) { return m.bcast.subscribe() }

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.clone()
}

// Start validates in, submits it and starts polling in the background. It
// returns once the service has accepted the job or the job has failed.
// Starting from completed or error implies a reset.
func (m *Manager) Start(ctx context.Context, in Input) error {
	m.mu.Lock()
	if m.snap.State.Active() {
		st := m.snap.State
		m.mu.Unlock()
		return busyError{state: st}
	}
	m.mu.Unlock()

	p, err := m.limits.prepare(in)

	m.mu.Lock()
	if m.snap.State.Active() {
		st := m.snap.State
		m.mu.Unlock()
		return busyError{state: st}
	}
	now := m.now()
	if err != nil {
		m.snap = Snapshot{State: StateIdle, Error: err.Error(), ErrorAt: now, UpdatedAt: now}
		m.emitLocked(EventRejected)
		m.mu.Unlock()
		jobsTotal.WithLabelValues(outcomeRejected).Inc()
		m.log.Debug().Str("mode", string(in.Mode)).Err(err).Msg("generation input rejected")
		return err
	}

	m.token++
	token := m.token
	jobCtx, cancel := context.WithCancel(m.baseCtx)
	m.cancel = cancel
	m.start = now
	m.snap = Snapshot{
		State: StateSubmitting,
		Job: Job{
			Mode:    p.input.Mode,
			Prompt:  p.input.Text,
			Image:   p.input.Image,
			Texture: p.input.Texture,
			Message: "Submitting...",
		},
		UpdatedAt: now,
	}
	m.emitLocked(EventSubmitting)
	m.mu.Unlock()

	m.log.Info().Str("mode", string(p.input.Mode)).Bool("texture", p.input.Texture).Msg("submitting generation job")
	// The caller's ctx only governs submission; polling outlives it.
	stop := context.AfterFunc(ctx, cancel)
	uid, err := m.api.Submit(jobCtx, p.req)
	if !stop() && ctx.Err() != nil {
		cancel()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if token != m.token {
		return ErrCanceled
	}
	if jobCtx.Err() != nil {
		// caller or base context went away mid-submit
		m.clearLocked()
		m.emitLocked(EventCanceled)
		jobsTotal.WithLabelValues(outcomeCanceled).Inc()
		return ErrCanceled
	}
	if err != nil {
		jerr := &JobError{Stage: "submit", Err: err}
		m.failLocked(jerr)
		return jerr
	}
	m.snap.State = StatePolling
	m.snap.Job.JobID = uid
	m.snap.Job.Message = "Waiting for the service..."
	m.snap.UpdatedAt = m.now()
	m.emitLocked(EventPolling)
	m.log.Info().Str("job_id", uid).Msg("generation job accepted")

	m.loops.Add(1)
	go m.poll(jobCtx, token, uid)
	return nil
}

// Cancel abandons the in-flight job, aborting any outstanding request, and
// returns to idle. No event is published for the job afterwards. It reports
// whether a job was in flight. The remote job is not canceled.
func (m *Manager) Cancel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.snap.State.Active() {
		return false
	}
	id := m.snap.Job.JobID
	m.clearLocked()
	m.emitLocked(EventCanceled)
	jobsTotal.WithLabelValues(outcomeCanceled).Inc()
	m.log.Info().Str("job_id", id).Msg("generation job canceled")
	return true
}

// Reset returns a finished job, or a rejected input, to a clean idle state.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap.State.Active() {
		return busyError{state: m.snap.State}
	}
	if m.snap.State == StateIdle && m.snap.Error == "" {
		return nil
	}
	m.clearLocked()
	m.emitLocked(EventReset)
	return nil
}

// Wait blocks until background poll loops have exited.
func (m *Manager) Wait() { m.loops.Wait() }

// Close cancels any running job, waits for its loop and closes subscriber channels.
func (m *Manager) Close() {
	m.Cancel()
	m.loops.Wait()
	m.bcast.closeAll()
}

// clearLocked invalidates the current token and drops job state.
func (m *Manager) clearLocked() {
	m.token++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.snap = Snapshot{State: StateIdle, UpdatedAt: m.now()}
}

func (m *Manager) failLocked(err *JobError) {
	now := m.now()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.snap.State = StateError
	m.snap.Job.Status = StatusError
	m.snap.Job.Progress = Progress(StatusError)
	m.snap.Error = err.Err.Error()
	m.snap.ErrorAt = now
	m.snap.UpdatedAt = now
	m.emitLocked(EventFailed)
	jobsTotal.WithLabelValues(outcomeFailed).Inc()
	jobDuration.Observe(now.Sub(m.start).Seconds())
	m.log.Warn().Str("stage", err.Stage).Str("job_id", m.snap.Job.JobID).Err(err.Err).Msg("generation job failed")
}

func (m *Manager) emitLocked(name string) {
	e := Event{Name: name, Snapshot: m.snap.clone()}
	m.pub.Publish(e)
	m.bcast.Publish(e)
}

package generation

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"forge3d/internal/history"
)

// poll queries the job status every interval until a terminal status, a
// failure, or cancellation. Results are committed only while token is current.
func (m *Manager) poll(ctx context.Context, token uint64, uid string) {
	defer m.loops.Done()
	for {
		resp, err := m.api.Status(ctx, uid)
		pollIterationsTotal.Inc()
		if ctx.Err() != nil {
			m.abandon(token)
			return
		}
		if err != nil {
			m.fail(token, &JobError{Stage: "poll", Err: err})
			return
		}
		switch st := ParseStatus(resp.Status); st {
		case StatusCompleted:
			m.complete(ctx, token, resp.ModelBase64)
			return
		case StatusError:
			msg := strings.TrimSpace(resp.Message)
			if msg == "" {
				msg = ErrGenerationFailed.Error()
			}
			m.fail(token, &JobError{Stage: "remote", Err: errors.New(msg)})
			return
		default:
			if !m.progress(token, st, resp.Message) {
				return
			}
		}

		select {
		case <-ctx.Done():
			m.abandon(token)
			return
		case <-time.After(m.interval):
		}
	}
}

// progress records a non-terminal status. It reports false once the job is stale.
func (m *Manager) progress(token uint64, st Status, remote string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token != m.token {
		return false
	}
	m.snap.Job.Status = st
	m.snap.Job.Progress = Progress(st)
	m.snap.Job.Message = statusMessage(st, remote)
	m.snap.UpdatedAt = m.now()
	m.emitLocked(EventProgress)
	m.log.Debug().Str("job_id", m.snap.Job.JobID).Str("status", string(st)).Msg("generation progress")
	return true
}

func (m *Manager) complete(ctx context.Context, token uint64, payload string) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err == nil && len(data) == 0 {
		err = errors.New("empty model payload")
	}
	if err != nil {
		m.fail(token, &JobError{Stage: "decode", Err: err})
		return
	}

	m.mu.Lock()
	if token != m.token {
		m.mu.Unlock()
		return
	}
	job := m.snap.Job
	m.mu.Unlock()
	if ctx.Err() != nil {
		m.abandon(token)
		return
	}

	path, size, err := m.results.SaveGenerated(string(job.Mode), data)
	if err != nil {
		m.fail(token, &JobError{Stage: "save", Err: err})
		return
	}
	if !m.current(token) || ctx.Err() != nil {
		m.discardFile(path)
		m.abandon(token)
		return
	}
	entry, err := m.history.Append(ctx, history.Entry{
		ModelURL:        path,
		GenerationType:  history.GenerationType(job.Mode),
		PromptText:      job.Prompt,
		PromptImageData: job.Image,
		GenerateTexture: job.Texture,
		ModelName:       history.DisplayName(history.GenerationType(job.Mode), job.Prompt, path),
		FileSize:        size,
	})
	if err != nil {
		m.discardFile(path)
		if ctx.Err() != nil {
			m.abandon(token)
			return
		}
		m.fail(token, &JobError{Stage: "save", Err: err})
		return
	}

	m.mu.Lock()
	if token != m.token {
		m.mu.Unlock()
		m.retract(ctx, entry.ID)
		return
	}
	defer m.mu.Unlock()
	now := m.now()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.snap.State = StateCompleted
	m.snap.Job.Status = StatusCompleted
	m.snap.Job.Progress = Progress(StatusCompleted)
	m.snap.Job.Message = statusMessage(StatusCompleted, "")
	m.snap.Job.ResultPath = path
	m.snap.Job.HistoryID = entry.ID
	m.snap.UpdatedAt = now
	m.emitLocked(EventCompleted)
	jobsTotal.WithLabelValues(outcomeCompleted).Inc()
	jobDuration.Observe(now.Sub(m.start).Seconds())
	m.log.Info().Str("job_id", job.JobID).Str("path", path).Int64("bytes", size).Msg("generation job completed")
}

func (m *Manager) current(token uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return token == m.token
}

func (m *Manager) discardFile(path string) {
	if err := m.results.Remove(path); err != nil {
		m.log.Warn().Err(err).Str("path", path).Msg("remove unrecorded model")
	}
}

// retract deletes an entry recorded by a job canceled while it was being saved.
// Delete also removes the model file.
func (m *Manager) retract(ctx context.Context, id string) {
	m.log.Debug().Str("history_id", id).Msg("generation result arrived after cancel")
	if err := m.history.Delete(context.WithoutCancel(ctx), id); err != nil && !history.IsNotFound(err) {
		m.log.Warn().Err(err).Str("history_id", id).Msg("retract late history entry")
	}
}

func (m *Manager) fail(token uint64, err *JobError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token != m.token {
		return
	}
	m.failLocked(err)
}

// abandon handles a loop whose context ended without Cancel, e.g. BaseContext shutdown.
func (m *Manager) abandon(token uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token != m.token {
		return
	}
	m.clearLocked()
	m.emitLocked(EventCanceled)
	jobsTotal.WithLabelValues(outcomeCanceled).Inc()
}

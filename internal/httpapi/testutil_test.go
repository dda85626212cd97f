package httpapi

import (
	"context"
	"errors"
	"sync"
	"time"

	"forge3d/internal/generation"
	"forge3d/internal/genapi"
	"forge3d/internal/history"
)

type fakeJobs struct {
	mu       sync.Mutex
	snap     generation.Snapshot
	startErr error
	resetErr error
	inputs   []generation.Input
	canceled bool
	events   chan generation.Event
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{snap: generation.Snapshot{State: generation.StateIdle}, events: make(chan generation.Event, 8)}
}

func (f *fakeJobs) Start(ctx context.Context, in generation.Input) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if f.startErr != nil {
		return f.startErr
	}
	f.snap = generation.Snapshot{State: generation.StatePolling, Job: generation.Job{Mode: in.Mode, Prompt: in.Text, JobID: "abc123"}}
	return nil
}

func (f *fakeJobs) Snapshot() generation.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeJobs) Cancel() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.snap.State.Active() {
		return false
	}
	f.canceled = true
	f.snap = generation.Snapshot{State: generation.StateIdle}
	return true
}

func (f *fakeJobs) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetErr != nil {
		return f.resetErr
	}
	f.snap = generation.Snapshot{State: generation.StateIdle}
	return nil
}

func (f *fakeJobs) Subscribe() (<-chan generation.Event, func()) {
	return f.events, func() {}
}

type fakeHistory struct {
	mu        sync.Mutex
	entries   []history.Entry
	importErr error
	imported  []string
}

func (f *fakeHistory) List() []history.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]history.Entry(nil), f.entries...)
}

func (f *fakeHistory) Get(id string) (history.Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.ID == id {
			return e, true
		}
	}
	return history.Entry{}, false
}

func (f *fakeHistory) Rename(_ context.Context, id, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			if name != "" {
				f.entries[i].ModelName = name
			}
			return nil
		}
	}
	return notFound(id)
}

func (f *fakeHistory) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return notFound(id)
}

func (f *fakeHistory) DeleteAll(context.Context) error {
	f.mu.Lock()
	f.entries = nil
	f.mu.Unlock()
	return nil
}

func (f *fakeHistory) Import(_ context.Context, src string) (history.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imported = append(f.imported, src)
	if f.importErr != nil {
		return history.Entry{}, f.importErr
	}
	e := history.Entry{ID: "imp", ModelURL: "/m/" + src, GenerationType: history.TypeFile, ModelName: "chair"}
	f.entries = append([]history.Entry{e}, f.entries...)
	return e, nil
}

// notFound mimics a store miss.
func notFound(id string) error { return mockHTTPError{msg: "history entry not found: " + id, code: 404} }

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

type fakeRemote struct {
	health genapi.HealthResponse
	err    error
}

func (f fakeRemote) Health(ctx context.Context) (genapi.HealthResponse, error) {
	return f.health, f.err
}

type nopAPI struct{}

func (nopAPI) Submit(context.Context, genapi.SubmitRequest) (string, error) { return "u", nil }
func (nopAPI) Status(context.Context, string) (genapi.StatusResponse, error) {
	return genapi.StatusResponse{Status: "processing"}, nil
}

// blockingAPI accepts jobs and never reports a status until canceled.
type blockingAPI struct{ nopAPI }

func (blockingAPI) Status(ctx context.Context, _ string) (genapi.StatusResponse, error) {
	<-ctx.Done()
	return genapi.StatusResponse{}, ctx.Err()
}

type nopResults struct{}

func (nopResults) SaveGenerated(string, []byte) (string, int64, error) { return "/m/x.glb", 1, nil }
func (nopResults) Remove(string) error { return nil }

type nopRecorder struct{}

func (nopRecorder) Append(_ context.Context, e history.Entry) (history.Entry, error) { return e, nil }
func (nopRecorder) Delete(context.Context, string) error { return nil }

var errBoom = errors.New("boom")

func sinceNow(d time.Duration) time.Time { return time.Now().Add(-d) }

package generation

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"forge3d/internal/genapi"
	"forge3d/internal/history"
	"forge3d/internal/kv"
	"forge3d/internal/modelstore"
)

// fakeAPI scripts the remote service. Status returns statuses in order and
// repeats the last one; with block set it waits for ctx instead.
type fakeAPI struct {
	mu          sync.Mutex
	uid         string
	submitErr   error
	statuses    []genapi.StatusResponse
	statusErr   error
	block       bool
	submits     []genapi.SubmitRequest
	statusCalls int
	polled      chan struct{}
}

func newFakeAPI(statuses ...genapi.StatusResponse) *fakeAPI {
	return &fakeAPI{uid: "abc123", statuses: statuses, polled: make(chan struct{}, 16)}
}

func (f *fakeAPI) Submit(ctx context.Context, req genapi.SubmitRequest) (string, error) {
	f.mu.Lock()
	f.submits = append(f.submits, req)
	err := f.submitErr
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err != nil {
		return "", err
	}
	return f.uid, nil
}

func (f *fakeAPI) Status(ctx context.Context, uid string) (genapi.StatusResponse, error) {
	f.mu.Lock()
	i := f.statusCalls
	f.statusCalls++
	block, err := f.block, f.statusErr
	var resp genapi.StatusResponse
	if len(f.statuses) > 0 {
		if i >= len(f.statuses) {
			i = len(f.statuses) - 1
		}
		resp = f.statuses[i]
	}
	f.mu.Unlock()
	select {
	case f.polled <- struct{}{}:
	default:
	}
	if block {
		<-ctx.Done()
		return genapi.StatusResponse{}, ctx.Err()
	}
	if err != nil {
		return genapi.StatusResponse{}, err
	}
	return resp, nil
}

func (f *fakeAPI) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submits)
}

func (f *fakeAPI) statusCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

// hookResults runs afterSave once the wrapped store has written the file.
type hookResults struct {
	ResultStore
	afterSave func()
}

func (r *hookResults) SaveGenerated(prefix string, data []byte) (string, int64, error) {
	path, size, err := r.ResultStore.SaveGenerated(prefix, data)
	if err == nil && r.afterSave != nil {
		r.afterSave()
	}
	return path, size, err
}

// hookRecorder fails Append with appendErr, or runs afterAppend once the entry is stored.
type hookRecorder struct {
	Recorder
	appendErr   error
	afterAppend func()
}

func (r *hookRecorder) Append(ctx context.Context, e history.Entry) (history.Entry, error) {
	if r.appendErr != nil {
		return history.Entry{}, r.appendErr
	}
	e, err := r.Recorder.Append(ctx, e)
	if err == nil && r.afterAppend != nil {
		r.afterAppend()
	}
	return e, err
}

type harness struct {
	m       *Manager
	api     *fakeAPI
	files   *modelstore.Store
	history *history.Store
	pub     *MemoryPublisher
	models  string
}

func newHarness(t *testing.T, api *fakeAPI, mutate ...func(*ManagerConfig)) *harness {
	t.Helper()
	root := t.TempDir()
	files, err := modelstore.New(filepath.Join(root, "models"), "", "glb")
	if err != nil {
		t.Fatalf("modelstore: %v", err)
	}
	kvs, err := kv.NewFile(filepath.Join(root, "state"))
	if err != nil {
		t.Fatalf("kv: %v", err)
	}
	hs, err := history.New(history.Config{KV: kvs, Files: files})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	pub := NewMemoryPublisher()
	cfg := ManagerConfig{
		API:          api,
		Results:      files,
		History:      hs,
		PollInterval: 5 * time.Millisecond,
		Publisher:    pub,
		Logger:       zerolog.Nop(),
	}
	for _, f := range mutate {
		f(&cfg)
	}
	m, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	t.Cleanup(m.Close)
	return &harness{m: m, api: api, files: files, history: hs, pub: pub, models: filepath.Join(root, "models")}
}

func assertNoModels(t *testing.T, h *harness) {
	t.Helper()
	if left, _ := filepath.Glob(filepath.Join(h.models, "*")); len(left) != 0 {
		t.Fatalf("unrecorded model left on disk: %v", left)
	}
}

// waitFor polls the manager snapshot until it reaches want.
func waitFor(t *testing.T, m *Manager, want State) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s := m.Snapshot(); s.State == want {
			return s
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %s; last=%+v", want, m.Snapshot())
	return Snapshot{}
}

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

package e2e

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"forge3d/internal/genapi"
	"forge3d/internal/generation"
	"forge3d/internal/history"
	"forge3d/internal/httpapi"
	"forge3d/internal/kv"
	"forge3d/internal/modelstore"
	"forge3d/internal/viewer"
)

// remote is a scripted stand-in for the generation service.
type remote struct {
	mu       sync.Mutex
	statuses []string
	message  string
	polls    int
	bodies   []map[string]any
	// hold, when non-nil, blocks status calls until closed.
	hold chan struct{}
}

func (f *remote) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","worker_id":"e2e"}`))
	})
	mux.HandleFunc("/send", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.bodies = append(f.bodies, body)
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"uid":"e2e-job"}`))
	})
	mux.HandleFunc("/status/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		hold := f.hold
		f.mu.Unlock()
		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		f.mu.Lock()
		st := f.statuses[len(f.statuses)-1]
		if f.polls < len(f.statuses) {
			st = f.statuses[f.polls]
		}
		f.polls++
		msg := f.message
		f.mu.Unlock()
		out := map[string]string{"status": st}
		if st == "completed" {
			out["model_base64"] = base64.StdEncoding.EncodeToString([]byte("glb-bytes"))
		}
		if st == "error" {
			out["message"] = msg
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	return mux
}

func (f *remote) submitted() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.bodies...)
}

// stack is the whole client wired the way `forge3d serve` wires it.
type stack struct {
	srv     *httptest.Server
	mgr     *generation.Manager
	history *history.Store
	models  string
}

func newStack(t *testing.T, rem *remote, kvs kv.Store) *stack {
	t.Helper()
	ts := httptest.NewServer(rem.handler())
	t.Cleanup(ts.Close)

	root := t.TempDir()
	if kvs == nil {
		var err error
		if kvs, err = kv.NewFile(filepath.Join(root, "state")); err != nil {
			t.Fatalf("kv: %v", err)
		}
	}
	files, err := modelstore.New(filepath.Join(root, "models"), filepath.Join(root, "bundled"), "glb")
	if err != nil {
		t.Fatalf("modelstore: %v", err)
	}
	hist, err := history.New(history.Config{KV: kvs, Files: files, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if err := hist.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	client := genapi.New(genapi.Config{BaseURL: ts.URL, ResourceTimeout: 2 * time.Second})
	mgr, err := generation.NewWithConfig(generation.ManagerConfig{
		API:          client,
		Results:      files,
		History:      hist,
		PollInterval: 5 * time.Millisecond,
		Logger:       zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(httpapi.Services{
		Jobs:    mgr,
		History: hist,
		Remote:  client,
		Viewer:  viewer.New(),
	}))
	t.Cleanup(func() {
		srv.Close()
		mgr.Close()
		hist.Wait()
	})
	return &stack{srv: srv, mgr: mgr, history: hist, models: files.ModelsDir()}
}

func httpDo(t *testing.T, method, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, body)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	return httpDo(t, http.MethodGet, url, nil)
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	return httpDo(t, http.MethodPost, url, payload)
}

// waitJob polls GET /jobs/current until state matches or the deadline passes.
func waitJob(t *testing.T, base, state string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		_, body := httpGet(t, base+"/jobs/current")
		var v map[string]any
		if err := json.Unmarshal(body, &v); err != nil {
			t.Fatalf("/jobs/current json: %v body=%s", err, body)
		}
		if v["state"] == state {
			return v
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not reach %q in time; last=%s", state, body)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	"forge3d/internal/history"
	"forge3d/internal/kv"
	"forge3d/internal/modelstore"
	"forge3d/pkg/types"
)

func TestE2E_TextJob_History_Viewer(t *testing.T) {
	rem := &remote{statuses: []string{"preparing", "processing", "texturing", "completed"}}
	st := newStack(t, rem, nil)
	base := st.srv.URL

	// 1) Remote is reachable so the API is ready
	if resp, body := httpGet(t, base+"/readyz"); resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz status=%d body=%s", resp.StatusCode, body)
	}

	// 2) Submit a text job
	resp, body := httpPostJSON(t, base+"/jobs", []byte(`{"mode":"text","text":"a red cube","texture":true}`))
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("/jobs status=%d body=%s", resp.StatusCode, body)
	}
	job := waitJob(t, base, "completed")
	if job["progress"] != 1.0 || job["job_id"] != "e2e-job" {
		t.Fatalf("unexpected completed job: %v", job)
	}
	sent := rem.submitted()
	if len(sent) != 1 || sent[0]["text"] != "a red cube" || sent[0]["texture"] != true {
		t.Fatalf("unexpected submission: %v", sent)
	}
	path, _ := job["result_path"].(string)
	if b, err := os.ReadFile(path); err != nil || string(b) != "glb-bytes" {
		t.Fatalf("model not saved at %q: %v", path, err)
	}

	// 3) History lists the new model first
	_, body = httpGet(t, base+"/history")
	var list struct {
		Entries []history.Entry `json:"entries"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("/history json: %v body=%s", err, body)
	}
	if len(list.Entries) != 1 || list.Entries[0].ID != job["history_id"] || list.Entries[0].ModelURL != path {
		t.Fatalf("unexpected history: %s", body)
	}
	if list.Entries[0].GenerationType != history.TypeText || list.Entries[0].PromptText != "a red cube" {
		t.Fatalf("unexpected entry: %+v", list.Entries[0])
	}

	// 4) Open it in the viewer and transform
	resp, body = httpPostJSON(t, base+"/viewer/load", []byte(`{"id":"`+list.Entries[0].ID+`","stats":{"vertices":8,"triangles":12,"materials":1}}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/viewer/load status=%d body=%s", resp.StatusCode, body)
	}
	_, body = httpPostJSON(t, base+"/viewer/scale", []byte(`{"factor":10}`))
	var view types.ViewerView
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatalf("/viewer/scale json: %v", err)
	}
	if view.Model != path || view.Scale != 3 || view.Stats.Triangles != 12 {
		t.Fatalf("unexpected viewer state: %+v", view)
	}

	// 5) Delete removes the entry and its file
	if resp, _ := httpDo(t, http.MethodDelete, base+"/history/"+list.Entries[0].ID, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status=%d", resp.StatusCode)
	}
	st.history.Wait()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("model file should be gone: %v", err)
	}
}

func TestE2E_RemoteError_NoticeAndReset(t *testing.T) {
	rem := &remote{statuses: []string{"processing", "error"}, message: "GPU OOM"}
	st := newStack(t, rem, nil)
	base := st.srv.URL

	if resp, body := httpPostJSON(t, base+"/jobs", []byte(`{"mode":"text","text":"a chair"}`)); resp.StatusCode != http.StatusAccepted {
		t.Fatalf("/jobs status=%d body=%s", resp.StatusCode, body)
	}
	job := waitJob(t, base, "error")
	if job["error"] != "GPU OOM" || job["notice"] != "GPU OOM" || job["progress"] != 0.0 {
		t.Fatalf("unexpected failed job: %v", job)
	}
	if st.history.Len() != 0 {
		t.Fatalf("failed job must not reach history")
	}

	// a new job is allowed from the error state; reset clears it first here
	if resp, body := httpPostJSON(t, base+"/jobs/current/reset", []byte(`{}`)); resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status=%d body=%s", resp.StatusCode, body)
	}
	waitJob(t, base, "idle")
}

func TestE2E_CancelWhilePolling(t *testing.T) {
	rem := &remote{statuses: []string{"completed"}, hold: make(chan struct{})}
	st := newStack(t, rem, nil)
	base := st.srv.URL

	if resp, body := httpPostJSON(t, base+"/jobs", []byte(`{"mode":"text","text":"a lamp"}`)); resp.StatusCode != http.StatusAccepted {
		t.Fatalf("/jobs status=%d body=%s", resp.StatusCode, body)
	}
	waitJob(t, base, "polling")
	if resp, body := httpDo(t, http.MethodDelete, base+"/jobs/current", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status=%d body=%s", resp.StatusCode, body)
	}
	close(rem.hold)
	st.mgr.Wait()

	waitJob(t, base, "idle")
	if st.history.Len() != 0 {
		t.Fatalf("canceled job must not reach history")
	}
	if files, _ := filepath.Glob(filepath.Join(st.models, "*")); len(files) != 0 {
		t.Fatalf("canceled job must not save a model: %v", files)
	}
	if resp, _ := httpDo(t, http.MethodDelete, base+"/jobs/current", nil); resp.StatusCode != http.StatusConflict {
		t.Fatalf("second cancel status=%d", resp.StatusCode)
	}
}

func TestE2E_HistoryBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) kv.Store{
		"sqlite": func(t *testing.T) kv.Store {
			s, err := kv.NewSQLite(filepath.Join(t.TempDir(), "history.db"))
			if err != nil {
				t.Fatalf("sqlite: %v", err)
			}
			return s
		},
		"redis": func(t *testing.T) kv.Store {
			mr := miniredis.RunT(t)
			s, err := kv.NewRedis(context.Background(), kv.RedisOptions{Addr: mr.Addr(), Prefix: "e2e:"})
			if err != nil {
				t.Fatalf("redis: %v", err)
			}
			return s
		},
	}
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			kvs := open(t)
			t.Cleanup(func() { _ = kvs.Close() })
			st := newStack(t, &remote{statuses: []string{"completed"}}, kvs)

			if resp, body := httpPostJSON(t, st.srv.URL+"/jobs", []byte(`{"mode":"text","text":"a boat"}`)); resp.StatusCode != http.StatusAccepted {
				t.Fatalf("/jobs status=%d body=%s", resp.StatusCode, body)
			}
			job := waitJob(t, st.srv.URL, "completed")

			// a second process sees the persisted entry
			files, err := modelstore.New(st.models, "", "glb")
			if err != nil {
				t.Fatalf("modelstore: %v", err)
			}
			again, err := history.New(history.Config{KV: kvs, Files: files, Logger: zerolog.Nop()})
			if err != nil {
				t.Fatalf("history: %v", err)
			}
			if err := again.Load(context.Background()); err != nil {
				t.Fatalf("reload: %v", err)
			}
			if e, ok := again.Get(job["history_id"].(string)); !ok || e.ModelURL != job["result_path"] {
				t.Fatalf("entry not persisted in %s backend", name)
			}
		})
	}
}

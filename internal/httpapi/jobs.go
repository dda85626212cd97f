package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"forge3d/internal/generation"
	"forge3d/pkg/types"
)

// @Summary      Start a generation job
// @Description  Validates the input, submits it and returns once the service accepted it.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        body  body      types.JobRequest  true  "job input"
// @Success      202   {object}  types.JobView
// @Failure      400   {object}  types.ErrorResponse
// @Failure      409   {object}  types.ErrorResponse
// @Failure      502   {object}  types.ErrorResponse
// @Router       /jobs [post]
func createJobHandler(jobs Jobs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.JobRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		in := generation.Input{
			Mode:    generation.Mode(strings.ToLower(strings.TrimSpace(req.Mode))),
			Text:    req.Text,
			Texture: req.Texture,
		}
		if req.Image != "" {
			img, err := base64.StdEncoding.DecodeString(req.Image)
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, "image must be base64-encoded")
				return
			}
			in.Image = img
		}
		// Shutdown cancels an in-flight submission too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if err := jobs.Start(ctx, in); err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, jobView(jobs.Snapshot(), time.Now()))
	}
}

// @Summary      Current job
// @Tags         jobs
// @Produce      json
// @Success      200  {object}  types.JobView
// @Router       /jobs/current [get]
func currentJobHandler(jobs Jobs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, jobView(jobs.Snapshot(), time.Now()))
	}
}

// @Summary      Cancel the current job
// @Description  Client-side only: polling stops, the remote job keeps running.
// @Tags         jobs
// @Produce      json
// @Success      200  {object}  types.JobView
// @Failure      409  {object}  types.ErrorResponse
// @Router       /jobs/current [delete]
func cancelJobHandler(jobs Jobs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !jobs.Cancel() {
			writeJSONError(w, http.StatusConflict, "no job in flight")
			return
		}
		writeJSON(w, http.StatusOK, jobView(jobs.Snapshot(), time.Now()))
	}
}

// @Summary      Reset a finished job
// @Tags         jobs
// @Produce      json
// @Success      200  {object}  types.JobView
// @Failure      409  {object}  types.ErrorResponse
// @Router       /jobs/current/reset [post]
func resetJobHandler(jobs Jobs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := jobs.Reset(); err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, jobView(jobs.Snapshot(), time.Now()))
	}
}

// @Summary      Job event stream
// @Description  Server-Sent Events: one "snapshot" event, then one event per state transition.
// @Tags         jobs
// @Produce      text/event-stream
// @Router       /events [get]
func eventsHandler(jobs Jobs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}
		events, unsubscribe := jobs.Subscribe()
		defer unsubscribe()
		sseClients.Inc()
		defer sseClients.Dec()

		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		if err := writeEvent(w, "snapshot", jobView(jobs.Snapshot(), time.Now())); err != nil {
			return
		}
		flusher.Flush()

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				if err := writeEvent(w, e.Name, jobView(e.Snapshot, time.Now())); err != nil {
					zlog.Debug().Err(err).Msg("event stream write failed")
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, b)
	return err
}

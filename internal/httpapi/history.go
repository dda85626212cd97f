package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"forge3d/internal/history"
	"forge3d/pkg/types"
)

// @Summary      List history
// @Description  Newest first.
// @Tags         history
// @Produce      json
// @Router       /history [get]
func listHistoryHandler(h History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := h.List()
		if entries == nil {
			entries = []history.Entry{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
	}
}

// @Summary      Rename an entry
// @Tags         history
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "entry id"
// @Param        body  body      types.RenameRequest  true  "new name"
// @Failure      404   {object}  types.ErrorResponse
// @Router       /history/{id} [patch]
func renameHandler(h History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RenameRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "id")
		if err := h.Rename(r.Context(), id, req.Name); err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		e, _ := h.Get(id)
		writeJSON(w, http.StatusOK, e)
	}
}

// @Summary      Delete an entry
// @Description  The model file is deleted in the background unless it is a bundled asset.
// @Tags         history
// @Param        id   path  string  true  "entry id"
// @Success      204
// @Failure      404  {object}  types.ErrorResponse
// @Router       /history/{id} [delete]
func deleteEntryHandler(h History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary      Clear history
// @Tags         history
// @Success      204
// @Router       /history [delete]
func clearHistoryHandler(h History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.DeleteAll(r.Context()); err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary      Import a local model file
// @Tags         history
// @Accept       json
// @Produce      json
// @Param        body  body      types.ImportRequest  true  "source path"
// @Failure      400   {object}  types.ErrorResponse
// @Failure      415   {object}  types.ErrorResponse
// @Router       /history/import [post]
func importHandler(h History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ImportRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Path) == "" {
			writeJSONError(w, http.StatusBadRequest, "path is required")
			return
		}
		e, err := h.Import(r.Context(), req.Path)
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

// @Summary      List bundled sample models
// @Tags         history
// @Produce      json
// @Success      200  {array}   types.Asset
// @Router       /samples [get]
func samplesHandler(samples func() ([]types.Asset, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assets := []types.Asset{}
		if samples != nil {
			found, err := samples()
			if err != nil {
				writeJSONError(w, statusFor(err), err.Error())
				return
			}
			if found != nil {
				assets = found
			}
		}
		writeJSON(w, http.StatusOK, assets)
	}
}

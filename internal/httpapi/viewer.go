package httpapi

import (
	"net/http"

	"forge3d/internal/viewer"
	"forge3d/pkg/types"
)

func viewerStateHandler(v *viewer.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, viewerView(v.Snapshot()))
	}
}

// @Summary      Load a model into the viewer
// @Description  Either a history entry id or a path. Stats come from the client's renderer.
// @Tags         viewer
// @Accept       json
// @Produce      json
// @Param        body  body      types.ViewerLoadRequest  true  "model reference"
// @Success      200   {object}  types.ViewerView
// @Failure      404   {object}  types.ErrorResponse
// @Router       /viewer/load [post]
func viewerLoadHandler(v *viewer.State, h History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ViewerLoadRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		ref := req.Path
		if req.ID != "" {
			if h == nil {
				writeJSONError(w, http.StatusNotFound, "history entry not found: "+req.ID)
				return
			}
			e, ok := h.Get(req.ID)
			if !ok {
				writeJSONError(w, http.StatusNotFound, "history entry not found: "+req.ID)
				return
			}
			ref = e.ModelURL
		}
		if ref == "" {
			writeJSONError(w, http.StatusBadRequest, "id or path is required")
			return
		}
		v.Load(ref, viewer.Stats{
			Vertices:  req.Stats.Vertices,
			Triangles: req.Stats.Triangles,
			Materials: req.Stats.Materials,
			Extents:   req.Stats.Extents,
		})
		writeJSON(w, http.StatusOK, viewerView(v.Snapshot()))
	}
}

func viewerRotateHandler(v *viewer.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RotateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Angle != nil {
			v.SetRotation(*req.Angle)
		} else {
			v.Rotate(req.Delta)
		}
		writeJSON(w, http.StatusOK, viewerView(v.Snapshot()))
	}
}

func viewerScaleHandler(v *viewer.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ScaleRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		switch {
		case req.Value != nil:
			v.SetScale(*req.Value)
		case req.Factor <= 0:
			writeJSONError(w, http.StatusBadRequest, "factor must be positive")
			return
		default:
			v.Scale(req.Factor)
		}
		writeJSON(w, http.StatusOK, viewerView(v.Snapshot()))
	}
}

func viewerResetHandler(v *viewer.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v.Reset()
		writeJSON(w, http.StatusOK, viewerView(v.Snapshot()))
	}
}

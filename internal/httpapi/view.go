package httpapi

import (
	"time"

	"forge3d/internal/generation"
	"forge3d/internal/genapi"
	"forge3d/internal/viewer"
	"forge3d/pkg/types"
)

func jobView(s generation.Snapshot, now time.Time) types.JobView {
	v := types.JobView{
		State:      string(s.State),
		Mode:       string(s.Job.Mode),
		Prompt:     s.Job.Prompt,
		Texture:    s.Job.Texture,
		JobID:      s.Job.JobID,
		Status:     string(s.Job.Status),
		Progress:   s.Job.Progress,
		Message:    s.Job.Message,
		ResultPath: s.Job.ResultPath,
		HistoryID:  s.Job.HistoryID,
		Error:      s.Error,
		UpdatedAt:  s.UpdatedAt,
	}
	if s.Error != "" && now.Sub(s.ErrorAt) < errorDismissAfter {
		v.Notice = s.Error
	}
	return v
}

func remoteHealthView(h genapi.HealthResponse) types.RemoteHealth {
	return types.RemoteHealth{Status: h.Status, WorkerID: h.WorkerID}
}

func viewerView(s viewer.Snapshot) types.ViewerView {
	return types.ViewerView{
		Model:    s.Model,
		Rotation: s.Rotation,
		Scale:    s.Scale,
		Stats: types.GeometryStats{
			Vertices:  s.Stats.Vertices,
			Triangles: s.Stats.Triangles,
			Materials: s.Stats.Materials,
			Extents:   s.Stats.Extents,
		},
	}
}

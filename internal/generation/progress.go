package generation

import "strings"

var progressTable = map[Status]float64{
	StatusPreparing:  0.2,
	StatusProcessing: 0.5,
	StatusTexturing:  0.8,
	StatusCompleted:  1.0,
	StatusError:      0.0,
}

var statusMessages = map[Status]string{
	StatusPreparing:  "Preparing...",
	StatusProcessing: "Generating 3D model...",
	StatusTexturing:  "Applying textures...",
	StatusCompleted:  "Completed",
}

// ParseStatus maps a remote status string, case-insensitively. Anything
// unrecognised is StatusUnknown.
func ParseStatus(s string) Status {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := progressTable[st]; ok {
		return st
	}
	return StatusUnknown
}

// Progress returns the fixed progress value for s.
func Progress(s Status) float64 { return progressTable[s] }

func statusMessage(s Status, remote string) string {
	if remote != "" {
		return remote
	}
	if m, ok := statusMessages[s]; ok {
		return m
	}
	return "Waiting for status..."
}

// Package generation drives one text- or image-to-3D job at a time against the
// remote service. It is structured into small files by concern:
//
//   - manager.go: Manager type, Start/Cancel/Reset/Close and snapshots.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: State, Mode, Status, Input, Job and Snapshot.
//   - errors.go: error types and helpers (IsValidation, IsBusy, IsJobFailed).
//   - validate.go: input validation and request preparation.
//   - image.go: prompt image compression.
//   - progress.go: remote status parsing and the fixed progress table.
//   - poll.go: the background poll loop and result handling.
//   - events.go, broadcast.go, eventpub_memory.go: state-change events.
//   - metrics.go: prometheus collectors.
//
// State machine:
//
//	idle -> submitting -> polling -> completed | error
//
// Cancel moves submitting or polling back to idle; completed and error stay
// until Reset or the next Start. At most one job is tracked.
package generation

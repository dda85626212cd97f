package generation

import (
	"errors"
	"fmt"
)

// validationError rejects input before any network call.
type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

// IsValidation reports whether err is an input validation failure (return 400).
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}

// busyError signals that a job is already in flight (return 409).
type busyError struct{ state State }

func (e busyError) Error() string { return fmt.Sprintf("generation busy: job is %s", e.state) }

// IsBusy reports whether err indicates an in-flight job.
func IsBusy(err error) bool {
	var b busyError
	return errors.As(err, &b)
}

// JobError is the terminal failure of a job, carrying the stage it failed in.
type JobError struct {
	Stage string // submit, poll, remote, decode, save
	Err   error
}

func (e *JobError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *JobError) Unwrap() error { return e.Err }

// IsJobFailed reports whether err is a terminal job failure.
func IsJobFailed(err error) bool {
	var j *JobError
	return errors.As(err, &j)
}

// ErrCanceled is returned by Start when the job was canceled while submitting.
var ErrCanceled = errors.New("generation canceled")

// ErrGenerationFailed is the message used when the service reports an error without one.
var ErrGenerationFailed = errors.New("Generation failed")

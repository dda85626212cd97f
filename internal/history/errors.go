package history

import "errors"

type notFoundError struct{ id string }

func (e notFoundError) Error() string { return "history entry not found: " + e.id }

// IsNotFound reports whether err refers to a missing entry id.
func IsNotFound(err error) bool {
	var nf notFoundError
	return errors.As(err, &nf)
}

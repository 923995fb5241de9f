package store

import "fmt"

// InitializationError reports a dataset that cannot be turned into a store.
// It is fatal: no partially built store is ever returned.
type InitializationError struct {
	Source string // dataset origin and file, e.g. "embedded/heuristics.yml"
	Reason string
	Err    error
}

func (e *InitializationError) Error() string {
	msg := fmt.Sprintf("definition store: %s: %s", e.Source, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

func initError(origin, file, reason string, err error) *InitializationError {
	source := file
	if origin != "" {
		source = origin + "/" + file
	}
	return &InitializationError{Source: source, Reason: reason, Err: err}
}

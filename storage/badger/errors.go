package badger

import "errors"

// ErrBackendRequired indicates a nil Backend was supplied.
var ErrBackendRequired = errors.New("badger backend is required")

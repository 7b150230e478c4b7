package source

import "errors"

var (
	// ErrUnexpectedStatus is returned when a fetch gets a non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid URL")
)

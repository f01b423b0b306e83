package urlkit

import "errors"

var (
	// ErrInvalidURL is returned for malformed, empty, or non-http(s) URLs.
	ErrInvalidURL = errors.New("urlkit: invalid url")
	// ErrPrivateIP is returned when a URL's host resolves to a private,
	// loopback, or link-local address.
	ErrPrivateIP = errors.New("urlkit: url resolves to a private address")
)

package health

import (
	"errors"
	"net"
	"strings"

	"leadscout/internal/infra/httpclient"
)

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "deadline exceeded")
}

func isNotFound(err error) bool {
	return strings.Contains(err.Error(), "404") || strings.Contains(err.Error(), "not found")
}

func isBlocked(err error) bool {
	if errors.Is(err, httpclient.ErrTooManyRedirects) {
		return true
	}
	return strings.Contains(err.Error(), "403") || strings.Contains(err.Error(), "429") ||
		strings.Contains(err.Error(), "forbidden")
}

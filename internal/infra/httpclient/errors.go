package httpclient

import "errors"

var (
	ErrTooManyRedirects = errors.New("httpclient: too many redirects")
	ErrBodyTooLarge     = errors.New("httpclient: response body exceeds size limit")
	ErrTransient        = errors.New("httpclient: transient network error")
)

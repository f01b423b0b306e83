package extract

import "errors"

// ErrLLM covers every way the AI extraction pass can fail: network error,
// circuit breaker open, retries exhausted, or a non-JSON/partial-JSON
// response. Callers always have the pattern-pass result to fall back on.
var ErrLLM = errors.New("extract: llm extraction failed")

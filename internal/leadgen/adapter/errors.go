package adapter

import "errors"

// ErrDisabled reports that an adapter was asked to search while disabled.
// No adapter in this package returns it: Registry.Enabled leaves disabled
// adapters out before the dispatcher calls Search.
var ErrDisabled = errors.New("adapter: disabled")

// ErrQuotaExhausted signals a keyed API adapter hit its own rate limit for
// the configured billing period.
var ErrQuotaExhausted = errors.New("adapter: quota exhausted")

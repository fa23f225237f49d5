package volume

import "codeberg.org/mutker/hoststatus/internal/errors"

const (
	ErrConnectFailed = errors.ErrorCode("volume_connect_failed")
	ErrQueryFailed   = errors.ErrorCode("volume_query_failed")
	ErrQueryTimeout  = errors.ErrorCode("volume_query_timeout")
	ErrMalformed     = errors.ErrorCode("volume_malformed_reply")
	ErrPanic         = errors.ErrorCode("volume_sampler_panic")
)

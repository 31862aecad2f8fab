package errs

import "errors"

var (
	ErrStreamUnavailable = errors.New("stream unavailable")
	ErrStreamNotReady    = errors.New("stream not ready yet")
	ErrUnsupportedFormat = errors.New("no supported decode strategy")
	ErrNotBound          = errors.New("no stream bound")

	ErrMalformedPayload = errors.New("malformed platform payload")
	ErrInvalidSpeed     = errors.New("playback speed must be 0.5, 1 or 2")
	ErrCameraNotFound   = errors.New("camera not found")

	ErrWriteToDB = errors.New("failed to write to database")
)

package models

import "errors"

var (
	ErrVideoNotFound      = errors.New("video not found")
	ErrJobNotFound        = errors.New("job not found")
	ErrInvalidTransition  = errors.New("invalid job status transition")
	ErrJobNotTerminal     = errors.New("cannot delete job that is pending or processing")
	ErrVideoBusy          = errors.New("video has a pending or processing job")
	ErrVideoLimitReached  = errors.New("maximum number of indexed videos reached")
	ErrUnsupportedFormat  = errors.New("unsupported video format")
	ErrFileTooLarge       = errors.New("video file too large")
	ErrNoFrames           = errors.New("no frames found for video")
	ErrMalformedMessage   = errors.New("malformed work message")
	ErrUnsortedCandidates = errors.New("candidate pool is not sorted by descending score")
)

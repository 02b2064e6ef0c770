package errors

import "errors"

var (
	ErrEngineUnavailable = errors.New("engine process could not be started")
	ErrEngineNotReady    = errors.New("engine is not ready")
	ErrReportNotFound    = errors.New("report not found")
	ErrJobNotFound       = errors.New("analysis job not found")
	ErrEmptyGame         = errors.New("game has no moves")
)

package services

import (
	"errors"

	"herdbook/internal/countdown"
)

var (
	// ErrInvalidTarget is countdown.ErrInvalidTarget, re-exported for handlers
	ErrInvalidTarget = countdown.ErrInvalidTarget

	// ErrTooManyRecords is returned when a dataset exceeds the export limit
	ErrTooManyRecords = errors.New("too many records")

	// ErrInvalidFormat is returned for an unsupported export format
	ErrInvalidFormat = errors.New("invalid export format")
)

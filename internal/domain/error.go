package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrReadDatabaseRow = errors.New("failed to read database row")

	// Chat core
	ErrEmptyMessage    = errors.New("message is empty")
	ErrExchangePending = errors.New("an exchange is already pending")

	// Answer service
	ErrNoAnswer        = errors.New("answer service returned no answer")
	ErrWorkerSaturated = errors.New("worker queue full")
)

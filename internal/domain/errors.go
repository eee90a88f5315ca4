package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
	ErrSourceDown  = errors.New("source unavailable")
	ErrEmptyTopic  = errors.New("topic must not be empty")
)

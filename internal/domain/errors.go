package domain

import "errors"

var (
	// ErrInvalidInput rejects an empty or whitespace-only question before any state changes.
	ErrInvalidInput = errors.New("question is empty")
	// ErrRetrievalUnavailable means the record index cannot be queried.
	ErrRetrievalUnavailable = errors.New("record retrieval unavailable")
)

// Sentinel answers.
const (
	DataNotAvailable = "Data not available."
	ErrorAnswer      = "An error occurred while processing the request."
)

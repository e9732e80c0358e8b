package domain

import "errors"

// Common domain errors shared across verification components.
var (
	// ErrEmptyCode indicates that an operation received no source code.
	ErrEmptyCode = errors.New("code cannot be empty")

	// ErrEmptyExplanation indicates that an operation received no
	// explanation text.
	ErrEmptyExplanation = errors.New("explanation cannot be empty")

	// ErrUnsupportedLanguage indicates that no parser exists for the
	// requested language tag.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrInvalidConfiguration indicates that configuration is invalid
	// or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

package models

import "fmt"

// ExtractionError: a document yielded zero chunks across all pages.
type ExtractionError struct {
	File string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("no extractable content found in %q", e.File)
}

// IndexInitError: the embedding model or vector store is unavailable or
// misconfigured (including an embedding width that does not match the
// collection width).
type IndexInitError struct {
	Reason string
	Err    error
}

func (e *IndexInitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("index init: %s: %v", e.Reason, e.Err)
	}
	return "index init: " + e.Reason
}

func (e *IndexInitError) Unwrap() error { return e.Err }

// ModelInvocationError: a rephrase or answer-generation call failed.
type ModelInvocationError struct {
	Op  string
	Err error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("model invocation (%s): %v", e.Op, e.Err)
}

func (e *ModelInvocationError) Unwrap() error { return e.Err }

// ClientInputError: the caller supplied a malformed conversation history.
type ClientInputError struct {
	Msg string
}

func (e *ClientInputError) Error() string { return e.Msg }

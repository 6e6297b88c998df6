package domain

import "fmt"

// ConfigurationError reports invalid pipeline configuration, such as a
// chunk overlap that is not smaller than the chunk size. Fatal: the
// caller must fix the configuration before retrying.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Msg
}

// UnsupportedFormatError reports a file type no loader accepts.
// Per-file and recoverable: skip the file, continue the batch.
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %s", e.Name)
}

// DecodeError reports a file that matched a loader but could not be
// decoded. Per-file and recoverable.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EmbeddingUnavailableError reports that the embedding capability is
// unreachable or misconfigured. The index is left unchanged.
type EmbeddingUnavailableError struct {
	Err error
}

func (e *EmbeddingUnavailableError) Error() string {
	return fmt.Sprintf("embedding unavailable: %v", e.Err)
}

func (e *EmbeddingUnavailableError) Unwrap() error { return e.Err }

// NoMatchError is the expected outcome of the relevance gate when no
// retrieved chunk is confident enough. Not a system failure.
type NoMatchError struct{}

func (e *NoMatchError) Error() string {
	return "unable to find matching results; try rephrasing your question or uploading more documents"
}

// CompletionError reports a failed completion call. The underlying
// message is carried verbatim; no answer is fabricated.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed: %v", e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

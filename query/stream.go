package query

import "time"

// StreamResult represents a single matching instance in a stream
type StreamResult[T any] struct {
	Item      *T             // The decoded instance
	Primitive map[string]any // Primitive form the predicates were matched against
	Error     error          // Item-specific error, if any
	Meta      StreamMeta     // Metadata about this item
}

// StreamMeta contains metadata about a streamed item
type StreamMeta struct {
	Index     int64     // Match index in stream (0-based)
	Scanned   int64     // Records scanned when this item matched
	Timestamp time.Time // When item was decoded
}

// StreamOptions configures streaming behavior
type StreamOptions struct {
	BufferSize      int                  // Channel buffer size (default: 100)
	ProgressHandler func(StreamProgress) // Optional progress callback, called per match and at the end
	ErrorHandler    func(error) bool     // Return true to skip the failing record, false to stop
}

// StreamProgress tracks streaming progress
type StreamProgress struct {
	ItemsMatched int64     // Total items sent
	Errors       []error   // Accumulated skipped errors
	StartTime    time.Time // When streaming started
	CurrentRate  float64   // Items per second
	Done         bool      // Set on the final report
}

// StreamOption is a functional option for configuring streaming
type StreamOption func(*StreamOptions)

// DefaultStreamOptions returns default streaming options
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{
		BufferSize: 100,
	}
}

// WithBufferSize sets the channel buffer size
func WithBufferSize(size int) StreamOption {
	return func(opts *StreamOptions) {
		opts.BufferSize = size
	}
}

// WithProgressHandler sets a progress callback
func WithProgressHandler(handler func(StreamProgress)) StreamOption {
	return func(opts *StreamOptions) {
		opts.ProgressHandler = handler
	}
}

// WithErrorHandler sets an error handler that can decide whether to continue
func WithErrorHandler(handler func(error) bool) StreamOption {
	return func(opts *StreamOptions) {
		opts.ErrorHandler = handler
	}
}

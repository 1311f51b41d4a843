package gochan

// IDFunc is an identity function that returns its input unchanged.
// It's commonly used as a default reduce function for reducers.
func IDFunc[T any](input T) T {
	return input
}

// Message represents a value with optional error and source information.
// Readers and worker pools use it to carry both successful values and
// error conditions through a channel.
type Message[T any] struct {
	Value  T     // The actual value being transmitted
	Error  error // Any error that occurred during processing
	Source any   // Optional source information, e.g. the job that produced it
}

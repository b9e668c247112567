package queue

const (
	// Version is the current version of the queue module.
	Version = "1.0.0"

	// MinCompatibleVersion is the oldest queue module version callers may pair with.
	MinCompatibleVersion = "1.0.0"
)

package log

const (
	// Version is the current version of the log module.
	Version = "1.1.0"

	// MinCompatibleVersion is the oldest log module version callers may pair with.
	MinCompatibleVersion = "1.0.0"
)

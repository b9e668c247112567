package lifecycle

const (
	// Version is the current version of the lifecycle module.
	Version = "2.0.0"

	// MinCompatibleVersion is the oldest lifecycle module version callers may pair with.
	MinCompatibleVersion = "2.0.0"
)

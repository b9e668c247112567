package cycler

const (
	// Version is the current version of the cycler module.
	Version = "1.0.0"

	// MinCompatibleVersion is the oldest cycler module version callers may pair with.
	MinCompatibleVersion = "1.0.0"
)

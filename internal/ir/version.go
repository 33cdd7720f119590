package ir

const (
	// FormatVersion is stamped into harness trace headers.
	FormatVersion = "1"

	// Version is the linkview release version, reported by --version.
	Version = "0.1.0"
)

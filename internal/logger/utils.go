package logger

import (
	"os"
	"path/filepath"
	"strings"
)

// truncateString truncates a string to the specified maximum length.
// If the string is longer than maxLength, it will be truncated and "...truncated" will be appended.
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}

	// Define ellipsis
	const ellipsis = "...truncated"

	// Leave space for the ellipsis
	if maxLength <= len(ellipsis) {
		// Not enough space for ellipsis, just cut
		return s[:maxLength]
	}

	return s[:maxLength-len(ellipsis)] + ellipsis
}

// Variable to allow mocking the host identifier in tests
var hostnameFunc = os.Hostname

// hostIdentifier returns the local hostname, or "unknown".
func hostIdentifier() string {
	name, err := hostnameFunc()
	if err != nil || name == "" {
		return "unknown"
	}
	return name
}

// prefixedPath inserts "<host>_" in front of the file name of path.
func prefixedPath(path, host string) string {
	dir, base := filepath.Split(path)
	if strings.HasPrefix(base, host+"_") {
		return path
	}
	return filepath.Join(dir, host+"_"+base)
}

package webrays

import "fmt"

const (
	versionMajor = 1
	versionMinor = 0
)

// Version returns the host API's (major, minor) version (spec 6 version).
func Version() (int, int) { return versionMajor, versionMinor }

// VersionString returns the human-readable form (spec 6 version_string).
func VersionString() string { return fmt.Sprintf("%d.%d", versionMajor, versionMinor) }

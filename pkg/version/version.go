// Package version holds the build information of the running binary. The
// values are set by the main package.
package version

var (
	// Version is the version of the binary.
	Version = ""

	// CommitSHA is the commit SHA of the binary.
	CommitSHA = ""

	// CommitDate is the commit date of the binary.
	CommitDate = ""
)

// UserAgent returns the User-Agent sent to upstream services.
func UserAgent() string {
	v := Version
	if v == "" {
		v = "unknown"
	}
	return "BearTracks/" + v
}

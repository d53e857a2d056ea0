// Package version carries the build identity stamped into binaries and
// written into output files.
package version

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// WriterInfo is the MRMSWriterInfo global attribute value stamped into
// every written file.
func WriterInfo() string {
	return "rapio-go (version: " + Version + ", build: " + BuildTime + ")"
}

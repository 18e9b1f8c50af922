// Package version records the gateway version reported by the CLI
// and the /version endpoint.
package version

// Version is overridden at release time via -ldflags.
var Version = "0.4.0"

// String returns the full version line
func String() string {
	return "hookspool " + Version
}

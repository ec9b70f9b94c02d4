// Package version exposes the build version stamped in at link time.
package version

// Version is overridden via -ldflags at release build time.
var Version = "dev"

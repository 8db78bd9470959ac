package conf

var (
	// Executable is the name of the built binary
	Executable = "relay"

	// GitVersion is overridden at build time via -ldflags
	GitVersion = "dev"
)

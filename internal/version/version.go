package version

// Set at build time with -ldflags "-X github.com/gabe/rcbt/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

package version

// Set with -ldflags "-X github.com/jingkaihe/p4gate/pkg/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

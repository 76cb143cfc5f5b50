package config

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

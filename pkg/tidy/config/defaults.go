// Package config provides configuration defaults and filesystem
// locations for the tidy duplicate pruner.
package config

// Default configuration values for tidy.
const (
	// DefaultWorkers is the number of concurrent fingerprint workers.
	DefaultWorkers = 8

	// DefaultLogLevel is the logging level when none is configured.
	DefaultLogLevel = "info"
)

// DefaultExclusions contains paths that are never scanned or pruned.
var DefaultExclusions = []string{
	"/proc",
	"/sys",
	"/dev",
}

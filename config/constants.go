package config

import "time"

// Service Constants
const (
	// DefaultBaseURL is the origin of the co-founder service
	DefaultBaseURL = "http://127.0.0.1:8000"

	// DefaultTimeout bounds every request round trip
	DefaultTimeout = 60 * time.Second
)

// Polling Constants
const (
	// DefaultPollInterval is the metrics refresh period
	DefaultPollInterval = 30 * time.Second
)

// Server Constants
const (
	// DefaultListenAddr is where the headless API listens
	DefaultListenAddr = ":8080"

	// ShutdownTimeout bounds graceful HTTP shutdown
	ShutdownTimeout = 10 * time.Second
)

// Storage Constants
const (
	// ArtifactDirName is created under the OS temp dir for local artifacts
	ArtifactDirName = "cofoundr"

	// DefaultPresignExpiry is how long S3 artifact URLs stay valid
	DefaultPresignExpiry = 24 * time.Hour
)

// Events Constants
const (
	// DefaultKafkaTopic receives workflow step events
	DefaultKafkaTopic = "cofoundr.workflow"
)

// Logging Constants
const (
	// DefaultLogLevel is used when no level is configured
	DefaultLogLevel = "info"

	// DefaultLogFile receives logs while the terminal UI owns the screen
	DefaultLogFile = "cofoundr.log"

	// EnvPrefix prefixes every environment override
	EnvPrefix = "COFOUNDR_"
)

// Package consts defines cross-module constants used throughout the application.
package consts

import (
	"sync"
	"time"
)

// ServiceName is the application service name
const ServiceName = "docsynth"

// Project information constants
const (
	// ProjectName is the display name of the project
	ProjectName = "DocSynth"

	// ProjectURL is the repository URL
	ProjectURL = "https://github.com/verustcode/docsynth"
)

// Artifact file name constants
const (
	// ContextFileName holds the tool name and sampled document types
	ContextFileName = "context.json"

	// MetadataSuffix is appended to the document id for the metadata bundle
	MetadataSuffix = "_metadata.json"

	// IssuePlanSuffix is appended to the document id for the planned-issue file
	IssuePlanSuffix = "_issue_plan.json"

	// TOCPrefix is prepended to the normalized document type for the TOC file
	TOCPrefix = "toc_"
)

// Build information - set via ldflags during build or programmatically
var (
	// Version is the application version
	Version = "dev"

	// BuildTime is the build timestamp
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// Run information
var (
	startedAt   time.Time
	startedOnce sync.Once
)

// SetStartedAt records the run start time (can only be called once)
func SetStartedAt(t time.Time) {
	startedOnce.Do(func() {
		startedAt = t
	})
}

// GetStartedAt returns the run start time
func GetStartedAt() time.Time {
	return startedAt
}

// GetUptime returns the duration since the run started
func GetUptime() time.Duration {
	if startedAt.IsZero() {
		return 0
	}
	return time.Since(startedAt)
}

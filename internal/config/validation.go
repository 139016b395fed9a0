// Package config provides configuration management for the application.
// This file contains validation functions for configuration values.
package config

import (
	"fmt"
	"strings"

	"github.com/verustcode/docsynth/pkg/errors"
	"github.com/verustcode/docsynth/pkg/fsname"
)

// Temperature bounds accepted by the generator backends
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// Validate checks the configuration for values the pipeline cannot run with.
// All failures are collected so the user can fix them in one pass.
func (c *Config) Validate() *errors.AppError {
	var failures []string

	if c.Tools.Count <= 0 {
		failures = append(failures, "tools.count must be greater than 0")
	}

	if len(c.Documents.Types) == 0 {
		failures = append(failures, "documents.types must not be empty")
	} else {
		// types share files when their normalized names match
		seen := make(map[string]string, len(c.Documents.Types))
		for _, t := range c.Documents.Types {
			if strings.TrimSpace(t) == "" {
				failures = append(failures, "documents.types must not contain empty entries")
				continue
			}
			name := fsname.Normalize(t)
			if name == "" {
				failures = append(failures, fmt.Sprintf("documents.types entry %q has no filesystem-safe characters", t))
				continue
			}
			if prev, ok := seen[name]; ok {
				failures = append(failures, fmt.Sprintf("documents.types contains duplicate %q (same file name as %q)", t, prev))
				continue
			}
			seen[name] = t
		}
	}
	if c.Documents.PerTool <= 0 || c.Documents.PerTool > len(c.Documents.Types) {
		failures = append(failures, fmt.Sprintf("documents.per_tool must be between 1 and %d", len(c.Documents.Types)))
	}

	if c.Issues.MinPerDocument < 0 {
		failures = append(failures, "issues.min_per_document must not be negative")
	}
	if c.Issues.MaxPerDocument < c.Issues.MinPerDocument {
		failures = append(failures, "issues.max_per_document must be >= issues.min_per_document")
	}
	if c.Issues.InjectionRetries < 1 {
		failures = append(failures, "issues.injection_retries must be at least 1")
	}

	for _, stage := range []string{StageTool, StageTOC, StageSection} {
		s := c.Stage(stage)
		if strings.TrimSpace(s.Model) == "" {
			failures = append(failures, fmt.Sprintf("models.%s must not be empty", stage))
		}
		if strings.TrimSpace(s.Prompt) == "" {
			failures = append(failures, fmt.Sprintf("prompts.%s must not be empty", stage))
		}
		if s.Temperature < MinTemperature || s.Temperature > MaxTemperature {
			failures = append(failures, fmt.Sprintf("generation.temperature.%s must be within [%.0f, %.0f]", stage, MinTemperature, MaxTemperature))
		}
		if s.MaxTokens <= 0 {
			failures = append(failures, fmt.Sprintf("generation.max_tokens.%s must be greater than 0", stage))
		}
	}

	if strings.TrimSpace(c.Output.DataDir) == "" {
		failures = append(failures, "output.data_dir must not be empty")
	}
	if c.Output.Language != "" && !IsValidLanguage(c.Output.Language) {
		failures = append(failures, fmt.Sprintf("output.language %q is not a valid language tag", c.Output.Language))
	}

	switch c.LLM.Provider {
	case "gemini", "mock":
	default:
		failures = append(failures, fmt.Sprintf("llm.provider %q is not supported (gemini, mock)", c.LLM.Provider))
	}
	if c.LLM.Timeout < 0 {
		failures = append(failures, "llm.timeout must not be negative")
	}

	if len(failures) > 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			"invalid configuration: "+strings.Join(failures, "; ")).WithDetails(failures)
	}
	return nil
}

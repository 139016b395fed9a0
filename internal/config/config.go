// Package config provides configuration management for the application.
// It supports YAML configuration files with environment variable overrides.
package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/verustcode/docsynth/consts"
	"github.com/verustcode/docsynth/pkg/errors"
	"github.com/verustcode/docsynth/pkg/logger"
	"github.com/verustcode/docsynth/pkg/telemetry"
)

// Default configuration values
const (
	defaultSeed             = 42
	defaultToolCount        = 3
	defaultPerTool          = 4
	defaultModel            = "gemini-2.5-flash"
	defaultMinIssues        = 2
	defaultMaxIssues        = 3
	defaultInjectionRetries = 3
	defaultDataDir          = "data"
	defaultIndexDB          = "data/index.db"
	defaultLanguage         = "en"
	defaultProvider         = "gemini"
	defaultLLMTimeout       = 120
	defaultOTLPEndpoint     = "localhost:4317"
	defaultPrometheusPort   = 9090
)

// Stage names, used for prompt templates, metrics and request ids
const (
	StageTool    = "tool"
	StageTOC     = "toc"
	StageSection = "section"
)

// DefaultDocumentTypes is the pool document types are sampled from
var DefaultDocumentTypes = []string{
	"Privacy Policy",
	"Terms of Service",
	"Data Processing Agreement",
	"Acceptable Use Policy",
	"Cookie Policy",
	"Service Level Agreement",
	"Security Whitepaper",
	"Compliance & Certifications",
}

// Config represents the complete application configuration
type Config struct {
	Seed       uint64           `yaml:"seed"`
	Tools      ToolsConfig      `yaml:"tools"`
	Documents  DocumentsConfig  `yaml:"documents"`
	Models     StageStrings     `yaml:"models"`
	Prompts    PromptsConfig    `yaml:"prompts"`
	Generation GenerationConfig `yaml:"generation"`
	Issues     IssuesConfig     `yaml:"issues"`
	Output     OutputConfig     `yaml:"output"`
	LLM        LLMConfig        `yaml:"llm"`
	Logging    logger.Config    `yaml:"logging"`
	Telemetry  telemetry.Config `yaml:"telemetry"`
}

// ToolsConfig controls how many synthetic tools are ideated per run
type ToolsConfig struct {
	Count int `yaml:"count"`
}

// DocumentsConfig holds the document type pool
type DocumentsConfig struct {
	Types   []string `yaml:"types"`
	PerTool int      `yaml:"per_tool"` // distinct types sampled per tool
}

// StageStrings holds one string per generation stage
type StageStrings struct {
	Tool    string `yaml:"tool" json:"tool"`
	TOC     string `yaml:"toc" json:"toc"`
	Section string `yaml:"section" json:"section"`
}

// Get returns the value for the named stage
func (s StageStrings) Get(stage string) string {
	switch stage {
	case StageTool:
		return s.Tool
	case StageTOC:
		return s.TOC
	case StageSection:
		return s.Section
	}
	return ""
}

// StageFloats holds one float per generation stage
type StageFloats struct {
	Tool    float64 `yaml:"tool" json:"tool"`
	TOC     float64 `yaml:"toc" json:"toc"`
	Section float64 `yaml:"section" json:"section"`
}

// StageInts holds one int per generation stage
type StageInts struct {
	Tool    int `yaml:"tool" json:"tool"`
	TOC     int `yaml:"toc" json:"toc"`
	Section int `yaml:"section" json:"section"`
}

// PromptsConfig names the template used by each stage
type PromptsConfig struct {
	// Dir is an optional directory whose <name>.tmpl files override the embedded defaults
	Dir     string `yaml:"dir"`
	Tool    string `yaml:"tool"`
	TOC     string `yaml:"toc"`
	Section string `yaml:"section"`
}

// GenerationConfig holds sampling parameters per stage
type GenerationConfig struct {
	Temperature StageFloats `yaml:"temperature"`
	MaxTokens   StageInts   `yaml:"max_tokens"`
}

// IssuesConfig bounds the number of injected issues per document
type IssuesConfig struct {
	MinPerDocument   int `yaml:"min_per_document"`
	MaxPerDocument   int `yaml:"max_per_document"`
	InjectionRetries int `yaml:"injection_retries"` // re-queries allowed per planned section
}

// OutputConfig controls where and how artifacts are written
type OutputConfig struct {
	DataDir        string `yaml:"data_dir"`
	Language       string `yaml:"language"` // ISO 639-1 code, e.g. en, de, zh-cn
	StrictAssembly bool   `yaml:"strict_assembly"`
	IndexDB        string `yaml:"index_db"` // empty disables the SQLite index
}

// LLMConfig selects and configures the generator client
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, mock
	APIKey   string `yaml:"api_key"`
	Timeout  int    `yaml:"timeout"` // seconds
}

// Default returns a default configuration
func Default() *Config {
	types := make([]string, len(DefaultDocumentTypes))
	copy(types, DefaultDocumentTypes)

	return &Config{
		Seed:  defaultSeed,
		Tools: ToolsConfig{Count: defaultToolCount},
		Documents: DocumentsConfig{
			Types:   types,
			PerTool: defaultPerTool,
		},
		Models: StageStrings{
			Tool:    defaultModel,
			TOC:     defaultModel,
			Section: defaultModel,
		},
		Prompts: PromptsConfig{
			Tool:    "tool_ideation",
			TOC:     "toc",
			Section: "section",
		},
		Generation: GenerationConfig{
			Temperature: StageFloats{Tool: 0.9, TOC: 0.4, Section: 0.7},
			MaxTokens:   StageInts{Tool: 400, TOC: 1200, Section: 900},
		},
		Issues: IssuesConfig{
			MinPerDocument:   defaultMinIssues,
			MaxPerDocument:   defaultMaxIssues,
			InjectionRetries: defaultInjectionRetries,
		},
		Output: OutputConfig{
			DataDir:  defaultDataDir,
			Language: defaultLanguage,
			IndexDB:  defaultIndexDB,
		},
		LLM: LLMConfig{
			Provider: defaultProvider,
			Timeout:  defaultLLMTimeout,
		},
		Logging: logger.Config{
			Level:      "info",
			Format:     "text",
			File:       "",
			MaxSize:    100, // Max 100MB per log file
			MaxAge:     7,   // Retain logs for 7 days
			MaxBackups: 5,
			Compress:   false,
		},
		Telemetry: telemetry.Config{
			Enabled:     false,
			ServiceName: consts.ServiceName,
			OTLP: telemetry.OTLPConfig{
				Enabled:  false,
				Endpoint: defaultOTLPEndpoint,
				Insecure: true,
			},
			Prometheus: telemetry.PrometheusConfig{
				Enabled: false,
				Port:    defaultPrometheusPort,
			},
		},
	}
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the process
// environment without overriding variables that are already set.
// Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrap(errors.ErrCodeConfigParse, "failed to load "+p, err)
		}
	}
	return nil
}

// Load loads configuration from a YAML file with environment variable expansion
func Load(path string) (*Config, error) {
	cfg := Default()

	// Read configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeConfigNotFound, "config file not found: "+path, err)
		}
		return nil, errors.Wrap(errors.ErrCodeConfigParse, "failed to read config file", err)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse expands environment variables in data and decodes it over cfg
func Parse(data []byte, cfg *Config) error {
	expanded := expandEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return errors.Wrap(errors.ErrCodeConfigParse, "failed to parse config YAML", err)
	}
	return nil
}

// envPattern matches ${VAR_NAME} and ${VAR_NAME:-default}
var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
// Bare $VAR_NAME is left untouched so prompt text containing dollar signs survives.
func expandEnvVars(content string) string {
	return envPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]

		// Support default values: ${VAR_NAME:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]

		if value := os.Getenv(varName); value != "" {
			return value
		}

		if len(parts) > 1 {
			return parts[1]
		}

		return ""
	})
}

// PromptName returns the template name configured for a stage
func (c *Config) PromptName(stage string) string {
	switch stage {
	case StageTool:
		return c.Prompts.Tool
	case StageTOC:
		return c.Prompts.TOC
	case StageSection:
		return c.Prompts.Section
	}
	return ""
}

// StageSettings groups the generator parameters of a single stage
type StageSettings struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Prompt      string
}

// Stage returns the generator parameters for the named stage
func (c *Config) Stage(stage string) StageSettings {
	s := StageSettings{
		Model:  c.Models.Get(stage),
		Prompt: c.PromptName(stage),
	}
	switch stage {
	case StageTool:
		s.Temperature, s.MaxTokens = c.Generation.Temperature.Tool, c.Generation.MaxTokens.Tool
	case StageTOC:
		s.Temperature, s.MaxTokens = c.Generation.Temperature.TOC, c.Generation.MaxTokens.TOC
	case StageSection:
		s.Temperature, s.MaxTokens = c.Generation.Temperature.Section, c.Generation.MaxTokens.Section
	}
	return s
}

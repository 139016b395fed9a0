// Package main is the entry point for DocSynth.
// DocSynth generates synthetic legal and policy documents for fictitious
// software tools, with a known set of injected issues per document.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verustcode/docsynth/consts"
	"github.com/verustcode/docsynth/internal/check"
	"github.com/verustcode/docsynth/internal/config"
	"github.com/verustcode/docsynth/internal/configfiles"
	"github.com/verustcode/docsynth/internal/database"
	"github.com/verustcode/docsynth/internal/dataset"
	"github.com/verustcode/docsynth/internal/store"
	"github.com/verustcode/docsynth/pkg/logger"
	"github.com/verustcode/docsynth/pkg/telemetry"
)

// Build information - set via ldflags during build
// These variables are linked to consts package for global access
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// init synchronizes build info to consts package for global access
func init() {
	consts.Version = Version
	consts.BuildTime = BuildTime
	consts.GitCommit = GitCommit
}

// defaultConfigPath is used when --config is not given and the file exists
const defaultConfigPath = "config.yaml"

var (
	configPath string
	envFile    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "docsynth",
	Short: "DocSynth - synthetic policy documents with known injected issues",
	Long: `DocSynth invents software tools, writes legal and policy documents for them
section by section, and injects a planned set of issues into each document.
Every document is saved as HTML next to a metadata bundle listing its issues.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a dataset",
	Long: `Generate tools and documents as configured.

Run offline with the built-in mock generator:
  docsynth generate --dry-run --verbose`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [data-dir]",
	Short: "Re-validate a generated dataset",
	Long: `Run the TOC, HTML and issue checks over every document in a dataset directory.
The directory defaults to output.data_dir from the configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example configuration file",
	Long: `Write the example configuration to --config (default: config.yaml).
An existing file is kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", consts.ProjectName, Version)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
	},
}

func init() {
	// Disable auto-generated completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: config.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")

	// Add commands
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Init command flags
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")

	// Generate command flags
	generateCmd.Flags().Bool("dry-run", false, "use the offline mock generator")
	generateCmd.Flags().BoolP("verbose", "v", false, "echo every section and its injected issue")
	generateCmd.Flags().Bool("fail-fast", false, "stop at the first failed document")
	generateCmd.Flags().Uint64("seed", 0, "random seed (overrides config)")
	generateCmd.Flags().String("output", "", "output directory (overrides config)")
	generateCmd.Flags().Int("tools", 0, "number of tools (overrides config)")
	generateCmd.Flags().Bool("debug", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\n[ERROR] %v\n", err)
		os.Exit(dataset.ExitCode(err))
	}
}

// runGenerate generates one dataset
func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override config with command line flags
	if cmd.Flags().Changed("seed") {
		cfg.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		cfg.Output.DataDir = output
	}
	if tools, _ := cmd.Flags().GetInt("tools"); tools > 0 {
		cfg.Tools.Count = tools
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Logging.Level = "debug"
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")
	failFast, _ := cmd.Flags().GetBool("fail-fast")

	if validationErr := cfg.Validate(); validationErr != nil {
		return validationErr
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	consts.SetStartedAt(time.Now())
	logger.Info("Starting DocSynth", zap.String("version", Version), zap.Bool("dry_run", dryRun))

	// Initialize telemetry (OpenTelemetry traces and metrics)
	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			logger.Error("Failed to shutdown telemetry", zap.Error(err))
		}
	}()

	client, err := dataset.NewClient(cfg, dryRun)
	if err != nil {
		return err
	}
	defer client.Close()

	opts := []dataset.Option{
		dataset.WithConsole(dataset.NewConsole(os.Stdout, verbose)),
		dataset.WithFailFast(failFast),
	}

	// The index is optional; a failure to open it is not fatal
	if cfg.Output.IndexDB != "" {
		db, err := database.Open(cfg.Output.IndexDB)
		if err != nil {
			logger.Warn("Dataset index disabled", zap.String("path", cfg.Output.IndexDB), zap.Error(err))
		} else {
			defer closeIndex(db)
			opts = append(opts, dataset.WithStore(store.NewStore(db)))
		}
	}

	pipeline, err := dataset.New(cfg, client, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = pipeline.Run(ctx)
	return err
}

// runValidate checks an existing dataset directory
func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	dir := cfg.Output.DataDir
	if len(args) == 1 {
		dir = args[0]
	}

	checker, err := check.NewChecker(dir, cfg.Issues.MinPerDocument, cfg.Issues.MaxPerDocument)
	if err != nil {
		return err
	}
	report, err := checker.Run()
	if err != nil {
		return err
	}
	report.Print(os.Stdout)
	return report.Err()
}

// runInit writes the example configuration
func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = defaultConfigPath
	}
	force, _ := cmd.Flags().GetBool("force")

	written, err := configfiles.WriteConfigExample(path, force)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if !written {
		fmt.Printf("%s already exists, use --force to overwrite\n", path)
		return nil
	}
	fmt.Printf("✓ Wrote %s\n", path)
	fmt.Println("  Set GEMINI_API_KEY in the environment or a .env file, then run: docsynth generate")
	return nil
}

// loadConfig loads the dotenv file and the YAML configuration, falling back
// to defaults when no config file is given and config.yaml does not exist
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	path := configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err != nil {
			return config.Default(), nil
		}
		path = defaultConfigPath
	}
	return config.Load(path)
}

func closeIndex(db *gorm.DB) {
	if err := database.Close(db); err != nil {
		logger.Warn("Failed to close dataset index", zap.Error(err))
	}
}

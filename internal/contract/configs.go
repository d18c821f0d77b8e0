package contract

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/mlforensics/schema"
)

// Default values for configuration.
const (
	DefaultDevThreshold       = 3
	DefaultCommitThreshold    = 25
	DefaultSourceThreshold    = 0.10
	DefaultBatchSize          = 100
	DefaultCheckpointInterval = 100
	DefaultBranch             = "master"
	DefaultURLColumn          = "url"
	DefaultCloneRoot          = "repos"
	DefaultTrackerFile        = "tracker_completed_repos.csv"
	DefaultBreakdownFile      = "PYTHON_BREAKDOWN.csv"
	DefaultLogFile            = "mining_forensics.log"
	DefaultLogLevel           = "debug"
	DefaultCloneTimeout       = 30 * time.Minute
	DefaultGitTimeout         = 2 * time.Minute
)

// Config holds the runtime configuration for a mining run.
// This struct is the "final, validated" config.
type Config struct {
	InputFile  string
	URLColumn  string
	CloneRoot  string
	RepoPath   string // Existing clone for the inspect command
	Limit      int    // Maximum candidates to evaluate (0 = all)
	KeepClones bool   // Skip deleting rejected clones

	Branch           string
	ExplorationLimit int

	DevThreshold    int
	CommitThreshold int
	SourceThreshold float64

	Keywords            []string
	Excludes            []string
	IgnoreExtensionCase bool

	BatchSize          int
	CheckpointInterval int
	TrackerFile        string
	BreakdownFile      string

	CloneTimeout time.Duration
	GitTimeout   time.Duration

	LogFile  string
	LogLevel string

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	LogFile        string `mapstructure:"log-file"`
	LogLevel       string `mapstructure:"log-level"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunBackend     string `mapstructure:"run-backend"`
	RunDBConnect   string `mapstructure:"run-db-connect"`

	// --- Filter settings shared by mine and inspect ---
	Branch              string  `mapstructure:"branch"`
	ExplorationLimit    int     `mapstructure:"exploration-limit"`
	DevThreshold        int     `mapstructure:"dev-threshold"`
	CommitThreshold     int     `mapstructure:"commit-threshold"`
	SourceThreshold     float64 `mapstructure:"source-threshold"`
	Keywords            string  `mapstructure:"keywords"`
	Exclude             string  `mapstructure:"exclude"`
	IgnoreExtensionCase bool    `mapstructure:"ignore-extension-case"`
	GitTimeout          string  `mapstructure:"git-timeout"`

	// --- Fields from mineCmd.Flags() ---
	Input              string `mapstructure:"input"`
	URLColumn          string `mapstructure:"url-column"`
	CloneRoot          string `mapstructure:"clone-root"`
	Limit              int    `mapstructure:"limit"`
	KeepClones         bool   `mapstructure:"keep-clones"`
	BatchSize          int    `mapstructure:"batch-size"`
	CheckpointInterval int    `mapstructure:"checkpoint-interval"`
	TrackerFile        string `mapstructure:"tracker-file"`
	BreakdownFile      string `mapstructure:"breakdown-file"`
	CloneTimeout       string `mapstructure:"clone-timeout"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateFilterInputs(cfg, input); err != nil {
		return err
	}
	if err := validateRunInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes output, logging and display settings.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.LogFile = input.LogFile
	cfg.LogLevel = input.LogLevel
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	return nil
}

// validateFilterInputs processes the thresholds and matching rules of the pipeline.
func validateFilterInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Branch = strings.TrimSpace(input.Branch)
	if cfg.Branch == "" {
		return fmt.Errorf("branch cannot be empty")
	}

	if input.ExplorationLimit < 0 {
		return fmt.Errorf("exploration-limit cannot be negative (received %d)", input.ExplorationLimit)
	}
	cfg.ExplorationLimit = input.ExplorationLimit

	if input.DevThreshold < 0 {
		return fmt.Errorf("dev-threshold cannot be negative (received %d)", input.DevThreshold)
	}
	cfg.DevThreshold = input.DevThreshold

	if input.CommitThreshold < 0 {
		return fmt.Errorf("commit-threshold cannot be negative (received %d)", input.CommitThreshold)
	}
	cfg.CommitThreshold = input.CommitThreshold

	if input.SourceThreshold < 0 || input.SourceThreshold > 1 {
		return fmt.Errorf("source-threshold must be between 0 and 1 (received %g)", input.SourceThreshold)
	}
	cfg.SourceThreshold = input.SourceThreshold

	cfg.Keywords = SplitList(input.Keywords)
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = append([]string(nil), schema.DefaultKeywords...)
	}
	cfg.Excludes = SplitList(input.Exclude)
	cfg.IgnoreExtensionCase = input.IgnoreExtensionCase

	gitTimeout, err := parseTimeout(input.GitTimeout, DefaultGitTimeout)
	if err != nil {
		return fmt.Errorf("invalid git-timeout: %w", err)
	}
	cfg.GitTimeout = gitTimeout

	cfg.RepoPath = input.RepoPathStr
	return nil
}

// validateRunInputs processes the batch, checkpoint and input list settings of a mining run.
func validateRunInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InputFile = input.Input
	if cfg.InputFile != "" {
		if info, err := os.Stat(cfg.InputFile); err != nil {
			return fmt.Errorf("cannot read input list %q: %w", cfg.InputFile, err)
		} else if info.IsDir() {
			return fmt.Errorf("input list %q is a directory", cfg.InputFile)
		}
	}

	cfg.URLColumn = strings.TrimSpace(input.URLColumn)
	if cfg.URLColumn == "" {
		cfg.URLColumn = DefaultURLColumn
	}
	cfg.CloneRoot = input.CloneRoot
	if cfg.CloneRoot == "" {
		cfg.CloneRoot = DefaultCloneRoot
	}

	if input.Limit < 0 {
		return fmt.Errorf("limit cannot be negative (received %d)", input.Limit)
	}
	cfg.Limit = input.Limit
	cfg.KeepClones = input.KeepClones

	if input.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0 (received %d)", input.BatchSize)
	}
	cfg.BatchSize = input.BatchSize

	if input.CheckpointInterval <= 0 {
		return fmt.Errorf("checkpoint-interval must be greater than 0 (received %d)", input.CheckpointInterval)
	}
	cfg.CheckpointInterval = input.CheckpointInterval

	cfg.TrackerFile = input.TrackerFile
	if cfg.TrackerFile == "" {
		cfg.TrackerFile = DefaultTrackerFile
	}
	cfg.BreakdownFile = input.BreakdownFile
	if cfg.BreakdownFile == "" {
		cfg.BreakdownFile = DefaultBreakdownFile
	}
	if cfg.TrackerFile == cfg.BreakdownFile {
		return fmt.Errorf("tracker-file and breakdown-file must differ (both are %q)", cfg.TrackerFile)
	}

	cloneTimeout, err := parseTimeout(input.CloneTimeout, DefaultCloneTimeout)
	if err != nil {
		return fmt.Errorf("invalid clone-timeout: %w", err)
	}
	cfg.CloneTimeout = cloneTimeout
	return nil
}

// validateBackendConfigs validates cache and run backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Run Backend Validation ---
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if cfg.RunBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return err
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runPath := cfg.RunDBConnect
		if runPath == "" {
			runPath = GetRunDBFilePath()
		}
		if cachePath == runPath {
			return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// parseTimeout parses a Go duration string, using fallback for empty input.
func parseTimeout(s string, fallback time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive (received %s)", s)
	}
	return d, nil
}

// ConfigParams returns the settings recorded alongside a stored run.
func (c *Config) ConfigParams() map[string]any {
	return map[string]any{
		"input":               c.InputFile,
		"branch":              c.Branch,
		"exploration_limit":   c.ExplorationLimit,
		"dev_threshold":       c.DevThreshold,
		"commit_threshold":    c.CommitThreshold,
		"source_threshold":    c.SourceThreshold,
		"keywords":            c.Keywords,
		"batch_size":          c.BatchSize,
		"checkpoint_interval": c.CheckpointInterval,
	}
}

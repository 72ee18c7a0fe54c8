package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "sheetclean/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Rules     RulesConfig     `yaml:"rules" envconfig:"RULES"`
	Cleaning  CleaningConfig  `yaml:"cleaning" envconfig:"CLEANING"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Workers   int             `yaml:"workers" split_words:"true" validate:"min=1,max=64"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig selects the workbooks to process.
type InputConfig struct {
	Dir        string   `yaml:"dir" split_words:"true" validate:"required"`
	Extensions []string `yaml:"extensions" split_words:"true" validate:"required,min=1,dive,startswith=."`
}

// RulesConfig locates the correction rule document.
type RulesConfig struct {
	Path          string `yaml:"path" split_words:"true" validate:"required"`
	WarnUnmatched bool   `yaml:"warn_unmatched" split_words:"true"`
}

// CleaningConfig controls the per-table stages.
type CleaningConfig struct {
	TrimColumns    []string `yaml:"trim_columns" split_words:"true" validate:"dive,required"`
	FillDownColumn string   `yaml:"fill_down_column" split_words:"true"`
	DeriveCountry  bool     `yaml:"derive_country" split_words:"true"`
}

// OutputConfig controls how cleaned tables are written back.
type OutputConfig struct {
	SheetName  string `yaml:"sheet_name" split_words:"true" validate:"required,max=31,excludesall=[]:*?/\\"`
	TableName  string `yaml:"table_name" split_words:"true" validate:"required,max=200,tablename"`
	TableStyle string `yaml:"table_style" split_words:"true" validate:"required"`
	Backup     bool   `yaml:"backup" split_words:"true"`
	DryRun     bool   `yaml:"dry_run" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" split_words:"true" validate:"oneof=json text"`
	Output   string `yaml:"output" split_words:"true" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" validate:"required_unless=Output console"`
}

// TelemetryConfig controls metrics and trace export.
type TelemetryConfig struct {
	// MetricsFile receives the run's metrics in Prometheus text format.
	MetricsFile   string `yaml:"metrics_file" split_words:"true"`
	TraceExporter string `yaml:"trace_exporter" split_words:"true" validate:"oneof=none stdout"`
	// DiagnosticsFile receives every diagnostic of the run as a CSV row.
	DiagnosticsFile string `yaml:"diagnostics_file" split_words:"true"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Dir:        DefaultInputDir,
			Extensions: append([]string(nil), DefaultExtensions...),
		},
		Rules: RulesConfig{
			Path: DefaultRulesFile,
		},
		Cleaning: CleaningConfig{
			TrimColumns:    append([]string(nil), DefaultTrimColumns...),
			FillDownColumn: DefaultFillDownColumn,
			DeriveCountry:  true,
		},
		Output: OutputConfig{
			SheetName:  DefaultSheetName,
			TableName:  DefaultTableName,
			TableStyle: DefaultTableStyle,
		},
		Workers: DefaultWorkers,
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path,
// then SHEETCLEAN_* environment variables. An empty path reads
// DefaultConfigFile when it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, explicit := path, path != ""
	if !explicit {
		file = DefaultConfigFile
	}
	if err := cfg.loadFile(file, explicit); err != nil {
		return nil, err
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile overlays the YAML file onto c. Keys absent from the file keep
// their current values; unknown keys are rejected.
func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return apperrors.NewConfigError("failed to read config file", err).WithContext("path", path)
	}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return apperrors.NewConfigError("failed to parse config file", err).WithContext("path", path)
	}
	return nil
}

var (
	validate     = newValidator()
	tableNameRex = regexp.MustCompile(`^[A-Za-z_\\][A-Za-z0-9_.]*$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("tablename", func(fl validator.FieldLevel) bool {
		return tableNameRex.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks every field and reports all violations in one error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewConfigError("config validation failed", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return apperrors.NewConfigError("config validation failed: "+strings.Join(msgs, "; "), err)
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_unless":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "min", "max":
		return fmt.Sprintf("%s must be %s %s", field, map[string]string{"min": ">=", "max": "<="}[fe.Tag()], fe.Param())
	case "tablename":
		return fmt.Sprintf("%s %q is not a valid Excel table name", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

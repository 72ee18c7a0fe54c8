// Package config provides layered configuration for sheetclean.
//
// # Configuration Sources
//
// Configuration is built in this order, later sources overriding earlier:
//
//  1. Default() values
//  2. YAML file (sheetclean.yaml in the working directory, or --config)
//  3. Environment variables with the SHEETCLEAN_ prefix
//  4. Command-line flags, applied by the CLI
//
// Any option left out of every source keeps its default; a missing option is
// never an error.
//
// # Environment Variables
//
//	SHEETCLEAN_INPUT_DIR=reports
//	SHEETCLEAN_INPUT_EXTENSIONS=.xlsx,.xlsm
//	SHEETCLEAN_RULES_PATH=opravy.json
//	SHEETCLEAN_CLEANING_TRIM_COLUMNS=Location,By
//	SHEETCLEAN_OUTPUT_BACKUP=true
//	SHEETCLEAN_WORKERS=4
//	SHEETCLEAN_LOGGING_LEVEL=debug
//	SHEETCLEAN_TELEMETRY_METRICS_FILE=metrics.prom
//
// # Validation
//
// Validate checks the whole struct with validator tags and reports every
// violation in a single CONFIG error.
package config

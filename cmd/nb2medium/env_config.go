package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-nb2medium/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath      string        // NB2MEDIUM_CONFIG: config file name or path
	Timeout         time.Duration // NB2MEDIUM_TIMEOUT: per-notebook timeout
	Workers         int           // NB2MEDIUM_WORKERS: parallel workers
	TableConversion string        // NB2MEDIUM_TABLE_CONVERSION: chrome, plot, matplotlib
	ChromePath      string        // NB2MEDIUM_CHROME_PATH: browser executable
	OutputDir       string        // NB2MEDIUM_OUTPUT_DIR: output directory
	AssetPath       string        // NB2MEDIUM_ASSET_PATH: custom asset directory
	Publication     string        // NB2MEDIUM_PUBLICATION: publication name
}

// knownEnvVars lists valid NB2MEDIUM_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"NB2MEDIUM_CONFIG":           true,
	"NB2MEDIUM_TIMEOUT":          true,
	"NB2MEDIUM_WORKERS":          true,
	"NB2MEDIUM_TABLE_CONVERSION": true,
	"NB2MEDIUM_CHROME_PATH":      true,
	"NB2MEDIUM_OUTPUT_DIR":       true,
	"NB2MEDIUM_ASSET_PATH":       true,
	"NB2MEDIUM_PUBLICATION":      true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed timeout and worker values are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:      os.Getenv("NB2MEDIUM_CONFIG"),
		TableConversion: os.Getenv("NB2MEDIUM_TABLE_CONVERSION"),
		ChromePath:      os.Getenv("NB2MEDIUM_CHROME_PATH"),
		OutputDir:       os.Getenv("NB2MEDIUM_OUTPUT_DIR"),
		AssetPath:       os.Getenv("NB2MEDIUM_ASSET_PATH"),
		Publication:     os.Getenv("NB2MEDIUM_PUBLICATION"),
	}

	if timeout := os.Getenv("NB2MEDIUM_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("NB2MEDIUM_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs a warning for each unrecognized NB2MEDIUM_* variable.
// Helps catch typos like NB2MEDIUM_WORKER instead of NB2MEDIUM_WORKERS.
func warnUnknownEnvVars(log logrus.FieldLogger) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "NB2MEDIUM_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				log.WithField("variable", name).Warn("unknown environment variable (typo?)")
			}
		}
	}
}

// applyEnvConfig applies environment values on top of the config file.
// Flags are merged afterwards, giving: flags > env > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.TableConversion != "" {
		cfg.Tables.Conversion = env.TableConversion
	}
	if env.ChromePath != "" {
		cfg.Tables.ChromePath = env.ChromePath
	}
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.Publication != "" {
		cfg.Medium.Publication = env.Publication
	}
}

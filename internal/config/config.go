package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-nb2medium/internal/fileutil"
	"github.com/alnah/go-nb2medium/internal/medium"
	"github.com/alnah/go-nb2medium/internal/pipeline"
	"github.com/alnah/go-nb2medium/internal/render"
	"github.com/alnah/go-nb2medium/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidFontSize = errors.New("invalid table font size")
	ErrInvalidURL      = errors.New("invalid canonical url")
)

// Field length limits.
const (
	MaxPublicationLength = 100
	MaxURLLength         = 2048 // Browser limit
	MaxPathLength        = 4096
)

// MaxTableFontSize bounds tables.fontSize; larger values only produce
// oversized screenshots.
const MaxTableFontSize = 72

// AppDir is the directory name under the user config dir searched by LoadConfig.
const AppDir = "go-nb2medium"

// Config holds everything a conversion or a publication can be tuned with.
type Config struct {
	Medium MediumConfig `yaml:"medium"`
	Tables TablesConfig `yaml:"tables"`
	Gist   GistConfig   `yaml:"gist"`
	Output OutputConfig `yaml:"output"`
	Assets AssetsConfig `yaml:"assets"`
}

// MediumConfig defines the post settings.
type MediumConfig struct {
	Publication     string   `yaml:"publication"` // Publication name (empty = the author's own page)
	License         string   `yaml:"license"`
	PublishStatus   string   `yaml:"publishStatus"` // Only "draft"
	NotifyFollowers bool     `yaml:"notifyFollowers"`
	Tags            []string `yaml:"tags"` // At most 5, each at most 25 chars
	CanonicalURL    string   `yaml:"canonicalUrl"`
}

// TablesConfig defines how HTML tables become images.
type TablesConfig struct {
	Conversion string `yaml:"conversion"` // "chrome", "plot" or "matplotlib"
	ChromePath string `yaml:"chromePath"` // Empty = auto-discovery
	FontSize   int    `yaml:"fontSize"`   // 0 = strategy default
	Center     bool   `yaml:"center"`
	LimitCrop  bool   `yaml:"limitCrop"`
}

// GistConfig defines code block externalization.
type GistConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Threshold  int    `yaml:"threshold"`
	Public     bool   `yaml:"public"`
	PerBlock   bool   `yaml:"perBlock"`
	OutputType string `yaml:"outputType"` // "medium" or "hugo"
}

// OutputConfig defines local artifacts.
type OutputConfig struct {
	SaveMarkdown bool   `yaml:"saveMarkdown"` // Write <stem>_medium.md and <title>_files/
	HTML         bool   `yaml:"html"`         // Write a standalone HTML preview
	Dir          string `yaml:"dir"`          // Empty = next to the notebook
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// Validate checks values the pipeline or the publishing service would
// otherwise reject late. Called automatically by LoadConfig.
func (c *Config) Validate() error {
	if err := validateFieldLength("medium.publication", c.Medium.Publication, MaxPublicationLength); err != nil {
		return err
	}
	if err := validateFieldLength("medium.canonicalUrl", c.Medium.CanonicalURL, MaxURLLength); err != nil {
		return err
	}
	if c.Medium.CanonicalURL != "" && !fileutil.IsURL(c.Medium.CanonicalURL) {
		return fmt.Errorf("%w: %q", ErrInvalidURL, c.Medium.CanonicalURL)
	}
	if err := medium.ValidatePost(c.Medium.License, c.Medium.PublishStatus, c.Medium.Tags); err != nil {
		return err
	}

	if _, err := render.ParseConversion(c.Tables.Conversion); err != nil {
		return err
	}
	if err := validateFieldLength("tables.chromePath", c.Tables.ChromePath, MaxPathLength); err != nil {
		return err
	}
	if c.Tables.FontSize < 0 || c.Tables.FontSize > MaxTableFontSize {
		return fmt.Errorf("%w: %d (0 to %d)", ErrInvalidFontSize, c.Tables.FontSize, MaxTableFontSize)
	}

	if err := c.GistOptions("").Validate(); err != nil {
		return err
	}

	if err := validateFieldLength("output.dir", c.Output.Dir, MaxPathLength); err != nil {
		return err
	}
	return validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength)
}

// GistOptions maps the gist section to the segmentation engine options.
func (c *Config) GistOptions(title string) pipeline.GistOptions {
	return pipeline.GistOptions{
		Threshold: c.Gist.Threshold,
		Public:    c.Gist.Public,
		PerBlock:  c.Gist.PerBlock,
		Output:    c.Gist.OutputType,
		Title:     title,
	}
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the settings used when no file is given: a draft
// with all rights reserved, browser tables centered with limited crop, public batch gists
// for blocks longer than five lines but gists disabled.
func DefaultConfig() *Config {
	return &Config{
		Medium: MediumConfig{
			License:       medium.DefaultLicense,
			PublishStatus: medium.StatusDraft,
		},
		Tables: TablesConfig{
			Conversion: render.ConversionChrome,
			Center:     true,
			LimitCrop:  true,
		},
		Gist: GistConfig{
			Threshold:  pipeline.DefaultGistThreshold,
			Public:     true,
			OutputType: pipeline.GistOutputMedium,
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys missing from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists where LoadConfig looks for a config called name:
// the current directory, then ~/.config/go-nb2medium/, each with .yaml
// then .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first of SearchPaths(name) that exists.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

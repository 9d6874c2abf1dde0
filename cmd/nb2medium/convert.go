package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	nb2medium "github.com/alnah/go-nb2medium"
	"github.com/alnah/go-nb2medium/internal/config"
	"github.com/alnah/go-nb2medium/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput        = errors.New("no input specified")
	ErrNoNotebooks    = errors.New("no notebooks found")
	ErrWriteOutput    = errors.New("failed to write output")
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// session is the state every command derives from its flags before
// touching a notebook.
type session struct {
	log     *logrus.Logger
	cfg     *config.Config
	env     *envConfig
	timeout time.Duration
}

// newSession builds the logger, then loads and merges the configuration.
// Everything is validated here, before any rendering or network call.
func newSession(flags *convertFlags, env *Environment) (*session, error) {
	log, err := newCLILogger(env.Stderr, flags.common)
	if err != nil {
		return nil, err
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(log)

	name := flags.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	cfg, err := loadConfig(name)
	if err != nil {
		return nil, err
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout, err := resolveTimeout(flags.timeout, envCfg)
	if err != nil {
		return nil, err
	}

	return &session{log: log, cfg: cfg, env: envCfg, timeout: timeout}, nil
}

// loadConfig loads the named config, or the defaults when name is empty.
func loadConfig(name string) (*config.Config, error) {
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. Only flags given on the command
// line override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	changed := flags.set.Changed

	if changed("table-conversion") {
		cfg.Tables.Conversion = flags.tables.conversion
	}
	if changed("chrome-path") {
		cfg.Tables.ChromePath = flags.tables.chromePath
	}
	if changed("table-font-size") {
		cfg.Tables.FontSize = flags.tables.fontSize
	}
	if changed("center") {
		cfg.Tables.Center = flags.tables.center
	}
	if changed("limit-crop") {
		cfg.Tables.LimitCrop = flags.tables.limitCrop
	}

	if changed("gist") {
		cfg.Gist.Enabled = flags.gist.enabled
	}
	if changed("gist-threshold") {
		cfg.Gist.Threshold = flags.gist.threshold
	}
	if changed("gist-public") {
		cfg.Gist.Public = flags.gist.public
	}
	if changed("gist-per-block") {
		cfg.Gist.PerBlock = flags.gist.perBlock
	}
	if changed("gist-output") {
		cfg.Gist.OutputType = flags.gist.output
	}

	if changed("output") {
		cfg.Output.Dir = flags.output.dir
	}
	if changed("html") {
		cfg.Output.HTML = flags.output.html
	}
	if changed("asset-path") {
		cfg.Assets.BasePath = flags.assetPath
	}
}

// resolveTimeout parses the --timeout flag, falling back to NB2MEDIUM_TIMEOUT.
// Zero means the library default.
func resolveTimeout(flagTimeout string, env *envConfig) (time.Duration, error) {
	if flagTimeout == "" {
		return env.Timeout, nil
	}
	d, err := time.ParseDuration(flagTimeout)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeout, flagTimeout)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s (must be positive)", ErrInvalidTimeout, d)
	}
	return d, nil
}

// converterOptions maps the merged config to converter options.
// Resolves the GitHub token only when gists are enabled.
func (s *session) converterOptions(githubToken string, env *Environment) ([]nb2medium.Option, error) {
	cfg := s.cfg
	opts := []nb2medium.Option{
		nb2medium.WithTableConversion(cfg.Tables.Conversion),
		nb2medium.WithChromePath(cfg.Tables.ChromePath),
		nb2medium.WithTableFontSize(cfg.Tables.FontSize),
		nb2medium.WithCenterTables(cfg.Tables.Center),
		nb2medium.WithLimitCrop(cfg.Tables.LimitCrop),
		nb2medium.WithAssetPath(cfg.Assets.BasePath),
		nb2medium.WithLogger(s.log),
	}
	if s.timeout > 0 {
		opts = append(opts, nb2medium.WithTimeout(s.timeout))
	}

	if cfg.Gist.Enabled {
		token, err := nb2medium.ResolveGistToken(githubToken)
		if err != nil {
			return nil, err
		}
		opts = append(opts, nb2medium.WithGist(env.NewGist(token), cfg.GistOptions("")))
	}

	return append(opts, env.ConverterOptions...), nil
}

// runConvert converts one notebook or every notebook under a directory.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	s, err := newSession(flags, env)
	if err != nil {
		return err
	}

	workers, err := resolveWorkers(flags.workers, s.env)
	if err != nil {
		return err
	}

	if len(positional) == 0 {
		return ErrNoInput
	}
	files, err := discoverNotebooks(positional[0], s.cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("discovering notebooks: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoNotebooks, positional[0])
	}
	if flags.title != "" && len(files) > 1 {
		return fmt.Errorf("%w: --title needs a single notebook, found %d", ErrUsage, len(files))
	}

	opts, err := s.converterOptions(flags.gist.token, env)
	if err != nil {
		return err
	}

	pool := nb2medium.NewConverterPool(nb2medium.ResolvePoolSize(workers), opts...)
	defer pool.Close()
	s.log.WithField("workers", pool.Size()).Debug("converter pool ready")

	results := convertBatch(ctx, pool, files, &outputParams{
		title: flags.title,
		save:  true,
		html:  s.cfg.Output.HTML,
	})

	return reportResults(results, flags.common, env)
}

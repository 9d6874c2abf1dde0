package main

import (
	"context"
	"fmt"

	nb2medium "github.com/alnah/go-nb2medium"
	"github.com/alnah/go-nb2medium/internal/config"
)

// mergeMediumFlags merges post settings flags into config.
func mergeMediumFlags(flags *publishFlags, cfg *config.Config) {
	changed := flags.set.Changed

	if changed("publication") {
		cfg.Medium.Publication = flags.medium.publication
	}
	if changed("license") {
		cfg.Medium.License = flags.medium.license
	}
	if changed("tags") {
		cfg.Medium.Tags = flags.medium.tags
	}
	if changed("canonical-url") {
		cfg.Medium.CanonicalURL = flags.medium.canonicalURL
	}
	if changed("notify-followers") {
		cfg.Medium.NotifyFollowers = flags.medium.notifyFollowers
	}
	if changed("save-markdown") {
		cfg.Output.SaveMarkdown = flags.medium.saveMarkdown
	}
}

// publishOptions maps the medium section of cfg to post options.
func publishOptions(cfg *config.Config, title string) nb2medium.PublishOptions {
	return nb2medium.PublishOptions{
		Publication:     cfg.Medium.Publication,
		Title:           title,
		License:         cfg.Medium.License,
		PublishStatus:   cfg.Medium.PublishStatus,
		NotifyFollowers: cfg.Medium.NotifyFollowers,
		Tags:            cfg.Medium.Tags,
		CanonicalURL:    cfg.Medium.CanonicalURL,
	}
}

// runPublish converts a notebook and posts it to Medium as a draft.
// The token and the publication are checked before converting, so a bad
// setup fails before any table is rendered or gist created.
func runPublish(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parsePublishFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: publish takes exactly one notebook, got %d", ErrUsage, len(positional))
	}
	path := positional[0]
	if err := validateNotebookExtension(path); err != nil {
		return err
	}

	s, err := newSession(&flags.convertFlags, env)
	if err != nil {
		return err
	}
	mergeMediumFlags(flags, s.cfg)
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	opts := publishOptions(s.cfg, flags.title)
	if err := opts.Validate(); err != nil {
		return err
	}

	token, err := nb2medium.ResolveMediumToken(flags.medium.token)
	if err != nil {
		return err
	}
	publisher := nb2medium.NewPublisher(env.NewMedium(token), nb2medium.WithPublisherLogger(s.log))
	if err := publisher.Authenticate(ctx, opts.Publication); err != nil {
		return err
	}

	convOpts, err := s.converterOptions(flags.gist.token, env)
	if err != nil {
		return err
	}
	pool := nb2medium.NewConverterPool(1, convOpts...)
	defer pool.Close()

	f := notebookFile{InputPath: path, OutputDir: resolveOutputDir(path, s.cfg.Output.Dir, "")}
	conv, err := pool.Acquire()
	if err != nil {
		return err
	}
	defer pool.Release(conv)

	result, err := conv.ConvertFile(ctx, path, flags.title)
	if err != nil {
		return err
	}

	out, err := writeOutputs(ctx, conv, result, f, &outputParams{
		save: s.cfg.Output.SaveMarkdown,
		html: s.cfg.Output.HTML,
	})
	if err != nil {
		return err
	}
	if out != "" && !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", out)
	}

	published, err := publisher.Publish(ctx, result, opts)
	if err != nil {
		return err
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Posted %s (%s, %d images, %d gists)\n",
			published.URL, published.PublishStatus, len(published.ImageURLs), len(result.GistURLs))
	}
	return nil
}

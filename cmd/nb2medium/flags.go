package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks malformed command lines.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// tableFlags holds table rendering flags.
type tableFlags struct {
	conversion string
	chromePath string
	fontSize   int
	center     bool
	limitCrop  bool
}

// gistFlags holds code block externalization flags.
type gistFlags struct {
	enabled   bool
	threshold int
	public    bool
	perBlock  bool
	output    string
	token     string
}

// outputFlags holds local artifact flags.
type outputFlags struct {
	dir  string
	html bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common    commonFlags
	workers   int
	timeout   string
	title     string
	assetPath string
	tables    tableFlags
	gist      gistFlags
	output    outputFlags

	// set records which flags were given, so unset ones keep config values.
	set *flag.FlagSet
}

// mediumFlags holds post settings.
type mediumFlags struct {
	publication     string
	license         string
	tags            []string
	canonicalURL    string
	notifyFollowers bool
	token           string
	saveMarkdown    bool
}

// publishFlags holds all flags for the publish command.
type publishFlags struct {
	convertFlags
	medium mediumFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addTableFlags adds table rendering flags to a FlagSet.
func addTableFlags(fs *flag.FlagSet, f *tableFlags) {
	fs.StringVar(&f.conversion, "table-conversion", "", "table strategy: chrome, plot, matplotlib")
	fs.StringVar(&f.chromePath, "chrome-path", "", "browser executable (\"\" = auto-discovery)")
	fs.IntVar(&f.fontSize, "table-font-size", 0, "table font size (0 = strategy default)")
	fs.BoolVar(&f.center, "center", true, "center screenshotted tables")
	fs.BoolVar(&f.limitCrop, "limit-crop", true, "keep crops within 22% of each side")
}

// addGistFlags adds gist flags to a FlagSet.
func addGistFlags(fs *flag.FlagSet, f *gistFlags) {
	fs.BoolVar(&f.enabled, "gist", false, "move long code blocks to GitHub gists")
	fs.IntVar(&f.threshold, "gist-threshold", 0, "line count a block must exceed (default 5)")
	fs.BoolVar(&f.public, "gist-public", true, "create public gists")
	fs.BoolVar(&f.perBlock, "gist-per-block", false, "one gist per code block")
	fs.StringVar(&f.output, "gist-output", "", "gist reference style: medium, hugo")
	fs.StringVar(&f.token, "github-token", "", "GitHub token (default $GITHUB_TOKEN)")
}

// addOutputFlags adds output flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.dir, "output", "o", "", "output directory (\"\" = next to the notebook)")
	fs.BoolVar(&f.html, "html", false, "also write an HTML preview")
}

// addConversionFlags adds the flags convert and publish share.
func addConversionFlags(fs *flag.FlagSet, f *convertFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "conversion timeout per notebook (e.g., 90s, 5m)")
	fs.StringVar(&f.title, "title", "", "article title (\"\" = notebook file name)")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")

	addCommonFlags(fs, &f.common)
	addTableFlags(fs, &f.tables)
	addGistFlags(fs, &f.gist)
	addOutputFlags(fs, &f.output)
}

// addMediumFlags adds post settings flags to a FlagSet.
func addMediumFlags(fs *flag.FlagSet, f *mediumFlags) {
	fs.StringVar(&f.publication, "publication", "", "publication name (\"\" = your own page)")
	fs.StringVar(&f.license, "license", "", "post license (default all-rights-reserved)")
	fs.StringSliceVar(&f.tags, "tags", nil, "comma-separated tags (max 5)")
	fs.StringVar(&f.canonicalURL, "canonical-url", "", "original home of the content")
	fs.BoolVar(&f.notifyFollowers, "notify-followers", false, "notify followers")
	fs.StringVar(&f.token, "integration-token", "", "Medium token (default $MEDIUM_INTEGRATION_TOKEN)")
	fs.BoolVar(&f.saveMarkdown, "save-markdown", false, "also write the markdown and images locally")
}

// newConvertFlagSet registers the convert flags. Parsing and shell
// completion both build on it.
func newConvertFlagSet() (*flag.FlagSet, *convertFlags) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{set: fs}

	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	addConversionFlags(fs, f)
	return fs, f
}

// newPublishFlagSet registers the publish flags.
func newPublishFlagSet() (*flag.FlagSet, *publishFlags) {
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	f := &publishFlags{convertFlags: convertFlags{set: fs}}

	addConversionFlags(fs, &f.convertFlags)
	addMediumFlags(fs, &f.medium)
	return fs, f
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, w io.Writer) (*convertFlags, []string, error) {
	fs, f := newConvertFlagSet()
	fs.SetOutput(w)
	fs.Usage = func() { printConvertUsage(w) }

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parsePublishFlags parses publish command flags and returns positional args.
func parsePublishFlags(args []string, w io.Writer) (*publishFlags, []string, error) {
	fs, f := newPublishFlagSet()
	fs.SetOutput(w)
	fs.Usage = func() { printPublishUsage(w) }

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parse runs fs.Parse, marking errors other than --help as usage errors.
func parse(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

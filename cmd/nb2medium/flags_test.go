package main

// Notes:
// - parseConvertFlags/parsePublishFlags: we test short and long forms and
//   that malformed command lines are usage errors.
// - mergeFlags: we test that only flags given on the command line override
//   config values, including boolean flags set to false.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"io"
	"slices"
	"testing"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-nb2medium/internal/config"
)

// ---------------------------------------------------------------------------
// TestParseConvertFlags - Flag parsing
// ---------------------------------------------------------------------------

func TestParseConvertFlags(t *testing.T) {
	t.Parallel()

	flags, args, err := parseConvertFlags([]string{
		"-w", "3", "-t", "90s", "-o", "out", "-c", "medium", "-q",
		"--table-conversion", "plot", "--gist", "--gist-threshold", "10",
		"--title", "My Post", "notebooks",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parseConvertFlags() error = %v", err)
	}

	if !slices.Equal(args, []string{"notebooks"}) {
		t.Errorf("args = %v", args)
	}
	if flags.workers != 3 || flags.timeout != "90s" || flags.output.dir != "out" {
		t.Errorf("workers=%d timeout=%q output=%q", flags.workers, flags.timeout, flags.output.dir)
	}
	if flags.common.config != "medium" || !flags.common.quiet {
		t.Errorf("common = %+v", flags.common)
	}
	if flags.tables.conversion != "plot" || !flags.gist.enabled || flags.gist.threshold != 10 {
		t.Errorf("tables = %+v gist = %+v", flags.tables, flags.gist)
	}
	if flags.title != "My Post" {
		t.Errorf("title = %q", flags.title)
	}
}

func TestParseConvertFlags_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"unknown flag", []string{"--nope"}, ErrUsage},
		{"bad int", []string{"--workers", "many"}, ErrUsage},
		{"help", []string{"--help"}, flag.ErrHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := parseConvertFlags(tt.args, io.Discard)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParsePublishFlags(t *testing.T) {
	t.Parallel()

	flags, args, err := parsePublishFlags([]string{
		"--publication", "Towards Go", "--tags", "go,python", "--license", "cc-40-by",
		"--integration-token", "tok", "--save-markdown", "nb.ipynb",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parsePublishFlags() error = %v", err)
	}

	if !slices.Equal(args, []string{"nb.ipynb"}) {
		t.Errorf("args = %v", args)
	}
	m := flags.medium
	if m.publication != "Towards Go" || m.license != "cc-40-by" || m.token != "tok" || !m.saveMarkdown {
		t.Errorf("medium = %+v", m)
	}
	if !slices.Equal(m.tags, []string{"go", "python"}) {
		t.Errorf("tags = %v", m.tags)
	}

	if _, _, err := parsePublishFlags([]string{"--workers", "2"}, io.Discard); !errors.Is(err, ErrUsage) {
		t.Errorf("publish should not accept --workers: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - CLI over config
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	t.Run("unset flags keep config", func(t *testing.T) {
		t.Parallel()

		flags, _, err := parseConvertFlags(nil, io.Discard)
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultConfig()
		cfg.Tables.Conversion = "plot"
		cfg.Gist.Threshold = 12
		cfg.Gist.Public = false

		mergeFlags(flags, cfg)

		if cfg.Tables.Conversion != "plot" || cfg.Gist.Threshold != 12 || cfg.Gist.Public {
			t.Errorf("config changed: tables=%+v gist=%+v", cfg.Tables, cfg.Gist)
		}
		if !cfg.Tables.Center || !cfg.Tables.LimitCrop {
			t.Error("boolean defaults should survive an empty command line")
		}
	})

	t.Run("given flags override config", func(t *testing.T) {
		t.Parallel()

		flags, _, err := parseConvertFlags([]string{
			"--table-conversion", "matplotlib", "--chrome-path", "/opt/chrome",
			"--table-font-size", "14", "--center=false", "--limit-crop=false",
			"--gist", "--gist-threshold", "0", "--gist-public=false", "--gist-per-block",
			"--gist-output", "hugo", "-o", "out", "--html", "--asset-path", "assets",
		}, io.Discard)
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultConfig()

		mergeFlags(flags, cfg)

		want := config.TablesConfig{Conversion: "matplotlib", ChromePath: "/opt/chrome", FontSize: 14}
		if cfg.Tables != want {
			t.Errorf("Tables = %+v, want %+v", cfg.Tables, want)
		}
		wantGist := config.GistConfig{Enabled: true, Threshold: 0, PerBlock: true, OutputType: "hugo"}
		if cfg.Gist != wantGist {
			t.Errorf("Gist = %+v, want %+v", cfg.Gist, wantGist)
		}
		if cfg.Output.Dir != "out" || !cfg.Output.HTML || cfg.Assets.BasePath != "assets" {
			t.Errorf("Output = %+v Assets = %+v", cfg.Output, cfg.Assets)
		}
	})
}

func TestMergeMediumFlags(t *testing.T) {
	t.Parallel()

	flags, _, err := parsePublishFlags([]string{"--publication", "Pub", "--notify-followers", "--tags", "go"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.Medium.License = "cc-40-by"

	mergeMediumFlags(flags, cfg)

	if cfg.Medium.Publication != "Pub" || !cfg.Medium.NotifyFollowers || !slices.Equal(cfg.Medium.Tags, []string{"go"}) {
		t.Errorf("Medium = %+v", cfg.Medium)
	}
	if cfg.Medium.License != "cc-40-by" {
		t.Errorf("License = %q, unset flag should keep config", cfg.Medium.License)
	}
}

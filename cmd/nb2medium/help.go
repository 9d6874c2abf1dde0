package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nb2medium <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert notebooks to Medium-ready markdown")
	fmt.Fprintln(w, "  publish    Convert a notebook and post it to Medium as a draft")
	fmt.Fprintln(w, "  doctor     Check browser, tokens and system setup")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'nb2medium help <command>' for details on a specific command.")
}

// printConversionFlags prints the flags convert and publish share.
func printConversionFlags(w io.Writer) {
	fmt.Fprintln(w, "Tables:")
	fmt.Fprintln(w, "      --table-conversion <s>  Strategy: chrome, plot, matplotlib (default chrome)")
	fmt.Fprintln(w, "      --chrome-path <path>    Browser executable (default: auto-discovery)")
	fmt.Fprintln(w, "      --table-font-size <n>   Font size (0 = strategy default)")
	fmt.Fprintln(w, "      --center                Center screenshotted tables (default true)")
	fmt.Fprintln(w, "      --limit-crop            Keep crops within 22% of each side (default true)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Gists:")
	fmt.Fprintln(w, "      --gist                  Move long code blocks to GitHub gists")
	fmt.Fprintln(w, "      --gist-threshold <n>    Lines a block must exceed (default 5)")
	fmt.Fprintln(w, "      --gist-public           Create public gists (default true)")
	fmt.Fprintln(w, "      --gist-per-block        One gist per block instead of one per article")
	fmt.Fprintln(w, "      --gist-output <s>       Reference style: medium, hugo")
	fmt.Fprintln(w, "      --github-token <s>      GitHub token (default $GITHUB_TOKEN)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <dir>          Output directory (default: next to the notebook)")
	fmt.Fprintln(w, "      --html                  Also write an HTML preview")
	fmt.Fprintln(w, "      --title <s>             Article title (default: file name)")
	fmt.Fprintln(w, "      --asset-path <dir>      Directory overriding styles/ and templates/")
	fmt.Fprintln(w, "  -t, --timeout <d>           Per-notebook timeout (e.g., 90s, 5m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show debug logs and timing")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nb2medium convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert notebooks to markdown ready for Medium. Writes <name>_medium.md")
	fmt.Fprintln(w, "and a <title>_files/ image directory for each notebook.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Notebook file or directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Workers:")
	fmt.Fprintln(w, "  -w, --workers <n>           Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	printConversionFlags(w)
}

// printPublishUsage prints usage for the publish command.
func printPublishUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nb2medium publish <notebook> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert a notebook, upload its images and create a Medium draft.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Medium:")
	fmt.Fprintln(w, "      --publication <s>       Publication name (default: your own page)")
	fmt.Fprintln(w, "      --license <s>           Post license (default all-rights-reserved)")
	fmt.Fprintln(w, "      --tags <a,b>            Tags (max 5, 25 chars each)")
	fmt.Fprintln(w, "      --canonical-url <url>   Original home of the content")
	fmt.Fprintln(w, "      --notify-followers      Notify followers")
	fmt.Fprintln(w, "      --integration-token <s> Medium token (default $MEDIUM_INTEGRATION_TOKEN)")
	fmt.Fprintln(w, "      --save-markdown         Also write the markdown and images locally")
	fmt.Fprintln(w)
	printConversionFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "publish":
		printPublishUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: nb2medium doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check browser discovery, tokens and the temp directory.")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: nb2medium version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: nb2medium help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}

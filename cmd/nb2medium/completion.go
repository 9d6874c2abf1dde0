package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"

	nb2medium "github.com/alnah/go-nb2medium"
	"github.com/alnah/go-nb2medium/internal/render"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// Shells lists the supported shells in help order.
var Shells = []Shell{ShellBash, ShellZsh, ShellFish, ShellPowerShell}

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// notebookGlob matches the files convert and publish take.
const notebookGlob = "*" + notebookExt

// flagType represents the completion type for a flag.
type flagType int

const (
	flagValue flagType = iota // free-form value, no completion
	flagBool
	flagEnum // has predefined values
	flagFile // file with glob patterns
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long  string   // --output
	Short string   // -o (empty if none)
	Type  flagType // completion type
	Desc  string   // help text
	Globs []string // for file flags; empty means any file
	Enum  []string // for enum flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name      string
	Desc      string
	Flags     []flagDef
	Notebooks bool     // accepts notebook or directory arguments
	Args      []string // fixed positional values
}

// completionMeta holds completion hints for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Enum  []string
	Globs []string
	File  bool
	Dir   bool
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"table-conversion": {Enum: render.Conversions},
	"gist-output":      {Enum: []string{nb2medium.GistOutputMedium, nb2medium.GistOutputHugo}},
	"license":          {Enum: nb2medium.Licenses},

	"config":      {Globs: []string{"*.yaml", "*.yml"}},
	"chrome-path": {File: true},

	"output":     {Dir: true},
	"asset-path": {Dir: true},
}

// extractFlags converts the flags of fs to completion definitions.
func extractFlags(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{Long: f.Name, Short: f.Shorthand, Desc: f.Usage}
		if f.Value.Type() == "bool" {
			fd.Type = flagBool
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Enum) > 0:
				fd.Type = flagEnum
				fd.Enum = meta.Enum
			case len(meta.Globs) > 0 || meta.File:
				fd.Type = flagFile
				fd.Globs = meta.Globs
			case meta.Dir:
				fd.Type = flagDir
			}
		}
		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	convertSet, _ := newConvertFlagSet()
	publishSet, _ := newPublishFlagSet()

	shells := make([]string, len(Shells))
	for i, s := range Shells {
		shells[i] = string(s)
	}

	return []commandDef{
		{
			Name:      "convert",
			Desc:      "Convert notebooks to Medium-ready markdown",
			Flags:     extractFlags(convertSet),
			Notebooks: true,
		},
		{
			Name:      "publish",
			Desc:      "Convert a notebook and post it as a draft",
			Flags:     extractFlags(publishSet),
			Notebooks: true,
		},
		{
			Name:  "doctor",
			Desc:  "Check browser, tokens and system setup",
			Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "machine-readable output"}},
		},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command", Args: []string{"convert", "publish", "doctor", "version", "completion"}},
		{Name: "completion", Desc: "Generate shell completion script", Args: shells},
	}
}

// GenerateCompletion writes shell completion script to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	cmds := getCommands()

	var script string
	switch shell {
	case ShellBash:
		script = bashScript(cmds)
	case ShellZsh:
		script = zshScript(cmds)
	case ShellFish:
		script = fishScript(cmds)
	case ShellPowerShell:
		script = powerShellScript(cmds)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}

	_, err := io.WriteString(w, script)
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: completion takes one shell, got %d", ErrUsage, len(args))
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nb2medium completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(nb2medium completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(nb2medium completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    nb2medium completion fish > ~/.config/fish/completions/nb2medium.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    nb2medium completion powershell | Out-String | Invoke-Expression")
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func bashScript(cmds []commandDef) string {
	var b strings.Builder

	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}

	b.WriteString("# bash completion for nb2medium\n\n")
	b.WriteString("_nb2medium() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(names, " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"$cmd\" in\n")

	for _, c := range cmds {
		if len(c.Flags) == 0 && len(c.Args) == 0 && !c.Notebooks {
			continue
		}
		fmt.Fprintf(&b, "    %s)\n", c.Name)

		var valueCases []string
		var words []string
		for _, f := range c.Flags {
			words = append(words, "--"+f.Long)
			if f.Short != "" {
				words = append(words, "-"+f.Short)
			}
			if f.Type == flagBool {
				continue
			}
			valueCases = append(valueCases, fmt.Sprintf("        %s) %s; return ;;\n", bashPattern(f), bashValueReply(f)))
		}
		if len(valueCases) > 0 {
			b.WriteString("        case \"$prev\" in\n")
			for _, vc := range valueCases {
				b.WriteString("    " + vc)
			}
			b.WriteString("        esac\n")
		}
		if len(words) > 0 {
			b.WriteString("        if [[ \"$cur\" == -* ]]; then\n")
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(words, " "))
			b.WriteString("            return\n")
			b.WriteString("        fi\n")
		}
		switch {
		case c.Notebooks:
			fmt.Fprintf(&b, "        %s\n", bashFileReply([]string{notebookGlob}))
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(c.Args, " "))
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -F _nb2medium nb2medium\n")
	return b.String()
}

func bashPattern(f flagDef) string {
	if f.Short != "" {
		return "-" + f.Short + "|--" + f.Long
	}
	return "--" + f.Long
}

func bashValueReply(f flagDef) string {
	switch f.Type {
	case flagEnum:
		return fmt.Sprintf("COMPREPLY=($(compgen -W %q -- \"$cur\"))", strings.Join(f.Enum, " "))
	case flagFile:
		return bashFileReply(f.Globs)
	case flagDir:
		return "COMPREPLY=($(compgen -d -- \"$cur\"))"
	}
	return "COMPREPLY=()"
}

// bashFileReply completes files matching globs plus directories to descend into.
func bashFileReply(globs []string) string {
	if len(globs) == 0 {
		return "COMPREPLY=($(compgen -f -- \"$cur\"))"
	}
	parts := make([]string, 0, len(globs)+1)
	for _, g := range globs {
		parts = append(parts, fmt.Sprintf("$(compgen -f -X '!%s' -- \"$cur\")", g))
	}
	parts = append(parts, "$(compgen -d -- \"$cur\")")
	return "COMPREPLY=(" + strings.Join(parts, " ") + ")"
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

func zshScript(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("#compdef nb2medium\n\n")
	b.WriteString("_nb2medium() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshQuote(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    _arguments -C '1: :->command' '*:: :->args'\n\n")
	b.WriteString("    case $state in\n")
	b.WriteString("    command)\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        ;;\n")
	b.WriteString("    args)\n")
	b.WriteString("        case $words[1] in\n")

	for _, c := range cmds {
		if len(c.Flags) == 0 && len(c.Args) == 0 && !c.Notebooks {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		b.WriteString("            _arguments")
		for _, f := range c.Flags {
			b.WriteString(" \\\n                " + zshFlagSpec(f))
		}
		switch {
		case c.Notebooks:
			fmt.Fprintf(&b, " \\\n                '*:notebook:_files -g \"%s\"'", notebookGlob)
		case len(c.Args) > 0:
			fmt.Fprintf(&b, " \\\n                '1:argument:(%s)'", strings.Join(c.Args, " "))
		}
		b.WriteString("\n            ;;\n")
	}

	b.WriteString("        esac\n")
	b.WriteString("        ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _nb2medium nb2medium\n")
	return b.String()
}

func zshFlagSpec(f flagDef) string {
	desc := "[" + zshQuote(f.Desc) + "]"
	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = ":value:(" + strings.Join(f.Enum, " ") + ")"
	case flagFile:
		if len(f.Globs) == 0 {
			action = ":file:_files"
		} else {
			action = ":file:_files -g \"" + strings.Join(f.Globs, " ") + "\""
		}
	case flagDir:
		action = ":directory:_files -/"
	default:
		action = ":value: "
	}

	if f.Short != "" {
		return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
	}
	return fmt.Sprintf("'--%s%s%s'", f.Long, desc, action)
}

var zshReplacer = strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)

func zshQuote(s string) string { return zshReplacer.Replace(s) }

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

func fishScript(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("# fish completion for nb2medium\n\n")
	b.WriteString("complete -c nb2medium -f\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c nb2medium -n '__fish_use_subcommand' -a %s -d '%s'\n", c.Name, fishQuote(c.Desc))
	}

	for _, c := range cmds {
		cond := "-n '__fish_seen_subcommand_from " + c.Name + "'"
		if len(c.Flags) > 0 || len(c.Args) > 0 || c.Notebooks {
			b.WriteString("\n")
		}
		for _, f := range c.Flags {
			line := "complete -c nb2medium " + cond
			if f.Short != "" {
				line += " -s " + f.Short
			}
			line += " -l " + f.Long + " -d '" + fishQuote(f.Desc) + "'"
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += " -x -a '" + strings.Join(f.Enum, " ") + "'"
			case flagFile:
				line += " -r " + fishFileArgs(f.Globs)
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			default:
				line += " -x"
			}
			b.WriteString(line + "\n")
		}
		switch {
		case c.Notebooks:
			fmt.Fprintf(&b, "complete -c nb2medium %s %s\n", cond, fishFileArgs([]string{notebookGlob}))
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "complete -c nb2medium %s -x -a '%s'\n", cond, strings.Join(c.Args, " "))
		}
	}
	return b.String()
}

func fishFileArgs(globs []string) string {
	if len(globs) == 0 {
		return "-F"
	}
	calls := make([]string, len(globs))
	for i, g := range globs {
		calls[i] = "__fish_complete_suffix " + strings.TrimPrefix(g, "*")
	}
	return "-a '(" + strings.Join(calls, "; ") + ")'"
}

func fishQuote(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func powerShellScript(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("# PowerShell completion for nb2medium\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName nb2medium -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")

	b.WriteString("    $commands = @{\n")
	for _, c := range cmds {
		var words []string
		for _, f := range c.Flags {
			words = append(words, "'--"+f.Long+"'")
		}
		for _, a := range c.Args {
			words = append(words, "'"+a+"'")
		}
		fmt.Fprintf(&b, "        '%s' = @(%s)\n", c.Name, strings.Join(words, ", "))
	}
	b.WriteString("    }\n")

	var notebookCmds []string
	for _, c := range cmds {
		if c.Notebooks {
			notebookCmds = append(notebookCmds, "'"+c.Name+"'")
		}
	}
	slices.Sort(notebookCmds)
	fmt.Fprintf(&b, "    $notebookCommands = @(%s)\n\n", strings.Join(notebookCmds, ", "))

	b.WriteString(`    $elements = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })
    if ($elements.Count -lt 2 -or ($elements.Count -eq 2 -and $wordToComplete -ne '')) {
        $commands.Keys | Where-Object { $_ -like "$wordToComplete*" } | Sort-Object | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
        }
        return
    }

    $cmd = $elements[1]
    if (-not $commands.ContainsKey($cmd)) {
        return
    }
    if ($wordToComplete -like '-*' -or $cmd -notin $notebookCommands) {
        $commands[$cmd] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_)
        }
        return
    }

    Get-ChildItem -Path "$wordToComplete*" -ErrorAction SilentlyContinue |
        Where-Object { $_.PSIsContainer -or $_.Extension -eq '`)
	b.WriteString(notebookExt)
	b.WriteString(`' } |
        ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ProviderItem', $_.Name)
        }
}
`)
	return b.String()
}

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlop3z/nocstudio/internal/cli"
)

// CommandInfo is one line of the root help.
type CommandInfo struct {
	Name string
	Desc string
}

// CommandCategory groups commands in the root help.
type CommandCategory struct {
	Title    string
	Commands []CommandInfo
}

var helpCategories = []CommandCategory{
	{
		Title: "Setup",
		Commands: []CommandInfo{
			{"init", "Create nocstudio.yaml and the state directory"},
			{"cache", "List, forget or clear stored baselines"},
		},
	},
	{
		Title: "Entities",
		Commands: []CommandInfo{
			{"import", "Merge DBML tables into the current set"},
			{"scan", "Read an existing project as the baseline"},
			{"parse-source", "Parse entity classes from a file or stdin"},
			{"entity", "Add, remove or list entities"},
			{"watch", "Re-parse a DBML file on every save"},
		},
	},
	{
		Title: "Changes",
		Commands: []CommandInfo{
			{"status", "Show added/modified/removed entities"},
			{"browse", "Explore entities and changes interactively"},
		},
	},
	{
		Title: "Generation",
		Commands: []CommandInfo{
			{"commands", "Print the nocsharp commands"},
			{"apply", "Run the commands one at a time"},
			{"runs", "Show the run journal"},
		},
	},
}

var helpFlags = []struct{ flag, desc string }{
	{"-c, --config", "Path to config file (default: nocstudio.yaml)"},
	{"    --state-dir", "State directory (default: .nocstudio)"},
	{"    --project-dir", "Generator project directory"},
	{"    --verbose", "Debug logging on stderr"},
	{"-h, --help", "Show help information"},
	{"-v, --version", "Show version information"},
}

// customHelp displays the grouped help for the root command.
func customHelp(cmd *cobra.Command) {
	renderCategoryHelp(cmd.OutOrStdout(),
		"nocstudio - entity studio for nocsharp",
		"Reconcile DBML schemas and existing projects, then scaffold.",
		helpCategories)
}

func renderCategoryHelp(w io.Writer, title, subtitle string, categories []CommandCategory) {
	width := 0
	for _, c := range categories {
		for _, info := range c.Commands {
			if len(info.Name) > width {
				width = len(info.Name)
			}
		}
	}

	fmt.Fprintln(w, cli.Header(title))
	fmt.Fprintln(w, cli.Dim(subtitle))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s nocstudio <command> [flags]\n\n", cli.Header("Usage:"))

	for _, c := range categories {
		fmt.Fprintln(w, cli.Success(c.Title))
		for _, info := range c.Commands {
			fmt.Fprintf(w, "  %s%s  %s\n", info.Name, strings.Repeat(" ", width-len(info.Name)), info.Desc)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, cli.Success("Global Flags"))
	for _, f := range helpFlags {
		fmt.Fprintf(w, "  %-16s %s\n", f.flag, f.desc)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.Dim(`Run "nocstudio <command> --help" for details.`))
}

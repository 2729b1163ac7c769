// Package main provides the nocstudio CLI.
//
// nocstudio keeps a set of entity definitions, recovered from DBML schema
// files or from an existing generator project, and turns them into
// "nocsharp" scaffolding commands.
//
// Usage:
//
//	nocstudio init                        # Create nocstudio.yaml and .nocstudio/
//	nocstudio import schema.dbml          # Merge DBML tables into the current set
//	nocstudio scan ./Shop                 # Read Domain/Entities/*Entity.cs as the baseline
//	nocstudio status --details            # Added/modified/removed vs the baseline
//	nocstudio commands --cd               # Print the generator commands
//	nocstudio apply --on-error abort      # Run them one at a time
//	nocstudio runs                        # Show the run journal
//	nocstudio cache forget ./Shop         # Drop a stored baseline
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlop3z/nocstudio/internal/cli"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// Global flags
var (
	configFile string
	noColor    bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nocstudio",
		Short:         "Manage entity definitions and generate nocsharp commands",
		Long:          `nocstudio reconciles entity definitions from DBML schemas and existing generator projects, and emits the nocsharp commands that scaffold them.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				cli.SetDefault(cli.NewConfigWithMode(cli.ModePlain))
			}
		},
	}

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			desc := cmd.Long
			if desc == "" {
				desc = cmd.Short
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s", desc, cmd.UsageString())
			return
		}
		customHelp(cmd)
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", DefaultConfigFile, "Path to config file")
	pf.String("project-name", "", "Generator project name")
	pf.String("project-dir", "", "Generator project directory")
	pf.Bool("existing", false, "Treat the project directory as an existing project")
	pf.String("state-dir", "", "State directory (default .nocstudio)")
	pf.Bool("order-insensitive", false, "Ignore property order when detecting changes")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.Bool("verbose", false, "Shorthand for --log-level debug")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		initCmd(),
		importCmd(),
		scanCmd(),
		parseSourceCmd(),
		entityCmd(),
		statusCmd(),
		commandsCmd(),
		applyCmd(),
		runsCmd(),
		cacheCmd(),
		watchCmd(),
		browseCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprint(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}

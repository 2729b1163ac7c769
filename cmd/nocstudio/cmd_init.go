package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hlop3z/nocstudio/internal/cli"
	"github.com/hlop3z/nocstudio/internal/workspace"
)

// initCmd creates the config file and state directory.
func initCmd() *cobra.Command {
	var projectName string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create nocstudio.yaml and the state directory",
		Long: `Create nocstudio.yaml in the current directory and initialize the state
directory (.nocstudio by default) with an empty entity set and run journal.
An existing config file is left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if projectName == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				projectName = filepath.Base(wd)
			}

			stateDir, _ := cmd.Flags().GetString("state-dir")
			if stateDir == "" {
				stateDir = workspace.DefaultDir
			}

			if _, err := os.Stat(configFile); os.IsNotExist(err) {
				content := fmt.Sprintf(configTemplate, projectName, stateDir)
				if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
					return fmt.Errorf("failed to create %s: %w", configFile, err)
				}
				fmt.Fprint(out, cli.FormatSuccess("Created "+configFile))
			} else {
				fmt.Fprintln(out, cli.Dim(configFile+" already exists"))
			}

			s, _, err := newSession(cmd.Flags())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Save(); err != nil {
				return err
			}
			fmt.Fprint(out, cli.FormatSuccess("Initialized "+s.StatePath()))
			fmt.Fprintln(out)
			fmt.Fprintln(out, cli.Header("Next steps:"))
			fmt.Fprintln(out, "  nocstudio import schema.dbml")
			fmt.Fprintln(out, "  nocstudio commands --cd")
			return nil
		},
	}

	cmd.Flags().StringVar(&projectName, "name", "", "Project name written to the config (default: current directory name)")
	return cmd
}

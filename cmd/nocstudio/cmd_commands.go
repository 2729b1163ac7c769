package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/nocstudio/internal/cli"
)

// commandsCmd prints the generator commands for the current set.
func commandsCmd() *cobra.Command {
	var (
		withDir    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "commands",
		Short: "Print the nocsharp commands",
		Long: `Print one "nocsharp s" command per entity in the current set. Entities
marked keep are skipped for an existing project.

With --cd the full plan is printed: every command changes into the project
directory first, and a "nocsharp new" command leads when the project does not
exist yet. This is exactly what apply runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := newSession(cmd.Flags())
			if err != nil {
				return err
			}
			defer s.Close()

			cmds := s.Commands()
			if withDir {
				cmds = s.Plan()
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if cmds == nil {
					cmds = []string{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cmds)
			}

			if len(cmds) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), cli.Dim("No commands to generate."))
				return nil
			}
			for _, c := range cmds {
				fmt.Fprintln(out, c)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withDir, "cd", false, "Prefix commands with the project directory")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

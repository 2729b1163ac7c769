package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlop3z/nocstudio/internal/cli"
	"github.com/hlop3z/nocstudio/internal/command"
	"github.com/hlop3z/nocstudio/internal/csharp"
	"github.com/hlop3z/nocstudio/internal/entity"
)

// parseSourceCmd parses entity classes without touching the state.
func parseSourceCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "parse-source [file|-]",
		Short: "Parse entity classes from a file or stdin",
		Long: `Parse C# entity classes (class XEntity : BaseEntity) and print the
entities and properties found. Reads stdin when the argument is "-" or omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}

			var (
				data []byte
				err  error
			)
			if path == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(path)
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			var entities []entity.Entity
			if path == "-" {
				entities = csharp.ParseEntities(string(data))
			} else {
				entities = csharp.ParseFile(path, string(data))
			}
			return printEntities(cmd.OutOrStdout(), entities, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// printEntities lists entities with their scaffold fields, or as JSON.
func printEntities(w io.Writer, entities []entity.Entity, jsonOutput bool) error {
	if jsonOutput {
		if entities == nil {
			entities = []entity.Entity{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entities)
	}

	if len(entities) == 0 {
		fmt.Fprintln(w, cli.Dim("No entities found."))
		return nil
	}
	for _, e := range entities {
		name := cli.Header(e.Name)
		if e.BaseSkip {
			name += " " + cli.Dim(command.BaseSkipFlag)
		}
		fmt.Fprintln(w, name)
		for _, p := range e.Properties {
			fmt.Fprintf(w, "  %s\n", command.FormatField(p))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.Dim(cli.FormatCount(len(entities), "entity", "entities")))
	return nil
}

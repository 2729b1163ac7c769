package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hlop3z/nocstudio/internal/cli"
	"github.com/hlop3z/nocstudio/internal/entity"
	"github.com/hlop3z/nocstudio/internal/merge"
	"github.com/hlop3z/nocstudio/internal/ui"
	"github.com/hlop3z/nocstudio/pkg/nocstudio"
)

// importCmd merges DBML tables into the current entity set.
func importCmd() *cobra.Command {
	var (
		replace     bool
		keep        []string
		overwrite   []string
		all         string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.dbml>",
		Short: "Merge DBML tables into the current set",
		Long: `Parse a DBML file and merge its tables into the current entity set.

Tables whose name already exists replace the existing definition in place.
For an existing project, each such name also needs a decision: keep skips its
command, overwrite regenerates it.`,
		Example: `  nocstudio import schema.dbml
  nocstudio import schema.dbml --keep User --overwrite Post
  nocstudio import schema.dbml --all keep
  nocstudio import schema.dbml --replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			s, _, err := newSession(cmd.Flags())
			if err != nil {
				return err
			}
			defer s.Close()

			opts := []nocstudio.ImportOption{
				nocstudio.Decide(merge.Keep, keep...),
				nocstudio.Decide(merge.Overwrite, overwrite...),
			}
			if replace {
				opts = append(opts, nocstudio.Replace())
			}
			if all != "" {
				d, err := merge.ParseDecision(all)
				if err != nil {
					return err
				}
				opts = append(opts, nocstudio.DecideAll(d))
			}
			if interactive && ui.IsTerminal() {
				opts = append(opts, nocstudio.ResolveWith(promptOverwrites(ui.Stdio())))
			}

			res, err := s.ImportDBMLFile(args[0], opts...)
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				fmt.Fprint(cmd.ErrOrStderr(), cli.FormatWarning(w))
			}

			if err := s.Save(); err != nil {
				return err
			}
			printImport(out, res, s.Choices())
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Discard the current set instead of merging into it")
	cmd.Flags().StringSliceVar(&keep, "keep", nil, "Keep the existing definition of these entities")
	cmd.Flags().StringSliceVar(&overwrite, "overwrite", nil, "Overwrite these entities")
	cmd.Flags().StringVar(&all, "all", "", "Decision for every remaining duplicate: keep or overwrite")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Ask about each duplicate")
	return cmd
}

// promptOverwrites adapts the prompter to the import resolver.
func promptOverwrites(p *ui.Prompter) func([]string) (merge.Choices, error) {
	return func(names []string) (merge.Choices, error) {
		dups := make([]entity.Entity, len(names))
		for i, n := range names {
			dups[i] = entity.Entity{Name: n}
		}
		return p.ResolveOverwrites(dups, merge.Choices{})
	}
}

func printImport(w io.Writer, res *nocstudio.ImportResult, choices merge.Choices) {
	fmt.Fprint(w, cli.FormatSuccess(fmt.Sprintf("Imported %s from %s",
		cli.FormatCount(len(res.Entities), "entity", "entities"), cli.FilePath(res.Source))))

	if len(res.Duplicates) == 0 {
		return
	}

	list := cli.NewList()
	for _, name := range res.Duplicates {
		switch d := choices.Get(name); d {
		case merge.Unspecified:
			list.AddWarning(name + " " + cli.Dim("(undecided)"))
		default:
			list.Add(name + " " + cli.Dim("("+d.String()+")"))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.Section("Already existed", list.String()))
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlop3z/nocstudio/internal/alerr"
	"github.com/hlop3z/nocstudio/internal/cli"
	"github.com/hlop3z/nocstudio/internal/command"
	"github.com/hlop3z/nocstudio/internal/merge"
	"github.com/hlop3z/nocstudio/internal/strutil"
)

// entityCmd groups the entity editing subcommands.
func entityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Add, remove or list entities",
	}
	cmd.AddCommand(entityAddCmd(), entityRmCmd(), entityListCmd(), entityDecideCmd())
	return cmd
}

func entityAddCmd() *cobra.Command {
	var baseSkip bool

	cmd := &cobra.Command{
		Use:   "add <Name> [field:Type ...]",
		Short: "Add an entity to the current set",
		Example: `  nocstudio entity add Order Total:decimal Lines:List<OrderLine>
  nocstudio entity add AuditLog Message:string --base-skip`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := newSession(cmd.Flags())
			if err != nil {
				return err
			}
			defer s.Close()

			e, err := s.AddEntity(args[0], args[1:], baseSkip)
			if err != nil {
				return err
			}
			if err := s.Save(); err != nil {
				return err
			}

			for _, w := range s.TypeWarnings(e) {
				fmt.Fprint(cmd.ErrOrStderr(), cli.FormatWarning(w))
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, cli.FormatSuccess("Added "+e.Name))
			fmt.Fprintln(out, cli.Dim(command.Scaffold(e)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&baseSkip, "base-skip", false, "Skip base entity boilerplate for this entity")
	return cmd
}

func entityRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <Name>...",
		Aliases: []string{"remove"},
		Short:   "Remove entities from the current set",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := newSession(cmd.Flags())
			if err != nil {
				return err
			}
			defer s.Close()

			for _, name := range args {
				if err := s.RemoveEntity(name); err != nil {
					return err
				}
			}
			if err := s.Save(); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.FormatSuccess("Removed "+cli.FormatCount(len(args), "entity", "entities")))
			return nil
		},
	}
}

func entityListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the current entity set",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := newSession(cmd.Flags())
			if err != nil {
				return err
			}
			defer s.Close()
			return printEntities(cmd.OutOrStdout(), s.Entities(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func entityDecideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decide <Name[,Name...]> <keep|overwrite|unspecified>",
		Short: "Record the overwrite decision for entities",
		Long: `Record whether entities that already exist in the project should be
kept (their commands are skipped) or overwritten. Several names may be given
as a comma-separated list.`,
		Example: `  nocstudio entity decide Customer keep
  nocstudio entity decide Order,Product overwrite`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := merge.ParseDecision(args[1])
			if err != nil {
				return err
			}
			names := strutil.SplitList(args[0])
			if len(names) == 0 {
				return alerr.New(alerr.ErrInvalidIdentifier, "no entity name given").
					WithHelp("pass a name or a comma-separated list of names")
			}

			s, _, err := newSession(cmd.Flags())
			if err != nil {
				return err
			}
			defer s.Close()

			for _, name := range names {
				if _, err := s.Entity(name); err != nil {
					return err
				}
			}
			for _, name := range names {
				s.SetDecision(name, d)
			}
			if err := s.Save(); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s: %s", strings.Join(names, ", "), d)))
			return nil
		},
	}
}

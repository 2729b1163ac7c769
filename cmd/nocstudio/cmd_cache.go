package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hlop3z/nocstudio/internal/cli"
	"github.com/hlop3z/nocstudio/pkg/nocstudio"
)

// cacheCmd inspects and prunes the baseline cache and run journal.
func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the baseline cache",
		Long: `Show the scanned baselines stored in the state directory. "forget" drops
the baseline of one project so its entities count as added again; "clear"
removes every baseline and the whole run journal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *nocstudio.Session) error {
				return listBaselines(cmd.OutOrStdout(), s)
			})
		},
	}
	cmd.AddCommand(cacheListCmd(), cacheForgetCmd(), cacheClearCmd())
	return cmd
}

func cacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored baselines",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *nocstudio.Session) error {
				return listBaselines(cmd.OutOrStdout(), s)
			})
		},
	}
}

func cacheForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <project-dir>",
		Short: "Drop the stored baseline of one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *nocstudio.Session) error {
				if err := s.ForgetBaseline(args[0]); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), cli.FormatSuccess("Forgot baseline of "+args[0]))
				return nil
			})
		},
	}
}

func cacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every baseline and journaled run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *nocstudio.Session) error {
				if err := s.ClearCache(); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), cli.FormatSuccess("Cache cleared."))
				return nil
			})
		},
	}
}

// withSession opens a session from the command's flags and closes it after fn.
func withSession(cmd *cobra.Command, fn func(s *nocstudio.Session) error) error {
	s, _, err := newSession(cmd.Flags())
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func listBaselines(w io.Writer, s *nocstudio.Session) error {
	baselines, err := s.Baselines()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, cli.FormatKeyValue("cache", s.CachePath()))
	if len(baselines) == 0 {
		fmt.Fprintln(w, cli.Dim("No baselines stored."))
		return nil
	}

	table := cli.NewTable("PROJECT", "ENTITIES", "ROOT", "SCANNED")
	for _, b := range baselines {
		root := ""
		if b.Hash != nil {
			root = shortHash(b.Hash.Root)
		}
		table.AddRow(b.Project, fmt.Sprint(len(b.Entities)), root, b.ScannedAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprint(w, table.String())
	return nil
}

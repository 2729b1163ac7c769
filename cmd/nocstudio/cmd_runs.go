package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlop3z/nocstudio/internal/cache"
	"github.com/hlop3z/nocstudio/internal/cli"
	"github.com/hlop3z/nocstudio/internal/strutil"
)

// runsCmd lists journaled runs, or shows one.
func runsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "Show the run journal",
		Long: `List recorded apply runs, newest first. With an ID (or a unique ID prefix)
show every command of that run with its output or error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := newSession(cmd.Flags())
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				rec, err := s.Run(args[0])
				if err != nil {
					return err
				}
				printRun(out, rec)
				return nil
			}

			runs, err := s.Runs(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, cli.Dim("No runs recorded."))
				return nil
			}

			table := cli.NewTable("ID", "STARTED", "MODE", "RESULT", "PROJECT")
			for _, r := range runs {
				table.AddRow(shortHash(r.ID), r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Mode, runResult(r), r.Project)
			}
			fmt.Fprint(out, table.String())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}

func runResult(r *cache.RunRecord) string {
	switch {
	case r.Aborted:
		return cli.Error(fmt.Sprintf("aborted %d/%d", r.Failed, r.Total))
	case r.Failed > 0:
		return cli.Warning(fmt.Sprintf("%d/%d failed", r.Failed, r.Total))
	}
	return cli.Success(fmt.Sprintf("%d ok", r.Total))
}

func printRun(w io.Writer, r *cache.RunRecord) {
	fmt.Fprintln(w, cli.FormatKeyValue("run", r.ID))
	fmt.Fprintln(w, cli.FormatKeyValue("project", r.Project))
	fmt.Fprintln(w, cli.FormatKeyValue("mode", r.Mode))
	fmt.Fprintln(w, cli.FormatKeyValue("started", r.StartedAt.Local().Format("2006-01-02 15:04:05")))
	fmt.Fprintln(w, cli.FormatKeyValue("duration", cli.FormatDuration(r.FinishedAt.Sub(r.StartedAt))))
	fmt.Fprintln(w, cli.FormatKeyValue("result", runResult(r)))
	fmt.Fprintln(w)

	for _, c := range r.Commands {
		marker := cli.Success("ok")
		if c.Error != "" {
			marker = cli.Error("x")
		}
		fmt.Fprintf(w, "  %s [%d] %s %s\n", marker, c.Seq, c.Command, cli.Dim(cli.FormatDuration(c.Duration)))
		detail := c.Output
		if c.Error != "" {
			detail = c.Error
		}
		var piped []string
		for _, line := range strings.Split(strings.TrimRight(detail, "\n"), "\n") {
			if line != "" {
				piped = append(piped, cli.Pipe()+" "+line)
			}
		}
		if len(piped) > 0 {
			fmt.Fprintln(w, strutil.Indent(strings.Join(piped, "\n"), 6))
		}
	}
	if skipped := r.Total - len(r.Commands); skipped > 0 {
		fmt.Fprintln(w, cli.Dim(fmt.Sprintf("  %d not run", skipped)))
	}
}

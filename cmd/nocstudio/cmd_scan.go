package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlop3z/nocstudio/internal/cli"
	"github.com/hlop3z/nocstudio/internal/entity"
	"github.com/hlop3z/nocstudio/pkg/nocstudio"
)

// scanCmd reads an existing generator project as the baseline.
func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Read an existing project as the baseline",
		Long: `Read every *Entity.cs file below the project directory and record the
entities found as the baseline for change detection.

Without a directory argument the configured project directory is used, and
failing that you are asked for one. Entities found in the project but not in
the current set are added to it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			s, _, err := newSession(cmd.Flags())
			if err != nil {
				return err
			}
			defer s.Close()

			var dir string
			if len(args) == 1 {
				dir = args[0]
			}

			spinner := cli.NewSpinner("Scanning project...")
			spinner.Start()
			res, err := s.Scan(cmd.Context(), dir)
			if err != nil {
				spinner.StopWithError("Scan failed")
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("Scanned %s in %s",
				cli.FormatCount(len(res.Files), "file", "files"), res.Root))

			for _, w := range res.Warnings {
				fmt.Fprint(cmd.ErrOrStderr(), cli.FormatError(w))
			}

			if err := s.Save(); err != nil {
				return err
			}
			printScan(out, res)
			return nil
		},
	}
	return cmd
}

func printScan(w io.Writer, res *nocstudio.ScanResult) {
	table := cli.NewTable("ENTITY", "PROPERTIES", "FILE")
	for _, e := range entity.WithoutBase(res.Entities) {
		table.AddRow(e.Name, fmt.Sprint(len(e.Properties)), e.FilePath)
	}
	if table.Len() > 0 {
		fmt.Fprintln(w)
		fmt.Fprint(w, table.String())
	}

	fmt.Fprintln(w)
	switch {
	case res.Previous == nil:
		fmt.Fprintln(w, cli.FormatKeyValue("baseline", "recorded "+shortHash(res.Hash.Root)))
	case res.Moved():
		c := res.Comparison
		fmt.Fprintln(w, cli.FormatKeyValue("baseline", cli.Warning("changed since last scan")))
		printNames(w, "new", c.Extra)
		printNames(w, "gone", c.Missing)
		printNames(w, "changed", c.Changed)
	default:
		fmt.Fprintln(w, cli.FormatKeyValue("baseline", "unchanged "+shortHash(res.Hash.Root)))
	}
}

func printNames(w io.Writer, label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s %s\n", cli.Dim(label+":"), strings.Join(names, ", "))
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

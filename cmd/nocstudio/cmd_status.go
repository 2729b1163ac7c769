package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hlop3z/nocstudio/internal/changes"
	"github.com/hlop3z/nocstudio/internal/cli"
	"github.com/hlop3z/nocstudio/internal/entity"
	"github.com/hlop3z/nocstudio/pkg/nocstudio"
)

// statusJSON is the --json shape of the status command.
type statusJSON struct {
	Project    string                             `json:"project,omitempty"`
	Existing   bool                               `json:"existing"`
	Source     string                             `json:"source,omitempty"`
	Entities   int                                `json:"entities"`
	HasChanges bool                               `json:"hasChanges"`
	Added      []string                           `json:"added"`
	Modified   []string                           `json:"modified"`
	Removed    []string                           `json:"removed"`
	Details    map[string][]changes.PropertyChange `json:"details,omitempty"`
}

// statusCmd shows the current set against the baseline.
func statusCmd() *cobra.Command {
	var (
		details    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show added/modified/removed entities",
		Long: `Compare the current entity set against the baseline recorded by the last
scan and list added, modified and removed entities. With --details each
modified entity is followed by its property changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := newSession(cmd.Flags())
			if err != nil {
				return err
			}
			defer s.Close()

			rep, err := s.Changes()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeStatusJSON(out, s, rep, details)
			}
			return writeStatus(out, s, rep, details)
		},
	}

	cmd.Flags().BoolVarP(&details, "details", "d", false, "Show property changes")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func writeStatusJSON(w io.Writer, s *nocstudio.Session, rep *changes.Report, details bool) error {
	st := statusJSON{
		Project:    s.ProjectDir(),
		Existing:   s.IsExistingProject(),
		Source:     s.Source(),
		Entities:   entity.Count(s.Entities()),
		HasChanges: rep.HasChanges,
		Added:      nonNil(entity.Names(rep.Added)),
		Modified:   nonNil(entity.Names(rep.Modified)),
		Removed:    nonNil(entity.Names(rep.Removed)),
	}
	if details {
		st.Details = map[string][]changes.PropertyChange{}
		for _, e := range append(append([]entity.Entity{}, rep.Added...), rep.Modified...) {
			d, err := s.Details(e.Name)
			if err != nil {
				return err
			}
			st.Details[e.Name] = d
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

func writeStatus(w io.Writer, s *nocstudio.Session, rep *changes.Report, details bool) error {
	if dir := s.ProjectDir(); dir != "" {
		kind := "new"
		if s.IsExistingProject() {
			kind = "existing"
		}
		fmt.Fprintln(w, cli.FormatKeyValue("project", fmt.Sprintf("%s (%s)", cli.FilePath(dir), kind)))
	}
	if src := s.Source(); src != "" {
		fmt.Fprintln(w, cli.FormatKeyValue("source", cli.FilePath(src)))
	}
	fmt.Fprintln(w, cli.FormatKeyValue("entities", fmt.Sprint(entity.Count(s.Entities()))))
	fmt.Fprintln(w)

	if !rep.HasChanges {
		fmt.Fprintln(w, cli.Success("No changes against the baseline."))
		return nil
	}

	fmt.Fprintln(w, cli.Header(cli.FormatCount(rep.ModifiedCount, "change", "changes")))
	groups := []struct {
		kind     string
		entities []entity.Entity
	}{
		{changes.KindAdded, rep.Added},
		{changes.KindModified, rep.Modified},
		{changes.KindRemoved, rep.Removed},
	}
	for _, g := range groups {
		for _, e := range g.entities {
			fmt.Fprintf(w, "  %s %s\n", cli.ChangeMarker(g.kind), paintKind(g.kind, e.Name))
			if !details || g.kind == changes.KindRemoved {
				continue
			}
			d, err := s.Details(e.Name)
			if err != nil {
				return err
			}
			for _, pc := range d {
				fmt.Fprintf(w, "      %s %s %s\n", cli.ChangeMarker(pc.Type), pc.Property, cli.Dim(pc.Detail))
			}
		}
	}
	return nil
}

func paintKind(kind, s string) string {
	switch kind {
	case changes.KindAdded:
		return cli.Added(s)
	case changes.KindModified:
		return cli.Modified(s)
	case changes.KindRemoved:
		return cli.Removed(s)
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

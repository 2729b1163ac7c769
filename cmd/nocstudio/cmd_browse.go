package main

import (
	"github.com/spf13/cobra"

	"github.com/hlop3z/nocstudio/internal/ui"
)

// browseCmd opens the interactive entity browser.
func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Explore entities and changes interactively",
		Long: `Open a terminal browser over the current entity set: entities with their
change markers on the left, properties and the scaffold command on the right.
Keys: j/k move, h/l or Tab switch panels, q quits.

Outside a terminal the same information is printed as text.`,
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
			original, err := s.Original()
			if err != nil {
				return err
			}

			return ui.Browse(ui.BrowseData{
				Source:   s.Source(),
				Current:  s.Entities(),
				Original: original,
				Scanned:  s.Scanned(),
				Report:   rep,
			}, cmd.OutOrStdout())
		},
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hlop3z/nocstudio/internal/cli"
	"github.com/hlop3z/nocstudio/internal/command"
	"github.com/hlop3z/nocstudio/internal/dbml"
	"github.com/hlop3z/nocstudio/internal/host"
	"github.com/hlop3z/nocstudio/pkg/nocstudio"
)

const watchDebounce = 200 * time.Millisecond

// watchCmd re-parses a DBML file whenever it is saved.
func watchCmd() *cobra.Command {
	var doImport bool

	cmd := &cobra.Command{
		Use:   "watch <file.dbml>",
		Short: "Re-parse a DBML file on every save",
		Long: `Watch a DBML file and print the scaffold commands its tables produce every
time it changes. With --import each successful parse is also merged into the
current set and saved. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var (
				s *nocstudio.Session
				h host.Host = host.NewOS("")
			)
			if doImport {
				var err error
				if s, _, err = newSession(cmd.Flags()); err != nil {
					return err
				}
				defer s.Close()
				h = s.Host()
			}

			reload := func() {
				fmt.Fprintln(out, cli.Dim(time.Now().Format("15:04:05")+" "+path))
				if err := previewDBML(out, h, path, s); err != nil {
					fmt.Fprint(cmd.ErrOrStderr(), cli.FormatError(err))
				}
				fmt.Fprintln(out)
			}

			reload()
			fmt.Fprintln(out, cli.Dim("Watching for changes (Ctrl+C to stop)"))
			return watchFile(ctx, path, watchDebounce, reload)
		},
	}

	cmd.Flags().BoolVar(&doImport, "import", false, "Merge every successful parse into the current set")
	return cmd
}

// previewDBML reads path through h, parses it and prints its commands. A
// non-nil session also imports the result.
func previewDBML(w io.Writer, h host.Host, path string, s *nocstudio.Session) error {
	text, err := h.ReadTextFile(path)
	if err != nil {
		return err
	}
	res, err := dbml.ParseChecked(text)
	if err != nil {
		return err
	}
	for _, warn := range res.Warnings {
		fmt.Fprint(w, cli.FormatWarning(warn))
	}
	for _, c := range command.Generate(res.Entities, command.Options{}) {
		fmt.Fprintln(w, c)
	}

	if s == nil {
		return nil
	}
	if _, err := s.ImportDBML(text, path); err != nil {
		return err
	}
	return s.Save()
}

// watchFile calls onChange after writes to path settle. The parent directory
// is watched so editors that replace the file are followed.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("file watcher failed: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("cannot watch %s: %w", filepath.Dir(abs), err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				fire = timer.C
			}
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("file watcher error: %w", err)
		}
	}
}

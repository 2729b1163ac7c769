package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hlop3z/nocstudio/internal/cli"
	"github.com/hlop3z/nocstudio/internal/runner"
	"github.com/hlop3z/nocstudio/internal/ui"
	"github.com/hlop3z/nocstudio/pkg/nocstudio"
)

// applyCmd runs the plan one command at a time.
func applyCmd() *cobra.Command {
	var (
		dryRun bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Run the commands one at a time",
		Long: `Run the plan printed by "commands --cd" through the shell, one command at
a time. With --on-error continue (the default) failures are reported at the
end; with --on-error abort the run stops at the first failure. On a terminal
without --yes or --on-error the policy is picked at the confirmation prompt.

Every run is recorded in the journal; see "nocstudio runs".`,
		Example: `  nocstudio apply --dry-run
  nocstudio apply --on-error abort --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			s, _, err := newSession(cmd.Flags())
			if err != nil {
				return err
			}
			defer s.Close()

			if dryRun {
				_, err := s.Apply(cmd.Context(), nocstudio.DryRunTo(out))
				return err
			}

			plan := s.Plan()
			var applyOpts []nocstudio.ApplyOption
			if len(plan) > 0 && !yes && ui.IsTerminal() {
				ask := confirmApply
				if !cmd.Flags().Changed("on-error") {
					ask = chooseApplyMode
				}
				mode, ok, err := ask(ui.Stdio(), len(plan), s.Config().OnError)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.Dim("Cancelled."))
					return nil
				}
				applyOpts = append(applyOpts, nocstudio.RunMode(mode))
			}

			progress := cli.NewTaskProgress(out, len(plan))
			applyOpts = append(applyOpts, nocstudio.Observe(progressObserver(progress)))
			rep, err := s.Apply(cmd.Context(), applyOpts...)
			if err != nil {
				return err
			}
			printReport(out, rep)
			return rep.Err()
		},
	}

	cmd.Flags().String("on-error", "", "Failure policy: continue or abort")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without running it")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// confirmApply asks a yes/no question and keeps the configured mode.
func confirmApply(p *ui.Prompter, n int, mode runner.Mode) (runner.Mode, bool, error) {
	ok, err := p.Confirm(fmt.Sprintf("Run %s?", cli.FormatCount(n, "command", "commands")), false)
	return mode, ok, err
}

// chooseApplyMode lets the user pick the failure policy or cancel. The
// configured mode is listed first.
func chooseApplyMode(p *ui.Prompter, n int, mode runner.Mode) (runner.Mode, bool, error) {
	modes := []runner.Mode{mode, runner.AbortOnError}
	if mode == runner.AbortOnError {
		modes[1] = runner.ContinueOnError
	}
	labels := map[runner.Mode]string{
		runner.ContinueOnError: "Run, continue after failures",
		runner.AbortOnError:    "Run, stop at the first failure",
	}

	options := []string{labels[modes[0]], labels[modes[1]], "Cancel"}
	i, err := p.Select(fmt.Sprintf("Run %s?", cli.FormatCount(n, "command", "commands")), options)
	if err != nil {
		return mode, false, err
	}
	if i == len(options)-1 {
		return mode, false, nil
	}
	return modes[i], true, nil
}

// progressObserver reports each command on a TaskProgress.
func progressObserver(p *cli.TaskProgress) runner.Observer {
	return runner.Observer{
		Start: func(seq, total int, cmd string) {
			p.Start(seq, cmd)
		},
		Done: func(res runner.Result) {
			if res.OK() {
				p.Complete(res.Duration)
				return
			}
			p.Failed(res.Duration, res.Err)
		},
	}
}

func printReport(w io.Writer, rep *runner.Report) {
	fmt.Fprintln(w)
	ok := len(rep.Results) - rep.Failed
	summary := fmt.Sprintf("%d succeeded, %d failed", ok, rep.Failed)
	if skipped := rep.Skipped(); skipped > 0 {
		summary += fmt.Sprintf(", %d skipped", skipped)
	}
	if rep.Failed == 0 && !rep.Aborted {
		fmt.Fprint(w, cli.FormatSuccess(summary))
		return
	}
	fmt.Fprintln(w, cli.Warning(summary))
}

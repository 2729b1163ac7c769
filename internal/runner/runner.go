// Package runner submits generated commands to an executor one at a time.
//
// Commands are never run in parallel and never retried. What happens after
// a failure is decided by Mode.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hlop3z/nocstudio/internal/alerr"
)

// Executor runs one shell command. host.Host satisfies it.
type Executor interface {
	ExecuteShellCommand(ctx context.Context, cmd string) (string, error)
}

// Mode selects the policy after a failed command.
type Mode int

const (
	// ContinueOnError logs the failure and runs the remaining commands.
	ContinueOnError Mode = iota
	// AbortOnError stops at the first failure.
	AbortOnError
)

func (m Mode) String() string {
	if m == AbortOnError {
		return "abort"
	}
	return "continue"
}

// ParseMode parses "continue" or "abort".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "continue":
		return ContinueOnError, nil
	case "abort":
		return AbortOnError, nil
	}
	return ContinueOnError, alerr.Newf(alerr.ErrInvalidMode, "unknown error mode %q", s).
		WithNote("valid modes: continue, abort")
}

// Result is the outcome of one command.
type Result struct {
	Seq      int
	Command  string
	Output   string
	Err      error
	Duration time.Duration
}

// OK reports whether the command succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Report is the outcome of Run.
type Report struct {
	Mode     Mode
	Started  time.Time
	Finished time.Time

	// Results holds one entry per command that was started, in order.
	Results []Result

	// Total is the number of commands submitted to Run.
	Total int

	// Failed counts results with an error.
	Failed int

	// Aborted is true when AbortOnError or cancellation skipped commands.
	Aborted bool
}

// Skipped is the number of commands that never ran.
func (r *Report) Skipped() int {
	return r.Total - len(r.Results)
}

// Err summarizes the run as a single error, or nil when every command ran
// and succeeded.
func (r *Report) Err() error {
	if r.Failed == 0 && !r.Aborted {
		return nil
	}

	code := alerr.ErrCommandFailed
	msg := fmt.Sprintf("%d of %d commands failed", r.Failed, r.Total)
	if r.Aborted {
		code = alerr.ErrRunAborted
		msg = fmt.Sprintf("run aborted after %d of %d commands", len(r.Results), r.Total)
	}

	err := alerr.New(code, msg).With("mode", r.Mode.String())
	for _, res := range r.Results {
		if res.Err != nil {
			err.WithNote(fmt.Sprintf("#%d %s: %s", res.Seq, res.Command, firstLine(res.Err)))
		}
	}
	return err
}

func firstLine(err error) string {
	var ae *alerr.Error
	if errors.As(err, &ae) {
		if out, _ := ae.GetContext()["output"].(string); out != "" {
			return strings.SplitN(out, "\n", 2)[0]
		}
		return ae.GetMessage()
	}
	return strings.SplitN(err.Error(), "\n", 2)[0]
}

// Observer is notified around every command. Either field may be nil.
type Observer struct {
	Start func(seq, total int, cmd string)
	Done  func(res Result)
}

// Runner executes command lists against an Executor.
type Runner struct {
	exec     Executor
	mode     Mode
	logger   *slog.Logger
	observer Observer
}

// Option configures a Runner.
type Option func(*Runner)

// WithMode sets the failure policy. The default is ContinueOnError.
func WithMode(m Mode) Option {
	return func(r *Runner) { r.mode = m }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver installs progress callbacks.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// New creates a Runner.
func New(exec Executor, opts ...Option) *Runner {
	r := &Runner{exec: exec, mode: ContinueOnError, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cmds in order and waits for each before submitting the next.
// The returned report is never nil. Run itself only fails when ctx is
// cancelled; command failures are recorded in the report.
func (r *Runner) Run(ctx context.Context, cmds []string) (*Report, error) {
	rep := &Report{Mode: r.mode, Started: time.Now(), Total: len(cmds)}
	defer func() { rep.Finished = time.Now() }()

	for i, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			rep.Aborted = true
			r.logger.Warn("run cancelled", "completed", i, "total", len(cmds))
			return rep, alerr.Wrap(alerr.ErrRunAborted, err, "run cancelled").
				With("completed", i)
		}

		seq := i + 1
		if r.observer.Start != nil {
			r.observer.Start(seq, len(cmds), cmd)
		}
		r.logger.Debug("executing command", "seq", seq, "total", len(cmds), "command", cmd)

		start := time.Now()
		out, err := r.exec.ExecuteShellCommand(ctx, cmd)
		res := Result{Seq: seq, Command: cmd, Output: out, Err: err, Duration: time.Since(start)}
		rep.Results = append(rep.Results, res)

		if r.observer.Done != nil {
			r.observer.Done(res)
		}

		if err == nil {
			r.logger.Debug("command succeeded", "seq", seq, "duration", res.Duration)
			continue
		}

		rep.Failed++
		r.logger.Warn("command failed", "seq", seq, "command", cmd, "error", err)

		if r.mode == AbortOnError {
			rep.Aborted = seq < len(cmds)
			r.logger.Info("aborting run", "skipped", len(cmds)-seq)
			break
		}
	}

	return rep, nil
}

// Run is a convenience wrapper for New(exec, WithMode(mode)).Run(ctx, cmds).
func Run(ctx context.Context, exec Executor, cmds []string, mode Mode) (*Report, error) {
	return New(exec, WithMode(mode)).Run(ctx, cmds)
}

package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hlop3z/nocstudio/internal/alerr"
	"github.com/hlop3z/nocstudio/internal/entity"
	"github.com/hlop3z/nocstudio/internal/merge"
)

// Prompter asks line-oriented questions.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Stdio returns a prompter bound to the process terminal.
func Stdio() *Prompter {
	return NewPrompter(os.Stdin, os.Stdout)
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Ask prints message and returns the answer, or def when the answer is empty.
func (p *Prompter) Ask(message, def string) (string, error) {
	prompt := primary("? ") + message
	if def != "" {
		prompt += dim(fmt.Sprintf(" (%s)", def))
	}
	fmt.Fprint(p.out, prompt+primary(": "))

	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		answer = def
	}
	return answer, nil
}

// Confirm asks a yes/no question. An empty answer returns defaultYes.
func (p *Prompter) Confirm(message string, defaultYes bool) (bool, error) {
	suffix := dim(" (y/N)")
	if defaultYes {
		suffix = dim(" (Y/n)")
	}
	fmt.Fprint(p.out, warning("? ")+message+suffix+primary(": "))

	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Select shows a numbered menu and returns the chosen index.
func (p *Prompter) Select(message string, options []string) (int, error) {
	fmt.Fprintln(p.out, primary("? ")+message)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %s %s\n", dim(fmt.Sprintf("%d.", i+1)), opt)
	}
	fmt.Fprint(p.out, primary("Select: "))

	answer, err := p.readLine()
	if err != nil {
		return -1, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(options) {
		return -1, fmt.Errorf("invalid selection %q: must be between 1 and %d", answer, len(options))
	}
	return n - 1, nil
}

// ResolveOverwrites asks, for every duplicate without a decision, whether
// the imported definition should overwrite the existing one. Answers are
// recorded in choices, which is returned.
func (p *Prompter) ResolveOverwrites(duplicates []entity.Entity, choices merge.Choices) (merge.Choices, error) {
	if choices == nil {
		choices = merge.Choices{}
	}
	for _, e := range duplicates {
		if choices.Get(e.Name) != merge.Unspecified {
			continue
		}
		overwrite, err := p.Confirm(fmt.Sprintf("%s already exists. Overwrite it?", e.Name), true)
		if err != nil {
			return choices, err
		}
		if overwrite {
			choices.Set(e.Name, merge.Overwrite)
		} else {
			choices.Set(e.Name, merge.Keep)
		}
	}
	return choices, nil
}

// DirectoryChooser adapts the prompter to host.OS.Chooser.
func (p *Prompter) DirectoryChooser(def string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		dir, err := p.Ask("Project directory", def)
		if err != nil {
			return "", err
		}
		if dir == "" {
			return "", alerr.New(alerr.ErrHostChoose, "no directory chosen")
		}
		return dir, nil
	}
}

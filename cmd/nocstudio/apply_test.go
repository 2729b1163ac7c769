package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/hlop3z/nocstudio/internal/cache"
	"github.com/hlop3z/nocstudio/internal/cli"
	"github.com/hlop3z/nocstudio/internal/runner"
	"github.com/hlop3z/nocstudio/internal/ui"
)

// -----------------------------------------------------------------------------
// Apply Prompt Tests
// -----------------------------------------------------------------------------

func TestChooseApplyMode(t *testing.T) {
	tests := []struct {
		name       string
		configured runner.Mode
		answer     string
		want       runner.Mode
		ok         bool
	}{
		{"keep configured continue", runner.ContinueOnError, "1", runner.ContinueOnError, true},
		{"switch to abort", runner.ContinueOnError, "2", runner.AbortOnError, true},
		{"keep configured abort", runner.AbortOnError, "1", runner.AbortOnError, true},
		{"switch to continue", runner.AbortOnError, "2", runner.ContinueOnError, true},
		{"cancel", runner.ContinueOnError, "3", runner.ContinueOnError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ui.NewPrompter(strings.NewReader(tt.answer+"\n"), io.Discard)
			got, ok, err := chooseApplyMode(p, 2, tt.configured)
			if err != nil {
				t.Fatalf("chooseApplyMode() error = %v", err)
			}
			if got != tt.want || ok != tt.ok {
				t.Errorf("chooseApplyMode() = %v, %v, want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}

	p := ui.NewPrompter(strings.NewReader("9\n"), io.Discard)
	if _, _, err := chooseApplyMode(p, 2, runner.ContinueOnError); err == nil {
		t.Error("expected error for out-of-range selection")
	}
}

func TestConfirmApplyKeepsMode(t *testing.T) {
	p := ui.NewPrompter(strings.NewReader("y\n"), io.Discard)
	mode, ok, err := confirmApply(p, 1, runner.AbortOnError)
	if err != nil || !ok || mode != runner.AbortOnError {
		t.Errorf("confirmApply() = %v, %v, %v", mode, ok, err)
	}
}

// -----------------------------------------------------------------------------
// printRun Tests
// -----------------------------------------------------------------------------

func TestPrintRunIndentsOutput(t *testing.T) {
	cli.SetDefault(cli.NewConfigWithMode(cli.ModePlain))

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := &cache.RunRecord{
		ID:         "0123456789abcdef",
		Project:    "/work",
		Mode:       "continue",
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
		Total:      3,
		Failed:     1,
		Commands: []cache.CommandRecord{
			{Seq: 1, Command: `nocsharp s "A"`, Output: "created A\n\nwrote 2 files\n"},
			{Seq: 2, Command: `nocsharp s "B"`, Error: "exit status 1"},
		},
	}

	var out bytes.Buffer
	printRun(&out, rec)
	got := out.String()

	for _, want := range []string{
		"      | created A\n      | wrote 2 files\n",
		"      | exit status 1\n",
		"1 not run",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("printRun() missing %q in\n%s", want, got)
		}
	}
}

package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hlop3z/nocstudio/internal/alerr"
)

// FormatError formats an error for display in Cargo/rustc style:
//
//	error[E1002]: no Table definition found
//	  --> schema.dbml:4
//	   |
//	   | entity: users
//	   |
//	note: ...
//	help: ...
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var ae *alerr.Error
	if errors.As(err, &ae) {
		return formatCoded("error", ae)
	}
	return Error("error") + ": " + err.Error() + "\n"
}

// FormatWarning formats a coded warning such as an unterminated table.
func FormatWarning(w *alerr.Error) string {
	return formatCoded("warning", w)
}

func formatCoded(kind string, err *alerr.Error) string {
	var b strings.Builder

	label := Error(kind)
	if kind == "warning" {
		label = Warning(kind)
	}
	fmt.Fprintf(&b, "%s[%s]: %s\n", label, Code(string(err.GetCode())), err.GetMessage())

	if file, line, ok := err.Location(); ok {
		loc := file
		switch {
		case file == "":
			loc = fmt.Sprintf("line %d", line)
		case line > 0:
			loc = fmt.Sprintf("%s:%d", file, line)
		}
		fmt.Fprintf(&b, "  %s %s\n", paint(stylePipe, "-->"), FilePath(loc))
	}

	ctx := err.GetContext()
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if src := err.Source(); src != "" {
		fmt.Fprintf(&b, "   %s\n   %s %s\n", Pipe(), Pipe(), src)
	}
	if len(keys) > 0 {
		fmt.Fprintf(&b, "   %s\n", Pipe())
		for _, k := range keys {
			fmt.Fprintf(&b, "   %s %s: %v\n", Pipe(), k, ctx[k])
		}
	}

	for _, note := range err.Notes() {
		fmt.Fprintf(&b, "   %s\n%s: %s\n", Pipe(), Note("note"), note)
	}
	for _, help := range err.Helps() {
		fmt.Fprintf(&b, "%s: %s\n", Help("help"), help)
	}

	if cause := err.GetCause(); cause != nil {
		fmt.Fprintf(&b, "   %s\n%s: %s\n", Pipe(), Note("cause"), firstLine(cause.Error()))
	}

	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// FormatNote formats a note line.
func FormatNote(msg string) string {
	return Note("note") + ": " + msg + "\n"
}

// FormatHelp formats a help line.
func FormatHelp(msg string) string {
	return Help("help") + ": " + msg + "\n"
}

// FormatSuccess formats a success line.
func FormatSuccess(msg string) string {
	return Success("success") + ": " + msg + "\n"
}

package cli

import (
	"fmt"
	"strings"
)

// Table provides formatted table output.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow adds a row to the table. Short rows are padded.
func (t *Table) AddRow(cells ...string) {
	for len(cells) < len(t.headers) {
		cells = append(cells, "")
	}
	for i, cell := range cells {
		if i < len(t.widths) && len(cell) > t.widths[i] {
			t.widths[i] = len(cell)
		}
	}
	t.rows = append(t.rows, cells)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// String renders the table.
func (t *Table) String() string {
	if len(t.headers) == 0 {
		return ""
	}

	var b strings.Builder
	for i, h := range t.headers {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(Header(padRight(h, t.widths[i])))
	}
	b.WriteString("\n")

	for i, w := range t.widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(Dim(strings.Repeat("-", w)))
	}
	b.WriteString("\n")

	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(t.widths) {
				break
			}
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(t.widths)-1 {
				b.WriteString(cell)
			} else {
				b.WriteString(padRight(cell, t.widths[i]))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// ListStyle determines how a list item marker is rendered.
type ListStyle int

const (
	ListStyleNormal ListStyle = iota
	ListStyleSuccess
	ListStyleError
	ListStyleWarning
)

type listItem struct {
	marker  string
	content string
	style   ListStyle
}

// List provides bulleted list output.
type List struct {
	items []listItem
}

// NewList creates a new list.
func NewList() *List { return &List{} }

// Add adds a plain item.
func (l *List) Add(content string) { l.add("*", content, ListStyleNormal) }

// AddSuccess adds a success item.
func (l *List) AddSuccess(content string) { l.add("ok", content, ListStyleSuccess) }

// AddError adds a failure item.
func (l *List) AddError(content string) { l.add("x", content, ListStyleError) }

// AddWarning adds a warning item.
func (l *List) AddWarning(content string) { l.add("!", content, ListStyleWarning) }

func (l *List) add(marker, content string, style ListStyle) {
	l.items = append(l.items, listItem{marker: marker, content: content, style: style})
}

// String renders the list.
func (l *List) String() string {
	var b strings.Builder
	for _, item := range l.items {
		b.WriteString("  ")
		switch item.style {
		case ListStyleSuccess:
			b.WriteString(Success(item.marker))
		case ListStyleError:
			b.WriteString(Error(item.marker))
		case ListStyleWarning:
			b.WriteString(Warning(item.marker))
		default:
			b.WriteString(item.marker)
		}
		b.WriteString(" ")
		b.WriteString(item.content)
		b.WriteString("\n")
	}
	return b.String()
}

// Section renders a header, an underline and content.
func Section(title, content string) string {
	return Header(title) + "\n" + strings.Repeat("-", len(title)) + "\n" + content
}

// FormatKeyValue formats a key-value pair.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s", Dim(key), value)
}

// FormatCount formats a count with singular/plural form.
func FormatCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// Package dbml recovers entities from DBML-like "DBDiagram" schema text.
//
// The grammar is a deliberate subset: Table blocks containing one column per
// line. Anything the patterns below do not recognize is skipped, never
// reported, except for the three failures of ParseChecked.
package dbml

import (
	"regexp"
	"strings"

	"github.com/hlop3z/nocstudio/internal/alerr"
	"github.com/hlop3z/nocstudio/internal/entity"
	"github.com/hlop3z/nocstudio/internal/strutil"
	"github.com/hlop3z/nocstudio/internal/typemap"
)

var (
	tableRe  = regexp.MustCompile(`(?i)^table\s+(.+)$`)
	columnRe = regexp.MustCompile(`^(\S+)\s+([A-Za-z_][\w.]*)(\([^)]*\))?\s*(?:\[([^\]]*)\])?`)
)

// Column is one parsed column line.
type Column struct {
	Name       string
	RawType    string // type token as written, size suffix included
	BaseType   string // lower-cased type token without size suffix
	Type       string // canonical type after mapping and the pk rule
	Attributes string // bracket body, verbatim
	NotNull    bool
	PrimaryKey bool
	Line       int
}

// Table is one closed Table block.
type Table struct {
	Name    string
	Columns []Column
	Line    int
}

// Entity converts the table to an entity. Nullability is not carried over.
func (t Table) Entity() entity.Entity {
	e := entity.Entity{Name: t.Name, Properties: make([]entity.Property, 0, len(t.Columns))}
	for _, c := range t.Columns {
		e.Properties = append(e.Properties, entity.Property{
			Name:           c.Name,
			Type:           c.Type,
			CollectionType: entity.CollectionUnset,
		})
	}
	return e
}

type scanState int

const (
	outsideTable scanState = iota
	insideTable
)

// ParseTables scans text line by line and returns every closed Table block.
// A block still open at EOF, or abandoned by a new Table line, is dropped and
// reported as a W1001 warning.
func ParseTables(text string) ([]Table, []*alerr.Error) {
	var (
		tables   []Table
		warnings []*alerr.Error
		current  *Table
		header   string // opening line of current, as written
		state    = outsideTable
	)

	unterminated := func(t *Table) {
		warnings = append(warnings,
			alerr.Newf(alerr.WarnUnterminatedTable, "table %q is never closed", t.Name).
				WithEntity(t.Name).
				WithLine(t.Line).
				WithSource(header).
				WithHelp("add a line containing only '}' after the last column"))
	}

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		lineNo := i + 1

		if m := tableRe.FindStringSubmatch(line); m != nil {
			if state == insideTable {
				unterminated(current)
			}
			name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[1]), "{"))
			current = &Table{Name: name, Line: lineNo}
			header = line
			state = insideTable
			continue
		}

		if state != insideTable {
			continue
		}

		if line == "}" {
			tables = append(tables, *current)
			current = nil
			state = outsideTable
			continue
		}

		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "/*") {
			continue
		}

		if col, ok := parseColumn(line); ok {
			col.Line = lineNo
			current.Columns = append(current.Columns, col)
		}
	}

	if state == insideTable {
		unterminated(current)
	}

	return tables, warnings
}

// parseColumn parses "<name> <type>(<args>)? ([<attributes>])?".
func parseColumn(line string) (Column, bool) {
	m := columnRe.FindStringSubmatch(line)
	if m == nil {
		return Column{}, false
	}

	col := Column{
		Name:       strutil.Unquote(m[1]),
		RawType:    m[2] + m[3],
		BaseType:   strings.ToLower(m[2]),
		Attributes: m[4],
	}

	attrs := strings.ToLower(m[4])
	col.NotNull = strings.Contains(attrs, "not null")
	col.PrimaryKey = strings.Contains(attrs, "pk") || strings.Contains(attrs, "primary key")

	col.Type = typemap.FromDBML(col.BaseType)
	if col.PrimaryKey {
		// Primary keys are always generated as auto-increment integers.
		col.Type = typemap.Int
	}

	return col, true
}

// Parse returns the entities of every closed Table block in text.
func Parse(text string) []entity.Entity {
	tables, _ := ParseTables(text)
	entities := make([]entity.Entity, 0, len(tables))
	for _, t := range tables {
		entities = append(entities, t.Entity())
	}
	return entities
}

// Result is the outcome of ParseChecked.
type Result struct {
	Entities []entity.Entity
	Tables   []Table
	Warnings []*alerr.Error
}

// ParseChecked is the validating variant of Parse. It fails with
// ErrEmptyContent for blank input, ErrNoTableFound when no "Table " or
// "table " keyword appears, and ErrNoEntitiesParsed when nothing survives.
func ParseChecked(text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, alerr.New(alerr.ErrEmptyContent, "DBML content is empty")
	}

	if !strings.Contains(text, "Table ") && !strings.Contains(text, "table ") {
		return nil, alerr.New(alerr.ErrNoTableFound, "no Table definition found").
			WithHelp("define tables as: Table users { id int [pk] }")
	}

	tables, warnings := ParseTables(text)
	res := &Result{Tables: tables, Warnings: warnings}
	for _, t := range tables {
		res.Entities = append(res.Entities, t.Entity())
	}

	if len(res.Entities) == 0 {
		err := alerr.New(alerr.ErrNoEntitiesParsed, "no entities could be parsed")
		for _, w := range warnings {
			err.WithNote(w.GetMessage())
		}
		return nil, err
	}

	return res, nil
}

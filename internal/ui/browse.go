package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/hlop3z/nocstudio/internal/changes"
	"github.com/hlop3z/nocstudio/internal/command"
	"github.com/hlop3z/nocstudio/internal/entity"
)

// BrowseData is everything the entity browser shows.
type BrowseData struct {
	Source   string
	Current  []entity.Entity
	Original []entity.Entity
	Scanned  []entity.Entity
	Report   *changes.Report
}

type browseItem struct {
	entity entity.Entity
	kind   string // added, modified, removed or ""
}

// items lists current entities in order, then removed ones.
func (d BrowseData) items() []browseItem {
	report := d.Report
	if report == nil {
		report = changes.Detect(d.Current, d.Original)
	}

	out := make([]browseItem, 0, len(d.Current)+len(report.Removed))
	for _, e := range d.Current {
		out = append(out, browseItem{entity: e, kind: report.Status(e.Name)})
	}
	for _, e := range report.Removed {
		out = append(out, browseItem{entity: e, kind: changes.KindRemoved})
	}
	return out
}

func (i browseItem) label() string {
	switch i.kind {
	case changes.KindAdded:
		return tagAdded + "+ " + tagReset + i.entity.Name
	case changes.KindModified:
		return tagModified + "~ " + tagReset + i.entity.Name
	case changes.KindRemoved:
		return tagRemoved + "- " + i.entity.Name + tagReset
	}
	return "  " + i.entity.Name
}

func (d BrowseData) details(i browseItem) string {
	var b strings.Builder
	e := i.entity

	status := i.kind
	if status == "" {
		status = "unchanged"
	}
	fmt.Fprintf(&b, tagLabel+"Entity:"+tagValue+" %s\n", e.Name)
	fmt.Fprintf(&b, tagLabel+"Status:"+tagValue+" %s\n", status)
	if e.FilePath != "" {
		fmt.Fprintf(&b, tagLabel+"File:"+tagValue+" %s\n", e.FilePath)
	}
	if e.BaseSkip {
		b.WriteString(tagLabel + "BaseSkip:" + tagValue + " yes\n")
	}

	if i.kind == changes.KindRemoved {
		b.WriteString("\n" + tagMuted + "No longer in the current set." + tagReset + "\n")
		return b.String()
	}

	b.WriteString("\n" + tagLabel + "Changes:" + tagValue + "\n")
	diff := changes.Details(e, d.Original, d.Scanned)
	if len(diff) == 0 {
		b.WriteString("  " + tagMuted + "none" + tagReset + "\n")
	}
	for _, c := range diff {
		tag := tagModified
		switch c.Type {
		case changes.KindAdded:
			tag = tagAdded
		case changes.KindRemoved:
			tag = tagRemoved
		}
		fmt.Fprintf(&b, "  %s%-8s%s %s %s\n", tag, c.Type, tagReset, c.Property, tagMuted+c.Detail+tagReset)
	}

	b.WriteString("\n" + tagLabel + "Command:" + tagValue + "\n")
	b.WriteString(tview.Escape(command.Scaffold(e)) + "\n")
	return b.String()
}

// WriteBrowse prints the browser contents as plain text.
func WriteBrowse(w io.Writer, d BrowseData) {
	items := d.items()
	if len(items) == 0 {
		fmt.Fprintln(w, "No entities. Import a DBML file or add one with `nocstudio entity add`.")
		return
	}
	for _, i := range items {
		fmt.Fprintln(w, stripTags(i.label()))
		for _, p := range i.entity.Properties {
			fmt.Fprintf(w, "    %s\n", command.FormatField(p))
		}
	}
}

// stripTags removes the color tags used in this package.
func stripTags(s string) string {
	for _, tag := range []string{tagLabel, tagValue, tagAdded, tagModified, tagRemoved, tagMuted, tagReset} {
		s = strings.ReplaceAll(s, tag, "")
	}
	return s
}

// Browse runs the entity browser: entity list, property table and change
// details side by side. Outside a terminal it falls back to WriteBrowse.
func Browse(d BrowseData, out io.Writer) error {
	if !IsTerminal() {
		WriteBrowse(out, d)
		return nil
	}

	items := d.items()
	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true).
		SetSelectedBackgroundColor(Theme.Selection).
		SetSelectedTextColor(Theme.Highlight).
		SetSelectedFocusOnly(false).
		SetMainTextColor(Theme.Text)
	list.SetBorder(true).
		SetBorderColor(Theme.Border).
		SetTitle(panelEntities).
		SetTitleColor(Theme.Accent)

	props := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0).
		SetSelectable(true, false).
		SetSelectedStyle(tcell.StyleDefault.Foreground(Theme.Highlight).Background(Theme.Selection))
	props.SetBorder(true).
		SetBorderColor(Theme.Border).
		SetTitle(panelProperties).
		SetTitleColor(Theme.Accent)

	details := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	details.SetBorder(true).
		SetBorderColor(Theme.Border).
		SetTitle(panelChanges).
		SetTitleColor(Theme.Accent)

	show := func(index int) {
		if index < 0 || index >= len(items) {
			return
		}
		populateProperties(props, items[index].entity)
		details.SetText(d.details(items[index]))
		details.ScrollToBeginning()
	}

	for _, i := range items {
		list.AddItem(i.label(), "", 0, nil)
	}
	list.SetChangedFunc(func(index int, _, _ string, _ rune) { show(index) })
	if len(items) > 0 {
		show(0)
	} else {
		details.SetText("\n" + tagMuted + "No entities. Import a DBML file first." + tagReset)
	}

	header := tview.NewTextView().
		SetText(fmt.Sprintf(" nocstudio  %s  %d entities", d.Source, len(d.Current))).
		SetTextColor(Theme.Text)
	header.SetBackgroundColor(Theme.Primary)

	hints := tview.NewTextView().
		SetText(hintsBrowse).
		SetTextColor(Theme.TextDim).
		SetTextAlign(tview.AlignCenter)

	grid := tview.NewFlex().
		AddItem(list, 28, 0, true).
		AddItem(props, 0, 1, false).
		AddItem(details, 0, 1, false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(grid, 0, 1, true).
		AddItem(hints, 1, 0, false)

	panels := []tview.Primitive{list, props, details}
	focus := 0
	move := func(delta int) {
		focus = (focus + delta + len(panels)) % len(panels)
		app.SetFocus(panels[focus])
	}

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			app.Stop()
			return nil
		case tcell.KeyLeft:
			move(-1)
			return nil
		case tcell.KeyRight, tcell.KeyTab:
			move(1)
			return nil
		}
		switch event.Rune() {
		case 'q':
			app.Stop()
			return nil
		case 'h':
			move(-1)
			return nil
		case 'l':
			move(1)
			return nil
		case 'j':
			return tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
		case 'k':
			return tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
		case 'g':
			return tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone)
		case 'G':
			return tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone)
		}
		return event
	})

	return app.SetRoot(layout, true).EnableMouse(true).Run()
}

func populateProperties(table *tview.Table, e entity.Entity) {
	table.Clear()
	for col, h := range []string{"Name", "Type", "Collection"} {
		table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(Theme.Accent).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false).
			SetExpansion(1))
	}
	for row, p := range e.Properties {
		collection := string(p.CollectionType)
		if !p.CollectionType.IsCollection() {
			collection = "-"
		}
		table.SetCell(row+1, 0, tview.NewTableCell(p.Name).SetTextColor(Theme.Text).SetExpansion(1))
		table.SetCell(row+1, 1, tview.NewTableCell(p.Type).SetTextColor(Theme.Modified).SetExpansion(1))
		table.SetCell(row+1, 2, tview.NewTableCell(collection).SetTextColor(Theme.TextDim).SetExpansion(1))
	}
	table.ScrollToBeginning()
}

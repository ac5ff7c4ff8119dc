package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// palette holds the colors shared by the renderers. Plugin names and port
// labels are often non-ASCII, so widths are measured in runes.
type palette struct {
	title *color.Color
	key   *color.Color
	muted *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		title: color.New(color.Bold, color.FgCyan),
		key:   color.New(color.FgCyan),
		muted: color.New(color.FgHiBlack),
	}
	if noColor {
		p.title.DisableColor()
		p.key.DisableColor()
		p.muted.DisableColor()
	}
	return p
}

// Table renders rows under a header line and a separator
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	right   map[int]bool
	colors  palette
}

// TableOptions configures table behavior
type TableOptions struct {
	NoColor bool
	// AlignRight lists the columns rendered flush right, e.g. numbers
	AlignRight []int
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, headers []string, opts *TableOptions) *Table {
	if opts == nil {
		opts = &TableOptions{}
	}

	right := make(map[int]bool, len(opts.AlignRight))
	for _, col := range opts.AlignRight {
		right[col] = true
	}

	return &Table{
		writer:  w,
		headers: headers,
		rows:    make([][]string, 0),
		right:   right,
		colors:  newPalette(opts.NoColor),
	}
}

// AddRow adds a row to the table. Missing cells render empty and extra
// cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Render renders the table to the writer
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = width(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	last := len(t.headers) - 1
	for i, header := range t.headers {
		t.colors.title.Fprint(t.writer, t.pad(i, header, widths[i], i == last))
		if i < last {
			fmt.Fprint(t.writer, "  ")
		}
	}
	fmt.Fprintln(t.writer)

	for i, w := range widths {
		t.colors.muted.Fprint(t.writer, strings.Repeat("─", w))
		if i < last {
			fmt.Fprint(t.writer, "  ")
		}
	}
	fmt.Fprintln(t.writer)

	for _, row := range t.rows {
		for i, cell := range row {
			fmt.Fprint(t.writer, t.pad(i, cell, widths[i], i == last))
			if i < last {
				fmt.Fprint(t.writer, "  ")
			}
		}
		fmt.Fprintln(t.writer)
	}
}

// pad aligns a cell; the last left-aligned column is not padded so lines
// carry no trailing blanks
func (t *Table) pad(col int, s string, w int, last bool) string {
	if t.right[col] {
		return padLeft(s, w)
	}
	if last {
		return s
	}
	return padRight(s, w)
}

func width(s string) int {
	return utf8.RuneCountInString(s)
}

func padRight(s string, w int) string {
	if n := width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func padLeft(s string, w int) string {
	if n := width(s); n < w {
		return strings.Repeat(" ", w-n) + s
	}
	return s
}

// KeyValueTable renders "Key: value" lines with aligned values
type KeyValueTable struct {
	writer io.Writer
	indent string
	keys   []string
	values []string
	colors palette
}

// NewKeyValueTable creates a new key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, colors: newPalette(noColor)}
}

// Indent prefixes every rendered line with n spaces
func (t *KeyValueTable) Indent(n int) *KeyValueTable {
	t.indent = strings.Repeat(" ", n)
	return t
}

// AddRow adds a key-value pair to the table
func (t *KeyValueTable) AddRow(key, value string) {
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

// AddList adds a key with several values, one per line. An empty list
// renders as "(none)".
func (t *KeyValueTable) AddList(key string, values []string) {
	if len(values) == 0 {
		t.AddRow(key, "(none)")
		return
	}
	for i, v := range values {
		if i == 0 {
			t.AddRow(key, v)
			continue
		}
		t.AddRow("", v)
	}
}

// Render renders the key-value table
func (t *KeyValueTable) Render() {
	keyWidth := 0
	for _, k := range t.keys {
		if w := width(k) + 1; w > keyWidth {
			keyWidth = w
		}
	}

	for i, k := range t.keys {
		label := ""
		if k != "" {
			label = k + ":"
		}
		fmt.Fprint(t.writer, t.indent)
		t.colors.key.Fprint(t.writer, padRight(label, keyWidth))
		fmt.Fprintf(t.writer, " %s\n", t.values[i])
	}
}

// Section renders a title followed by indented lines and a blank line
type Section struct {
	writer  io.Writer
	title   string
	content []string
	colors  palette
}

// NewSection creates a new section
func NewSection(w io.Writer, title string, noColor bool) *Section {
	return &Section{
		writer:  w,
		title:   title,
		content: make([]string, 0),
		colors:  newPalette(noColor),
	}
}

// AddLine adds a line to the section content
func (s *Section) AddLine(format string, args ...interface{}) {
	s.content = append(s.content, fmt.Sprintf(format, args...))
}

// Render renders the section
func (s *Section) Render() {
	s.colors.title.Fprintln(s.writer, s.title)
	for _, line := range s.content {
		fmt.Fprintf(s.writer, "  %s\n", line)
	}
	fmt.Fprintln(s.writer)
}

// Header renders a styled title underlined to its width
func Header(w io.Writer, title string, noColor bool) {
	colors := newPalette(noColor)
	colors.title.Fprintln(w, title)
	colors.muted.Fprintln(w, strings.Repeat("─", width(title)))
}

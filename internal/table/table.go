// Package table is the generic tabular widget the controller renders into.
// Column layout is fixed at construction; content changes never touch it.
package table

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nicolastakashi/stats-viewer/api/models"
)

type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

func (a Align) String() string {
	if a == AlignRight {
		return "right"
	}
	return "left"
}

// Column configures a single column. A zero Width sizes the column automatically.
type Column struct {
	Width int
	Align Align
}

type Table struct {
	columns []Column
	rows    [][]string
	stale   bool
	onDraw  func(*Table)
}

type Option func(*Table)

// WithDrawHook registers a function called every time the table is redrawn.
func WithDrawHook(f func(*Table)) Option {
	return func(t *Table) {
		t.onDraw = f
	}
}

func New(columns []Column, opts ...Option) *Table {
	t := &Table{
		columns: append([]Column(nil), columns...),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Clear removes every row. The table is only redrawn when redraw is true.
func (t *Table) Clear(redraw bool) {
	t.rows = nil
	t.changed(redraw)
}

// AddRows appends rows after formatting each cell.
func (t *Table) AddRows(rows []models.Row, redraw bool) {
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, v := range r {
			cells[i] = FormatCell(v)
		}
		t.rows = append(t.rows, cells)
	}
	t.changed(redraw)
}

func (t *Table) changed(redraw bool) {
	if !redraw {
		t.stale = true
		return
	}
	t.stale = false
	if t.onDraw != nil {
		t.onDraw(t)
	}
}

// Stale reports whether the content changed since the last redraw.
func (t *Table) Stale() bool {
	return t.stale
}

func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

func (t *Table) Rows() [][]string {
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func (t *Table) Len() int {
	return len(t.rows)
}

// Column returns the configuration for column i. Columns beyond the
// configured ones are auto-sized and left aligned.
func (t *Table) Column(i int) Column {
	if i >= 0 && i < len(t.columns) {
		return t.columns[i]
	}
	return Column{}
}

// Pad fits text into column i for fixed-width output.
func (t *Table) Pad(i int, text string) string {
	col := t.Column(i)
	return Fit(text, col.Width, col.Align)
}

// Fit pads text to width characters. Text that is already at least width
// long is returned unchanged.
func Fit(text string, width int, align Align) string {
	if width <= 0 {
		return text
	}
	n := utf8.RuneCountInString(text)
	if n >= width {
		return text
	}
	fill := strings.Repeat(" ", width-n)
	if align == AlignRight {
		return fill + text
	}
	return text + fill
}

// FormatCell renders a decoded JSON value the way it appeared in the document.
func FormatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case json.Number:
		return c.String()
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case bool:
		return strconv.FormatBool(c)
	default:
		b, err := json.Marshal(c)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

package tui

import (
	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/nicolastakashi/stats-viewer/api/models"
	"github.com/nicolastakashi/stats-viewer/internal/controller"
	"github.com/nicolastakashi/stats-viewer/internal/table"
)

const (
	minColumnWidth = 6
	helpText       = " [tab](fg:cyan) focus | [up/down](fg:cyan) select | [space](fg:cyan) add database | [enter](fg:cyan) go | [q](fg:cyan) quit"
)

var focusedStyle = ui.NewStyle(ui.ColorYellow)

// View renders the controller's widgets with termui. It must only be used
// from the goroutine running the terminal event loop.
type View struct {
	lists   map[controller.DropdownID]*widgets.List
	options map[controller.DropdownID][]controller.Option
	order   []controller.DropdownID

	title  *widgets.Paragraph
	cells  *widgets.Table
	status *widgets.Paragraph
	alert  *widgets.Paragraph
	layout *ui.Grid

	data   *table.Table
	alerts []string

	render func(...ui.Drawable)
}

type ViewOption func(*View)

func withRenderer(render func(...ui.Drawable)) ViewOption {
	return func(v *View) {
		v.render = render
	}
}

// NewView builds the widgets. The database list is only laid out when the
// source has a database selector.
func NewView(columns []table.Column, hasDatabaseSelector bool, opts ...ViewOption) *View {
	v := &View{
		lists:   map[controller.DropdownID]*widgets.List{},
		options: map[controller.DropdownID][]controller.Option{},
		render:  ui.Render,
	}

	for _, id := range controller.Dropdowns() {
		if id == controller.DatabaseDropdown && !hasDatabaseSelector {
			continue
		}
		l := widgets.NewList()
		l.Title = " " + id.String() + " "
		l.SelectedRowStyle = ui.NewStyle(ui.ColorBlack, ui.ColorWhite)
		l.WrapText = false
		v.lists[id] = l
		v.order = append(v.order, id)
	}

	v.title = widgets.NewParagraph()
	v.title.Title = " statistics "
	v.title.TextStyle = ui.NewStyle(ui.ColorWhite, ui.ColorClear, ui.ModifierBold)

	v.cells = widgets.NewTable()
	v.cells.TextStyle = ui.NewStyle(ui.ColorWhite)
	v.cells.RowSeparator = false
	v.cells.TextAlignment = ui.AlignLeft

	v.status = widgets.NewParagraph()
	v.status.Border = false
	v.status.Text = helpText

	v.alert = widgets.NewParagraph()
	v.alert.Title = " alert "
	v.alert.BorderStyle = ui.NewStyle(ui.ColorRed)
	v.alert.TextStyle = ui.NewStyle(ui.ColorRed, ui.ColorClear, ui.ModifierBold)

	v.layout = ui.NewGrid()
	cols := make([]interface{}, 0, len(v.order))
	for _, id := range v.order {
		cols = append(cols, ui.NewCol(1.0/float64(len(v.order)), v.lists[id]))
	}
	v.layout.Set(ui.NewRow(1.0, cols...))

	v.data = table.New(columns, table.WithDrawHook(func(*table.Table) {
		v.syncTable()
	}))
	v.syncTable()

	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Focusable returns the laid out dropdowns in display order.
func (v *View) Focusable() []controller.DropdownID {
	return append([]controller.DropdownID(nil), v.order...)
}

func (v *View) AppendOptions(id controller.DropdownID, opts []controller.Option) {
	if _, ok := v.lists[id]; !ok {
		return
	}
	v.options[id] = append(v.options[id], opts...)
}

func (v *View) ClearTable(redraw bool) {
	v.data.Clear(redraw)
}

func (v *View) AddRows(rows []models.Row, redraw bool) {
	v.data.AddRows(rows, redraw)
}

func (v *View) SetTitle(title string) {
	v.title.Text = title
}

// Alert queues a modal message. Messages are shown one at a time.
func (v *View) Alert(message string) {
	v.alerts = append(v.alerts, message)
}

func (v *View) Alerting() bool {
	return len(v.alerts) > 0
}

// Dismiss closes the alert currently shown.
func (v *View) Dismiss() {
	if len(v.alerts) > 0 {
		v.alerts = v.alerts[1:]
	}
}

func (v *View) Cursor(id controller.DropdownID) int {
	if l, ok := v.lists[id]; ok {
		return l.SelectedRow
	}
	return 0
}

// SetCursor moves the highlighted row of a list, clamped to its options.
func (v *View) SetCursor(id controller.DropdownID, row int) int {
	l, ok := v.lists[id]
	if !ok {
		return 0
	}
	if row >= len(v.options[id]) {
		row = len(v.options[id]) - 1
	}
	if row < 0 {
		row = 0
	}
	l.SelectedRow = row
	return row
}

func (v *View) SetFocus(focused controller.DropdownID) {
	for id, l := range v.lists {
		if id == focused {
			l.BorderStyle = focusedStyle
		} else {
			l.BorderStyle = ui.Theme.Block.Border
		}
	}
}

// SyncSelection marks the selected options of every list.
func (v *View) SyncSelection(s controller.State) {
	for id, l := range v.lists {
		selected := map[int]bool{}
		for _, i := range s.Dropdown(id).Selected {
			selected[i] = true
		}
		rows := make([]string, len(v.options[id]))
		for i, o := range v.options[id] {
			marker := "  "
			if selected[i] {
				marker = "* "
			}
			rows[i] = marker + o.Label
		}
		l.Rows = rows
	}
}

// Resize lays the widgets out for a terminal of the given size.
func (v *View) Resize(width, height int) {
	listHeight := height / 3
	if listHeight < 5 {
		listHeight = 5
	}
	v.layout.SetRect(0, 0, width, listHeight)
	v.title.SetRect(0, listHeight, width, listHeight+3)
	v.cells.SetRect(0, listHeight+3, width, height-1)
	v.status.SetRect(0, height-1, width, height)
	v.alert.SetRect(width/4, height/2-2, width-width/4, height/2+1)
	v.syncTable()
}

func (v *View) Render() {
	items := []ui.Drawable{v.layout, v.title, v.cells, v.status}
	if len(v.alerts) > 0 {
		v.alert.Text = v.alerts[0] + "  [enter](fg:white) dismiss"
		items = append(items, v.alert)
	}
	v.render(items...)
}

// Rows returns the cells currently drawn in the table.
func (v *View) Rows() [][]string {
	return v.cells.Rows
}

func (v *View) syncTable() {
	columns := v.data.Columns()
	rows := v.data.Rows()

	n := len(columns)
	for _, r := range rows {
		if len(r) > n {
			n = len(r)
		}
	}
	if n == 0 {
		n = 1
	}

	widths := columnWidths(columns, n, v.cells.Inner.Dx())
	out := make([][]string, 0, len(rows)+1)
	for _, r := range rows {
		cells := make([]string, n)
		for i := range cells {
			if i < len(r) {
				cells[i] = table.Fit(r[i], widths[i]-1, v.data.Column(i).Align)
			}
		}
		out = append(out, cells)
	}
	// termui cannot draw a table without rows.
	if len(out) == 0 {
		out = append(out, make([]string, n))
	}

	v.cells.Rows = out
	v.cells.ColumnWidths = widths
}

// columnWidths turns column hints into terminal cell widths. Fixed columns
// keep their hint, auto columns share what is left of total.
func columnWidths(columns []table.Column, n, total int) []int {
	widths := make([]int, n)
	used, auto := 0, 0
	for i := range widths {
		w := 0
		if i < len(columns) {
			w = columns[i].Width
		}
		if w <= 0 {
			auto++
			continue
		}
		widths[i] = max(w+1, minColumnWidth)
		used += widths[i]
	}
	if auto == 0 {
		return widths
	}

	share := max((total-used)/auto, minColumnWidth)
	for i := range widths {
		if widths[i] == 0 {
			widths[i] = share
		}
	}
	return widths
}

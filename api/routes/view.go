package routes

import (
	"github.com/nicolastakashi/stats-viewer/api/models"
	"github.com/nicolastakashi/stats-viewer/internal/controller"
	"github.com/nicolastakashi/stats-viewer/internal/table"
)

// pageView collects what the controller renders during one request.
type pageView struct {
	data   *table.Table
	title  string
	alerts []string
}

func newPageView(columns []table.Column) *pageView {
	return &pageView{data: table.New(columns)}
}

// AppendOptions is a no-op: options are read back from the controller state.
func (v *pageView) AppendOptions(controller.DropdownID, []controller.Option) {}

func (v *pageView) ClearTable(redraw bool) {
	v.data.Clear(redraw)
}

func (v *pageView) AddRows(rows []models.Row, redraw bool) {
	v.data.AddRows(rows, redraw)
}

func (v *pageView) SetTitle(title string) {
	v.title = title
}

func (v *pageView) Alert(message string) {
	v.alerts = append(v.alerts, message)
}

type columnResponse struct {
	Width int    `json:"width,omitempty"`
	Align string `json:"align"`
}

type viewResponse struct {
	Title     string                         `json:"title"`
	Columns   []columnResponse               `json:"columns"`
	Rows      [][]string                     `json:"rows"`
	Alerts    []string                       `json:"alerts"`
	Selection controller.Selection           `json:"selection"`
	Dropdowns map[string]controller.Dropdown `json:"dropdowns"`
	Error     string                         `json:"error,omitempty"`
}

func newViewResponse(s controller.State, v *pageView, err error) viewResponse {
	res := viewResponse{
		Title:     v.title,
		Rows:      v.data.Rows(),
		Alerts:    append([]string{}, v.alerts...),
		Selection: controller.ReadSelection(s),
		Dropdowns: map[string]controller.Dropdown{},
	}
	for _, c := range v.data.Columns() {
		res.Columns = append(res.Columns, columnResponse{Width: c.Width, Align: c.Align.String()})
	}
	for _, id := range controller.Dropdowns() {
		if id == controller.DatabaseDropdown && !s.Variant.HasDatabaseSelector {
			continue
		}
		res.Dropdowns[id.String()] = s.Dropdown(id)
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

type pageOption struct {
	Label    string
	Value    string
	Selected bool
}

type pageDropdown struct {
	Name     string
	Multiple bool
	Options  []pageOption
}

type pageCell struct {
	Text  string
	Align string
}

type pageColumn struct {
	Width int
	Align string
}

type pageData struct {
	Title     string
	Alerts    []string
	Error     string
	Dropdowns []pageDropdown
	Columns   []pageColumn
	Rows      [][]pageCell
}

func newPageData(res viewResponse, columns []table.Column) pageData {
	data := pageData{
		Title:  res.Title,
		Alerts: res.Alerts,
		Error:  res.Error,
	}

	tbl := table.New(columns)
	for _, id := range controller.Dropdowns() {
		d, ok := res.Dropdowns[id.String()]
		if !ok {
			continue
		}
		selected := map[int]bool{}
		for _, i := range d.Selected {
			selected[i] = true
		}
		pd := pageDropdown{Name: id.String(), Multiple: id.Multiple()}
		for i, o := range d.Options {
			pd.Options = append(pd.Options, pageOption{Label: o.Label, Value: o.Value, Selected: selected[i]})
		}
		data.Dropdowns = append(data.Dropdowns, pd)
	}

	for _, c := range res.Columns {
		data.Columns = append(data.Columns, pageColumn{Width: c.Width, Align: c.Align})
	}
	for _, r := range res.Rows {
		cells := make([]pageCell, len(r))
		for i, text := range r {
			cells[i] = pageCell{Text: text, Align: tbl.Column(i).Align.String()}
		}
		data.Rows = append(data.Rows, cells)
	}
	return data
}

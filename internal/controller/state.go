package controller

import (
	"strings"
)

type DropdownID int

const (
	DatabaseDropdown DropdownID = iota
	MonthDropdown
	DayDropdown
	MetricDropdown

	dropdownCount
)

func (d DropdownID) String() string {
	switch d {
	case DatabaseDropdown:
		return "database"
	case MonthDropdown:
		return "month"
	case DayDropdown:
		return "day"
	case MetricDropdown:
		return "metric"
	default:
		return "unknown"
	}
}

// Multiple reports whether the selector accepts any number of selected
// options, including none.
func (d DropdownID) Multiple() bool {
	return d == DatabaseDropdown
}

// Dropdowns lists every selector in display order.
func Dropdowns() []DropdownID {
	return []DropdownID{DatabaseDropdown, MonthDropdown, DayDropdown, MetricDropdown}
}

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Dropdown is the content and selection of one selector. Selected holds
// option indices; more than one index means a multi-selection.
type Dropdown struct {
	Options  []Option `json:"options"`
	Selected []int    `json:"selected"`
}

// Values returns the values of the selected options in selection order.
func (d Dropdown) Values() []string {
	out := make([]string, 0, len(d.Selected))
	for _, i := range d.Selected {
		if i >= 0 && i < len(d.Options) {
			out = append(out, d.Options[i].Value)
		}
	}
	return out
}

// withOptions returns a copy of d with opts appended. Like an HTML select,
// a single-select dropdown selects its first option once it is no longer
// empty; a multiple one starts with nothing selected.
func (d Dropdown) withOptions(opts []Option, multiple bool) Dropdown {
	next := Dropdown{
		Options:  make([]Option, 0, len(d.Options)+len(opts)),
		Selected: append([]int(nil), d.Selected...),
	}
	next.Options = append(next.Options, d.Options...)
	next.Options = append(next.Options, opts...)
	if !multiple && len(next.Selected) == 0 && len(next.Options) > 0 {
		next.Selected = []int{0}
	}
	return next
}

func (d Dropdown) withSelection(indices []int) Dropdown {
	sel := make([]int, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(d.Options) {
			sel = append(sel, i)
		}
	}
	return Dropdown{Options: d.Options, Selected: sel}
}

func (d Dropdown) indicesOf(values []string) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		for i, o := range d.Options {
			if o.Value == v {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// Variant describes how statistics paths are laid out.
type Variant struct {
	BasePathTemplate    string
	HasDatabaseSelector bool
}

var (
	DatabaseVariant = Variant{
		BasePathTemplate:    "{database}/{interval}/{metric}.json",
		HasDatabaseSelector: true,
	}
	FixedPathVariant = Variant{
		BasePathTemplate:    "/tmp/stats_http/{interval}/{metric}.json",
		HasDatabaseSelector: false,
	}
)

// Path expands the template for sel.
func (v Variant) Path(sel Selection) string {
	return strings.NewReplacer(
		"{database}", sel.Database,
		"{interval}", sel.Interval,
		"{metric}", sel.Metric,
	).Replace(v.BasePathTemplate)
}

type Settings struct {
	Variant       Variant
	DatabasesPath string
	FloorYear     int
	Metrics       []Option
}

// State is the whole UI state of the controller. It is a value: Update
// never mutates the State it receives.
type State struct {
	Variant       Variant
	DatabasesPath string
	FloorYear     int

	Dropdowns   [dropdownCount]Dropdown
	Initialized bool
	// Token identifies the latest statistics request; responses carrying
	// any other token are discarded.
	Token uint64
	Title string

	metrics []Option
}

func NewState(s Settings) State {
	floor := s.FloorYear
	if floor <= 0 {
		floor = DefaultFloorYear
	}
	path := s.DatabasesPath
	if path == "" {
		path = "databases.json"
	}
	return State{
		Variant:       s.Variant,
		DatabasesPath: path,
		FloorYear:     floor,
		metrics:       append([]Option(nil), s.Metrics...),
	}
}

func (s State) Dropdown(id DropdownID) Dropdown {
	if id < 0 || id >= dropdownCount {
		return Dropdown{}
	}
	return s.Dropdowns[id]
}

package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/nicolastakashi/stats-viewer/api/models"
	"github.com/nicolastakashi/stats-viewer/internal/statsclient"
)

const (
	MessageDataNotFound      = "data not found"
	MessageDatabasesNotFound = "databases not found"
)

// Event is something that happened to the widget: a user action or the
// completion of a fetch.
type Event interface {
	isEvent()
}

type Initialized struct {
	Now time.Time
}

type DatabasesLoaded struct {
	List *models.DatabaseList
}

type DatabasesFailed struct {
	Err error
}

// Selected replaces the selection of a dropdown by option index.
type Selected struct {
	Dropdown DropdownID
	Indices  []int
}

// SelectedValues replaces the selection of a dropdown by option value.
// Values without a matching option are ignored.
type SelectedValues struct {
	Dropdown DropdownID
	Values   []string
}

type GoClicked struct{}

type StatisticsLoaded struct {
	Token     uint64
	Selection Selection
	Response  *models.StatisticsResponse
}

type StatisticsFailed struct {
	Token     uint64
	Selection Selection
	Err       error
}

func (Initialized) isEvent()      {}
func (DatabasesLoaded) isEvent()  {}
func (DatabasesFailed) isEvent()  {}
func (Selected) isEvent()         {}
func (SelectedValues) isEvent()   {}
func (GoClicked) isEvent()        {}
func (StatisticsLoaded) isEvent() {}
func (StatisticsFailed) isEvent() {}

// Effect describes a side effect Update wants performed. Fetch effects are
// IO; every other effect mutates a View.
type Effect interface {
	isEffect()
}

type FetchDatabases struct {
	Path string
}

type FetchStatistics struct {
	Token     uint64
	Path      string
	Selection Selection
}

type AppendOptions struct {
	Dropdown DropdownID
	Options  []Option
}

type ClearTable struct {
	Redraw bool
}

type AddRows struct {
	Rows   []models.Row
	Redraw bool
}

type SetTitle struct {
	Text string
}

type ShowAlert struct {
	Message string
}

func (FetchDatabases) isEffect()  {}
func (FetchStatistics) isEffect() {}
func (AppendOptions) isEffect()   {}
func (ClearTable) isEffect()      {}
func (AddRows) isEffect()         {}
func (SetTitle) isEffect()        {}
func (ShowAlert) isEffect()       {}

// Title formats the table caption for a statistics document.
func Title(r *models.StatisticsResponse) string {
	return fmt.Sprintf("%s(%s) : %s", r.Metric, r.Unit, r.Interval)
}

// DatabaseOptions converts a database list into selector options. Entries
// without a label are skipped; order is preserved.
func DatabaseOptions(list *models.DatabaseList) []Option {
	if list == nil {
		return nil
	}
	opts := make([]Option, 0, len(list.Bases))
	for _, b := range list.Bases {
		if b.Label == "" {
			continue
		}
		opts = append(opts, Option{Label: b.Label, Value: b.Path})
	}
	return opts
}

// Update applies ev to s and returns the next state with the effects to perform.
func Update(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case Initialized:
		return initialize(s, e.Now)

	case DatabasesLoaded:
		if !s.Variant.HasDatabaseSelector || e.List == nil {
			return s, nil
		}
		opts := DatabaseOptions(e.List)
		if len(opts) == 0 {
			return s, nil
		}
		s.Dropdowns[DatabaseDropdown] = s.Dropdowns[DatabaseDropdown].withOptions(opts, DatabaseDropdown.Multiple())
		return s, []Effect{AppendOptions{Dropdown: DatabaseDropdown, Options: opts}}

	case DatabasesFailed:
		if errors.Is(e.Err, statsclient.ErrNotFound) {
			return s, []Effect{ShowAlert{Message: MessageDatabasesNotFound}}
		}
		return s, nil

	case Selected:
		if e.Dropdown < 0 || e.Dropdown >= dropdownCount {
			return s, nil
		}
		s.Dropdowns[e.Dropdown] = s.Dropdowns[e.Dropdown].withSelection(e.Indices)
		return s, nil

	case SelectedValues:
		if e.Dropdown < 0 || e.Dropdown >= dropdownCount {
			return s, nil
		}
		d := s.Dropdowns[e.Dropdown]
		s.Dropdowns[e.Dropdown] = d.withSelection(d.indicesOf(e.Values))
		return s, nil

	case GoClicked:
		sel := ReadSelection(s)
		s.Token++
		return s, []Effect{FetchStatistics{
			Token:     s.Token,
			Path:      s.Variant.Path(sel),
			Selection: sel,
		}}

	case StatisticsLoaded:
		if e.Token != s.Token || e.Response == nil {
			return s, nil
		}
		var effects []Effect
		if e.Response.HasData() {
			effects = append(effects,
				ClearTable{Redraw: false},
				AddRows{Rows: e.Response.Statistics, Redraw: true},
			)
		} else {
			effects = append(effects, ClearTable{Redraw: true})
		}
		s.Title = Title(e.Response)
		return s, append(effects, SetTitle{Text: s.Title})

	case StatisticsFailed:
		if e.Token != s.Token {
			return s, nil
		}
		if errors.Is(e.Err, statsclient.ErrNotFound) {
			return s, []Effect{
				ClearTable{Redraw: true},
				ShowAlert{Message: MessageDataNotFound},
			}
		}
		return s, nil
	}
	return s, nil
}

func initialize(s State, now time.Time) (State, []Effect) {
	if s.Initialized {
		return s, nil
	}
	s.Initialized = true

	intervals := ComputeIntervalOptions(now, s.FloorYear)
	s.Dropdowns[MonthDropdown] = s.Dropdowns[MonthDropdown].withOptions(intervals.Months, MonthDropdown.Multiple())
	s.Dropdowns[DayDropdown] = s.Dropdowns[DayDropdown].withOptions(intervals.Days, DayDropdown.Multiple())

	effects := []Effect{
		AppendOptions{Dropdown: MonthDropdown, Options: intervals.Months},
		AppendOptions{Dropdown: DayDropdown, Options: intervals.Days},
	}

	if len(s.metrics) > 0 {
		s.Dropdowns[MetricDropdown] = s.Dropdowns[MetricDropdown].withOptions(s.metrics, MetricDropdown.Multiple())
		effects = append(effects, AppendOptions{Dropdown: MetricDropdown, Options: s.metrics})
	}

	if s.Variant.HasDatabaseSelector {
		effects = append(effects, FetchDatabases{Path: s.DatabasesPath})
	}
	return s, effects
}

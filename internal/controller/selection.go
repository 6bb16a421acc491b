package controller

import (
	"strings"
)

type Selection struct {
	Database string `json:"database"`
	Interval string `json:"interval"`
	Metric   string `json:"metric"`
}

// ReadSelection derives the current selection from the dropdowns. Selected
// values of a dropdown are concatenated; a blank day keeps the interval at
// month granularity.
func ReadSelection(s State) Selection {
	var sel Selection

	if s.Variant.HasDatabaseSelector {
		sel.Database = strings.Join(s.Dropdown(DatabaseDropdown).Values(), "")
	}

	var interval strings.Builder
	for _, v := range s.Dropdown(MonthDropdown).Values() {
		interval.WriteString(v)
	}
	for _, v := range s.Dropdown(DayDropdown).Values() {
		if !isBlank(v) {
			interval.WriteString("/")
			interval.WriteString(v)
		}
	}
	sel.Interval = interval.String()

	sel.Metric = strings.Join(s.Dropdown(MetricDropdown).Values(), "")
	return sel
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

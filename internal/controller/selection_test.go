package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func initializedState(t *testing.T, variant Variant) State {
	t.Helper()
	s := NewState(Settings{
		Variant: variant,
		Metrics: []Option{
			{Label: "HTTP duration", Value: "http_duration"},
			{Label: "DB calls", Value: "db_calls"},
		},
	})
	s, _ = Update(s, Initialized{Now: time.Date(2023, time.March, 20, 0, 0, 0, 0, time.UTC)})
	return s
}

func TestReadSelection_Interval(t *testing.T) {
	tests := []struct {
		name     string
		month    string
		day      []string
		expected string
	}{
		{name: "month only", month: "202303", day: []string{""}, expected: "202303"},
		{name: "specific day", month: "202303", day: []string{"15"}, expected: "202303/15"},
		{name: "no day selected", month: "202212", day: nil, expected: "202212"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := initializedState(t, FixedPathVariant)
			s, _ = Update(s, SelectedValues{Dropdown: MonthDropdown, Values: []string{tt.month}})
			s, _ = Update(s, SelectedValues{Dropdown: DayDropdown, Values: tt.day})

			assert.Equal(t, tt.expected, ReadSelection(s).Interval)
		})
	}
}

func TestReadSelection_WhitespaceDayIsBlank(t *testing.T) {
	s := State{Variant: FixedPathVariant}
	s.Dropdowns[MonthDropdown] = Dropdown{Options: []Option{{Value: "202303"}}, Selected: []int{0}}
	s.Dropdowns[DayDropdown] = Dropdown{Options: []Option{{Value: "  \t"}}, Selected: []int{0}}

	assert.Equal(t, "202303", ReadSelection(s).Interval)
}

func TestReadSelection_DefaultsToFirstOptions(t *testing.T) {
	s := initializedState(t, DatabaseVariant)

	sel := ReadSelection(s)
	assert.Equal(t, Selection{Database: "", Interval: "202303", Metric: "http_duration"}, sel)
}

func TestReadSelection_ConcatenatesDatabases(t *testing.T) {
	s := State{Variant: DatabaseVariant}
	s.Dropdowns[DatabaseDropdown] = Dropdown{
		Options:  []Option{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}},
		Selected: []int{0, 1},
	}

	assert.Equal(t, "ab", ReadSelection(s).Database)
}

func TestReadSelection_IgnoresDatabaseWithoutSelector(t *testing.T) {
	s := State{Variant: FixedPathVariant}
	s.Dropdowns[DatabaseDropdown] = Dropdown{Options: []Option{{Value: "prod"}}, Selected: []int{0}}

	assert.Equal(t, "", ReadSelection(s).Database)
}

func TestVariant_Path(t *testing.T) {
	sel := Selection{Database: "prod", Interval: "202303/15", Metric: "http_duration"}

	assert.Equal(t, "prod/202303/15/http_duration.json", DatabaseVariant.Path(sel))
	assert.Equal(t, "/tmp/stats_http/202303/15/http_duration.json", FixedPathVariant.Path(sel))
}

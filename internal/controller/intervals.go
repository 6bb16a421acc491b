package controller

import (
	"fmt"
	"time"
)

const (
	DefaultFloorYear = 2011

	// AggregationLabel is the label of the day option that selects a whole month.
	AggregationLabel = "aggregation"
)

type IntervalOptions struct {
	Months []Option `json:"months"`
	Days   []Option `json:"days"`
}

// ComputeIntervalOptions lists the selectable months from now back to
// January of floorYear, newest first, and the days of a month. Months after
// the current one are never offered.
func ComputeIntervalOptions(now time.Time, floorYear int) IntervalOptions {
	year, month := now.Year(), int(now.Month())

	var months []Option
	if year >= floorYear {
		months = make([]Option, 0, (year-floorYear+1)*12)
	}
	for y := year; y >= floorYear; y-- {
		for m := 12; m >= 1; m-- {
			if y == year && m > month {
				continue
			}
			months = append(months, Option{
				Label: fmt.Sprintf("%d-%02d", y, m),
				Value: fmt.Sprintf("%d%02d", y, m),
			})
		}
	}

	days := make([]Option, 0, 32)
	days = append(days, Option{Label: AggregationLabel, Value: ""})
	for d := 1; d <= 31; d++ {
		v := fmt.Sprintf("%02d", d)
		days = append(days, Option{Label: v, Value: v})
	}

	return IntervalOptions{Months: months, Days: days}
}

package controller

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeIntervalOptions_Months(t *testing.T) {
	dates := []time.Time{
		time.Date(2011, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2011, time.December, 31, 23, 0, 0, 0, time.UTC),
		time.Date(2023, time.March, 15, 12, 0, 0, 0, time.UTC),
		time.Date(2026, time.October, 17, 8, 30, 0, 0, time.UTC),
	}

	for _, now := range dates {
		t.Run(now.Format("2006-01-02"), func(t *testing.T) {
			opts := ComputeIntervalOptions(now, DefaultFloorYear)

			want := map[string]bool{}
			for y := DefaultFloorYear; y <= now.Year(); y++ {
				for m := 1; m <= 12; m++ {
					if y == now.Year() && m > int(now.Month()) {
						continue
					}
					want[fmt.Sprintf("%d%02d", y, m)] = true
				}
			}

			require.Len(t, opts.Months, len(want))
			prev := ""
			for _, o := range opts.Months {
				assert.Len(t, o.Value, 6)
				assert.True(t, want[o.Value], "unexpected month %s", o.Value)
				assert.Equal(t, o.Value[:4]+"-"+o.Value[4:], o.Label)
				if prev != "" {
					assert.Less(t, o.Value, prev, "months must be descending")
				}
				prev = o.Value
			}

			current := fmt.Sprintf("%d%02d", now.Year(), int(now.Month()))
			assert.Equal(t, current, opts.Months[0].Value)
			assert.Equal(t, fmt.Sprintf("%d01", DefaultFloorYear), opts.Months[len(opts.Months)-1].Value)
		})
	}
}

func TestComputeIntervalOptions_Days(t *testing.T) {
	for _, now := range []time.Time{
		time.Date(2012, time.February, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.November, 30, 0, 0, 0, 0, time.UTC),
	} {
		opts := ComputeIntervalOptions(now, DefaultFloorYear)

		require.Len(t, opts.Days, 32)
		assert.Equal(t, Option{Label: AggregationLabel, Value: ""}, opts.Days[0])
		for i := 1; i <= 31; i++ {
			v := fmt.Sprintf("%02d", i)
			assert.Equal(t, Option{Label: v, Value: v}, opts.Days[i])
		}
	}
}

func TestComputeIntervalOptions_BeforeFloor(t *testing.T) {
	opts := ComputeIntervalOptions(time.Date(2010, time.June, 1, 0, 0, 0, 0, time.UTC), DefaultFloorYear)
	assert.Empty(t, opts.Months)
	assert.Len(t, opts.Days, 32)
}

func TestComputeIntervalOptions_CustomFloor(t *testing.T) {
	opts := ComputeIntervalOptions(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), 2023)
	values := make([]string, 0, len(opts.Months))
	for _, o := range opts.Months {
		values = append(values, o.Value)
	}
	assert.Equal(t, []string{
		"202402", "202401",
		"202312", "202311", "202310", "202309", "202308", "202307",
		"202306", "202305", "202304", "202303", "202302", "202301",
	}, values)
}

package table

import (
	"encoding/json"
	"testing"

	"github.com/nicolastakashi/stats-viewer/api/models"
	"github.com/stretchr/testify/assert"
)

func TestTable_AddRowsKeepsColumns(t *testing.T) {
	cols := []Column{{Width: 13}, {}, {Width: 2, Align: AlignRight}}
	tbl := New(cols)

	tbl.AddRows([]models.Row{
		{"GET /", "users", json.Number("12")},
		{"POST /", nil, 3.5},
	}, true)

	assert.Equal(t, cols, tbl.Columns())
	assert.Equal(t, [][]string{
		{"GET /", "users", "12"},
		{"POST /", "", "3.5"},
	}, tbl.Rows())

	tbl.Clear(false)
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, cols, tbl.Columns())
}

func TestTable_DrawHook(t *testing.T) {
	draws := 0
	tbl := New(nil, WithDrawHook(func(*Table) { draws++ }))

	tbl.Clear(false)
	assert.Equal(t, 0, draws)
	assert.True(t, tbl.Stale())

	tbl.AddRows([]models.Row{{"a"}}, true)
	assert.Equal(t, 1, draws)
	assert.False(t, tbl.Stale())

	tbl.Clear(true)
	assert.Equal(t, 2, draws)
	assert.False(t, tbl.Stale())
}

func TestTable_Pad(t *testing.T) {
	tbl := New([]Column{{Width: 5}, {Width: 4, Align: AlignRight}, {}})

	assert.Equal(t, "ab   ", tbl.Pad(0, "ab"))
	assert.Equal(t, "  12", tbl.Pad(1, "12"))
	assert.Equal(t, "toolong", tbl.Pad(1, "toolong"))
	assert.Equal(t, "auto", tbl.Pad(2, "auto"))
	assert.Equal(t, "unconfigured", tbl.Pad(7, "unconfigured"))
}

func TestFit(t *testing.T) {
	assert.Equal(t, "   7", Fit("7", 4, AlignRight))
	assert.Equal(t, "7   ", Fit("7", 4, AlignLeft))
	assert.Equal(t, "7", Fit("7", 0, AlignRight))
	assert.Equal(t, "éé  ", Fit("éé", 4, AlignLeft))
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string", in: "ms", want: "ms"},
		{name: "json number keeps text", in: json.Number("1.50"), want: "1.50"},
		{name: "float", in: 0.25, want: "0.25"},
		{name: "int", in: 42, want: "42"},
		{name: "bool", in: true, want: "true"},
		{name: "object", in: map[string]any{"a": 1}, want: `{"a":1}`},
		{name: "array", in: []any{"x", json.Number("2")}, want: `["x",2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCell(tt.in))
		})
	}
}

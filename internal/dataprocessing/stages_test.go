package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetclean/pkg/contracts/domain"
)

// newTable builds a table from column names and rows of Go scalars.
func newTable(t *testing.T, columns []string, rows ...[]any) *domain.Table {
	t.Helper()
	tbl, err := domain.NewTable("test.xlsx", columns)
	require.NoError(t, err)
	for _, r := range rows {
		vals := make([]domain.Value, len(r))
		for i, x := range r {
			v, ok := domain.ValueOf(x)
			require.True(t, ok, "unsupported cell %T", x)
			vals[i] = v
		}
		require.NoError(t, tbl.AppendRow(vals))
	}
	return tbl
}

func column(t *testing.T, tbl *domain.Table, name string) []any {
	t.Helper()
	vals, ok := tbl.Column(name)
	require.True(t, ok, "column %q missing", name)
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v.Interface()
	}
	return out
}

func TestTrimColumns(t *testing.T) {
	tbl := newTable(t, []string{"Location", "By", "Notes"},
		[]any{"  Praha, CZ ", "\tJohn", "  keep  "},
		[]any{42.0, nil, " x"},
		[]any{"Brno, CZ", " ", "y"},
	)

	changed := TrimColumns(tbl, []string{"Location", "By", "Missing_Column"})

	assert.Equal(t, 3, changed)
	assert.Equal(t, []any{"Praha, CZ", 42.0, "Brno, CZ"}, column(t, tbl, "Location"))
	assert.Equal(t, []any{"John", nil, ""}, column(t, tbl, "By"))
	assert.Equal(t, []any{"  keep  ", " x", "y"}, column(t, tbl, "Notes"), "untargeted column must not change")

	assert.Zero(t, TrimColumns(tbl, []string{"Location", "By"}), "second pass must be a no-op")
	assert.Equal(t, []any{"John", nil, ""}, column(t, tbl, "By"))
}

func TestFillDown(t *testing.T) {
	tests := []struct {
		name    string
		values  []any
		want    []any
		filled  int
		leading int
	}{
		{
			name:   "merged cells",
			values: []any{1.0, nil, nil, 2.0, nil},
			want:   []any{1.0, 1.0, 1.0, 2.0, 2.0},
			filled: 3,
		},
		{
			name:    "leading nulls stay null",
			values:  []any{nil, nil, "SN-1", nil},
			want:    []any{nil, nil, "SN-1", "SN-1"},
			filled:  1,
			leading: 2,
		},
		{
			name:   "no nulls",
			values: []any{"a", "b"},
			want:   []any{"a", "b"},
		},
		{
			name:    "all null",
			values:  []any{nil, nil},
			want:    []any{nil, nil},
			leading: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([][]any, len(tt.values))
			for i, v := range tt.values {
				rows[i] = []any{v, "x"}
			}
			tbl := newTable(t, []string{"Serial_Number", "Other"}, rows...)

			stats, ok := FillDown(tbl, "Serial_Number")
			require.True(t, ok)
			assert.Equal(t, tt.want, column(t, tbl, "Serial_Number"))
			assert.Equal(t, tt.filled, stats.Filled)
			assert.Equal(t, tt.leading, stats.LeadingNulls)
		})
	}
}

func TestFillDown_OnlyLeadingRunRemainsNull(t *testing.T) {
	tbl := newTable(t, []string{"Serial_Number"},
		[]any{nil}, []any{"A"}, []any{nil}, []any{nil}, []any{"B"}, []any{nil},
	)
	_, ok := FillDown(tbl, "Serial_Number")
	require.True(t, ok)

	vals, _ := tbl.Column("Serial_Number")
	seenValue := false
	for i, v := range vals {
		if !v.IsNull() {
			seenValue = true
			continue
		}
		assert.False(t, seenValue, "row %d is null after a value was seen", i)
	}
}

func TestFillDown_MissingColumn(t *testing.T) {
	tbl := newTable(t, []string{"Other"}, []any{nil})
	_, ok := FillDown(tbl, "Serial_Number")
	assert.False(t, ok)
	assert.Equal(t, []any{nil}, column(t, tbl, "Other"))
}

func TestCountryFromLocation(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Value
		want domain.Value
	}{
		{"full address", domain.Text("123 Main St, Springfield, US"), domain.Text("US")},
		{"no comma", domain.Text("  Czech Republic "), domain.Text("Czech Republic")},
		{"trailing comma", domain.Text("Praha,"), domain.Text("")},
		{"blank", domain.Text("   "), domain.Null()},
		{"null", domain.Null(), domain.Null()},
		{"number", domain.Number(12), domain.Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountryFromLocation(tt.in))
		})
	}
}

func TestDerivedColumnExtractor(t *testing.T) {
	tbl := newTable(t, []string{"Location"},
		[]any{"X, US"},
		[]any{nil},
		[]any{"Y, CA"},
	)
	col := &Collector{}
	x := NewDerivedColumnExtractor(col, CountryExtraction, domain.ColumnExtractionRule{
		Source: "Address", New: "City", Transform: CountryFromLocation,
	})

	written, err := x.Extract(t.Context(), tbl)
	require.NoError(t, err)

	assert.Equal(t, 1, written)
	assert.Equal(t, []string{"Location", "Country"}, tbl.Columns())
	assert.Equal(t, []any{"US", nil, "CA"}, column(t, tbl, "Country"))
	assert.Len(t, col.OfKind(domain.DiagColumnDerived), 1)

	missing := col.OfKind(domain.DiagColumnNotFound)
	require.Len(t, missing, 1)
	assert.Equal(t, "Address", missing[0].Column)
}

func TestDerivedColumnExtractor_OverwritesAndSurvivesPanics(t *testing.T) {
	tbl := newTable(t, []string{"Location", "Country"},
		[]any{"X, US", "old"},
		[]any{"boom", "old"},
	)
	x := NewDerivedColumnExtractor(nil, domain.ColumnExtractionRule{
		Source: "Location",
		New:    "Country",
		Transform: func(v domain.Value) domain.Value {
			if s, _ := v.AsText(); s == "boom" {
				panic("bad input")
			}
			return CountryFromLocation(v)
		},
	})

	_, err := x.Extract(t.Context(), tbl)
	require.NoError(t, err)

	assert.Equal(t, []string{"Location", "Country"}, tbl.Columns())
	assert.Equal(t, []any{"US", nil}, column(t, tbl, "Country"))
}

package extract

import (
	"fmt"
	"math"
	"strconv"
)

const (
	ColumnTime   = "time_s"
	ColumnTrace1 = "trace_1_v"
	ColumnTrace2 = "trace_2_v"
)

// Columns lists the normalized column names in output order.
var Columns = []string{ColumnTime, ColumnTrace1, ColumnTrace2}

type Row struct {
	TimeS   float64 `yaml:"time_s"`
	Trace1V float64 `yaml:"trace_1_v"`
	Trace2V float64 `yaml:"trace_2_v"`
}

// Table is the normalized two-channel trace. Metadata is created per
// extraction and never shared between tables.
type Table struct {
	Rows     []Row             `yaml:"rows"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

func NewTable(rows []Row) *Table {
	return &Table{Rows: rows, Metadata: make(map[string]string)}
}

func (t *Table) Len() int { return len(t.Rows) }

func (t *Table) Time() []float64   { return t.column(func(r Row) float64 { return r.TimeS }) }
func (t *Table) Trace1() []float64 { return t.column(func(r Row) float64 { return r.Trace1V }) }
func (t *Table) Trace2() []float64 { return t.column(func(r Row) float64 { return r.Trace2V }) }

func (t *Table) column(get func(Row) float64) []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = get(r)
	}
	return out
}

// AdjustTime adds |time_s[0]| to every time value and returns the shift.
// A table starting at a non-positive time ends up starting at zero.
func AdjustTime(t *Table) (float64, error) {
	if len(t.Rows) == 0 {
		return 0, ErrNoRows
	}
	shift := math.Abs(t.Rows[0].TimeS)
	for i := range t.Rows {
		t.Rows[i].TimeS += shift
	}
	t.SetMeta("t_adjust", strconv.FormatFloat(shift, 'g', -1, 64))
	return shift, nil
}

// Validate reports the first non-finite cell, if any.
func Validate(t *Table) error {
	if len(t.Rows) == 0 {
		return ErrNoRows
	}
	for i, r := range t.Rows {
		for j, v := range []float64{r.TimeS, r.Trace1V, r.Trace2V} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("row %d column %s: non-finite value %v", i, Columns[j], v)
			}
		}
	}
	return nil
}

// SetMeta records a descriptive key on the table.
func (t *Table) SetMeta(key, value string) {
	if t.Metadata == nil {
		t.Metadata = make(map[string]string)
	}
	t.Metadata[key] = value
}

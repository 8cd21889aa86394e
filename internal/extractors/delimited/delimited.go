// Package delimited reads oscilloscope exports saved as comma-separated text.
//
// The export has a header row naming the channels, followed by one units row
// and then the samples. Only the time axis ("x-axis") and channels "3" and
// "4" are kept.
package delimited

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/toricodesthings/trace-extraction-service/internal/extract"
)

// Source header names, in output column order.
var sourceColumns = []string{"x-axis", "3", "4"}

// Cells treated as missing, as written by common spreadsheet and dataframe tools.
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

const utf8BOM = "\ufeff"

type Extractor struct {
	path string
}

func New(path string) *Extractor { return &Extractor{path: path} }

// Factory adapts New to extract.Factory.
func Factory(path string) extract.Extractor { return New(path) }

func (e *Extractor) Name() string { return "trace/csv" }
func (e *Extractor) Path() string { return e.path }

func Types() []string      { return []string{"text/csv"} }
func Extensions() []string { return []string{".csv"} }

func (e *Extractor) Extract(ctx context.Context) (*extract.Table, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := os.Open(e.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, &extract.SchemaError{Path: e.path, Missing: sourceColumns}
	}
	if err != nil {
		return nil, e.wrapCSV(err)
	}
	idx, err := e.columnIndexes(header)
	if err != nil {
		return nil, err
	}

	rows := make([]extract.Row, 0, 1024)
	dataRows, dropped := 0, 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, e.wrapCSV(err)
		}
		dataRows++
		// The first row under the header carries units, not samples.
		if dataRows == 1 {
			continue
		}

		cells, ok := pick(rec, idx)
		if !ok {
			dropped++
			continue
		}

		var vals [3]float64
		for i, c := range cells {
			v, err := parseDecimal(c)
			if err != nil {
				line, _ := r.FieldPos(idx[i])
				return nil, &extract.ParseError{Path: e.path, Line: line, Column: extract.Columns[i], Value: c, Err: err}
			}
			vals[i] = v
		}
		rows = append(rows, extract.Row{TimeS: vals[0], Trace1V: vals[1], Trace2V: vals[2]})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", e.path, extract.ErrNoRows)
	}

	t := extract.NewTable(rows)
	if _, err := extract.AdjustTime(t); err != nil {
		return nil, err
	}
	// the shift itself can overflow an extreme time axis
	if err := extract.Validate(t); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", e.path, extract.ErrParse, err)
	}
	t.SetMeta("source", e.path)
	t.SetMeta("format", e.Name())
	t.SetMeta("rows", strconv.Itoa(len(rows)))
	t.SetMeta("dropped_rows", strconv.Itoa(dropped))
	return t, nil
}

func (e *Extractor) columnIndexes(header []string) ([3]int, error) {
	var idx [3]int
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		if _, seen := pos[h]; !seen {
			pos[h] = i
		}
	}

	var missing []string
	for i, name := range sourceColumns {
		p, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx[i] = p
	}
	if len(missing) > 0 {
		return idx, &extract.SchemaError{Path: e.path, Missing: missing}
	}
	return idx, nil
}

func (e *Extractor) wrapCSV(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &extract.ParseError{Path: e.path, Line: pe.Line, Err: err}
	}
	return fmt.Errorf("read %s: %w", e.path, err)
}

// parseDecimal accepts finite decimal notation only; strconv would also take
// hex floats such as 0x1p-2.
func parseDecimal(c string) (float64, error) {
	digits := strings.TrimLeft(c, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, fmt.Errorf("hexadecimal notation")
	}
	v, err := strconv.ParseFloat(c, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value")
	}
	return v, nil
}

// pick returns the selected cells of rec, or false when any is missing.
func pick(rec []string, idx [3]int) ([3]string, bool) {
	var out [3]string
	for i, p := range idx {
		if p >= len(rec) {
			return out, false
		}
		c := strings.TrimSpace(rec[p])
		if _, na := naValues[c]; na {
			return out, false
		}
		out[i] = c
	}
	return out, true
}

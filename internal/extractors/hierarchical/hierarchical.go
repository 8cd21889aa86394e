// Package hierarchical reads two-channel traces from HDF5 containers.
//
// A container holds one dataset per channel at /data/traces/AP1 and
// /data/traces/AP2. Each is either a compound array with a "t" member and a
// voltage member, or an N×2 numeric array of (time, voltage) pairs. Integer
// and single-precision elements are widened to float64. Channel two is
// joined onto channel one by exact time value.
package hierarchical

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/toricodesthings/trace-extraction-service/internal/extract"
	"gonum.org/v1/hdf5"
)

const (
	DatasetTrace1 = "/data/traces/AP1"
	DatasetTrace2 = "/data/traces/AP2"
)

// libhdf5 is not necessarily built thread-safe; all handles are used under mu.
var mu sync.Mutex

type Extractor struct {
	path string
}

func New(path string) *Extractor { return &Extractor{path: path} }

// Factory adapts New to extract.Factory.
func Factory(path string) extract.Extractor { return New(path) }

func (e *Extractor) Name() string { return "trace/hdf5" }
func (e *Extractor) Path() string { return e.path }

func Types() []string      { return []string{"application/x-hdf5", "application/x-hdf"} }
func Extensions() []string { return []string{".h5", ".hdf5", ".he5"} }

type sample struct {
	t, v float64
}

func (e *Extractor) Extract(ctx context.Context) (*extract.Table, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if _, err := os.Stat(e.path); err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()

	if !hdf5.IsHDF5(e.path) {
		return nil, e.dataErr("not an HDF5 container", nil)
	}
	f, err := hdf5.OpenFile(e.path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, e.dataErr("open container", err)
	}
	defer f.Close()

	ap1, err := e.readTrace(f, DatasetTrace1)
	if err != nil {
		return nil, err
	}
	ap2, err := e.readTrace(f, DatasetTrace2)
	if err != nil {
		return nil, err
	}

	rows, unmatched := leftJoin(ap1, ap2)
	if unmatched > 0 {
		return nil, e.dataErr(fmt.Sprintf("%d of %d samples in %s have no matching time in %s",
			unmatched, len(ap1), DatasetTrace1, DatasetTrace2), nil)
	}

	t := extract.NewTable(rows)
	if _, err := extract.AdjustTime(t); err != nil {
		return nil, e.dataErr("", err)
	}
	if err := extract.Validate(t); err != nil {
		return nil, e.dataErr("", err)
	}
	t.SetMeta("source", e.path)
	t.SetMeta("format", e.Name())
	t.SetMeta("rows", strconv.Itoa(len(rows)))
	t.SetMeta("ap2_rows", strconv.Itoa(len(ap2)))
	return t, nil
}

func (e *Extractor) readTrace(f *hdf5.File, name string) ([]sample, error) {
	if !linkExists(f, name) {
		return nil, e.dataErr(fmt.Sprintf("dataset %s not found", name), nil)
	}

	ds, err := f.OpenDataset(name)
	if err != nil {
		return nil, e.dataErr("open "+name, err)
	}
	defer ds.Close()

	dt, err := ds.Datatype()
	if err != nil {
		return nil, e.dataErr("datatype of "+name, err)
	}
	defer dt.Close()

	space := ds.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, e.dataErr("shape of "+name, err)
	}

	lay, err := layoutOf(dt, dims)
	if err != nil {
		return nil, e.dataErr("dataset "+name, err)
	}
	if lay.records == 0 {
		return nil, e.dataErr(fmt.Sprintf("dataset %s is empty", name), nil)
	}

	buf := make([]byte, lay.records*lay.stride)
	if err := ds.Read(&buf); err != nil {
		return nil, e.dataErr("read "+name, err)
	}
	return lay.samples(buf), nil
}

// leftJoin keeps every ap1 sample in order and attaches the first ap2 value
// recorded at the same time. unmatched counts ap1 samples with no partner.
func leftJoin(ap1, ap2 []sample) (rows []extract.Row, unmatched int) {
	byTime := make(map[float64]float64, len(ap2))
	for _, s := range ap2 {
		if _, ok := byTime[s.t]; !ok {
			byTime[s.t] = s.v
		}
	}

	rows = make([]extract.Row, 0, len(ap1))
	for _, s := range ap1 {
		v, ok := byTime[s.t]
		if !ok {
			unmatched++
			continue
		}
		rows = append(rows, extract.Row{TimeS: s.t, Trace1V: s.v, Trace2V: v})
	}
	return rows, unmatched
}

// linkExists walks name one component at a time; H5Lexists fails when an
// intermediate group is missing.
func linkExists(f *hdf5.File, name string) bool {
	cur := ""
	for _, part := range strings.Split(strings.Trim(name, "/"), "/") {
		cur += "/" + part
		if !f.LinkExists(cur) {
			return false
		}
	}
	return true
}

func (e *Extractor) dataErr(reason string, err error) error {
	return &extract.DataError{Path: e.path, Reason: reason, Err: err}
}

package hierarchical

import (
	"encoding/binary"
	"fmt"
	"math"

	"gonum.org/v1/hdf5"
)

// TimeField names the time member of a compound trace dataset.
const TimeField = "t"

// numKind describes a native numeric element as stored in memory.
type numKind struct {
	size   int
	float  bool
	signed bool
}

// Dataset reads hand back the file representation unchanged, so only types
// equal to a native type can be decoded in place.
var nativeKinds = []struct {
	dt   *hdf5.Datatype
	kind numKind
}{
	{hdf5.T_NATIVE_DOUBLE, numKind{8, true, true}},
	{hdf5.T_NATIVE_FLOAT, numKind{4, true, true}},
	{hdf5.T_NATIVE_INT8, numKind{1, false, true}},
	{hdf5.T_NATIVE_UINT8, numKind{1, false, false}},
	{hdf5.T_NATIVE_INT16, numKind{2, false, true}},
	{hdf5.T_NATIVE_UINT16, numKind{2, false, false}},
	{hdf5.T_NATIVE_INT32, numKind{4, false, true}},
	{hdf5.T_NATIVE_UINT32, numKind{4, false, false}},
	{hdf5.T_NATIVE_INT64, numKind{8, false, true}},
	{hdf5.T_NATIVE_UINT64, numKind{8, false, false}},
}

func kindOf(dt *hdf5.Datatype) (numKind, bool) {
	for _, n := range nativeKinds {
		if dt.Equal(n.dt) {
			return n.kind, true
		}
	}
	return numKind{}, false
}

func (k numKind) decode(b []byte) float64 {
	ne := binary.NativeEndian
	switch {
	case k.float && k.size == 8:
		return math.Float64frombits(ne.Uint64(b))
	case k.float:
		return float64(math.Float32frombits(ne.Uint32(b)))
	case k.size == 1 && k.signed:
		return float64(int8(b[0]))
	case k.size == 1:
		return float64(b[0])
	case k.size == 2 && k.signed:
		return float64(int16(ne.Uint16(b)))
	case k.size == 2:
		return float64(ne.Uint16(b))
	case k.size == 4 && k.signed:
		return float64(int32(ne.Uint32(b)))
	case k.size == 4:
		return float64(ne.Uint32(b))
	case k.signed:
		return float64(int64(ne.Uint64(b)))
	default:
		return float64(ne.Uint64(b))
	}
}

type field struct {
	offset int
	kind   numKind
}

func (f field) at(rec []byte) float64 {
	return f.kind.decode(rec[f.offset : f.offset+f.kind.size])
}

// layout locates the time and value of one record in the raw read buffer.
type layout struct {
	stride      int
	records     int
	time, value field
}

// layoutOf accepts an N×2 numeric array or a 1-D compound array holding a
// "t" member and exactly one other numeric member.
func layoutOf(dt *hdf5.Datatype, dims []uint) (layout, error) {
	if dt.Class() == hdf5.T_COMPOUND {
		if len(dims) != 1 {
			return layout{}, fmt.Errorf("compound dataset has shape %v, want (N,)", dims)
		}
		return compoundLayout(dt, int(dims[0]))
	}

	k, ok := kindOf(dt)
	if !ok {
		return layout{}, fmt.Errorf("element type is not a native number")
	}
	if len(dims) != 2 || dims[1] != 2 {
		return layout{}, fmt.Errorf("shape %v, want (N, 2)", dims)
	}
	return layout{
		stride:  2 * k.size,
		records: int(dims[0]),
		time:    field{offset: 0, kind: k},
		value:   field{offset: k.size, kind: k},
	}, nil
}

func compoundLayout(dt *hdf5.Datatype, records int) (layout, error) {
	ct := hdf5.CompoundType{Datatype: *dt}
	n := ct.NMembers()
	if n != 2 {
		return layout{}, fmt.Errorf("compound type has %d members, want %q and one value", n, TimeField)
	}

	lay := layout{stride: int(dt.Size()), records: records}
	haveTime := false
	for i := 0; i < n; i++ {
		mt, err := ct.MemberType(i)
		if err != nil {
			return layout{}, err
		}
		k, ok := kindOf(mt)
		mt.Close()
		name := ct.MemberName(i)
		if !ok {
			return layout{}, fmt.Errorf("member %q is not a native number", name)
		}
		f := field{offset: ct.MemberOffset(i), kind: k}
		if name == TimeField {
			lay.time, haveTime = f, true
		} else {
			lay.value = f
		}
	}
	if !haveTime {
		return layout{}, fmt.Errorf("compound type has no %q member", TimeField)
	}
	return lay, nil
}

func (l layout) samples(buf []byte) []sample {
	out := make([]sample, l.records)
	for i := range out {
		rec := buf[i*l.stride : (i+1)*l.stride]
		out[i] = sample{t: l.time.at(rec), v: l.value.at(rec)}
	}
	return out
}

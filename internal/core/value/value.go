// Package value implements the graph engine's typed value model: the Value
// sum type and the Vertex, Edge, Path and NPath structures built on top of
// it.
package value

import (
	"fmt"
	"time"
)

// Kind discriminates the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindDate
	KindTime
	KindDateTime
	KindDuration
	KindGeography
	KindList
	KindSet
	KindMap
	KindVertex
	KindEdge
	KindPath
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindBool:
		return "BOOL"
	case KindInt:
		return "INT"
	case KindFloat:
		return "FLOAT"
	case KindString:
		return "STRING"
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	case KindDateTime:
		return "DATETIME"
	case KindDuration:
		return "DURATION"
	case KindGeography:
		return "GEOGRAPHY"
	case KindList:
		return "LIST"
	case KindSet:
		return "SET"
	case KindMap:
		return "MAP"
	case KindVertex:
		return "VERTEX"
	case KindEdge:
		return "EDGE"
	case KindPath:
		return "PATH"
	case KindBlob:
		return "BLOB"
	default:
		return "UNKNOWN"
	}
}

// Value is the closed sum type every property, literal and expression
// result is expressed in. The zero Value is Null.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	t     time.Time
	dur   time.Duration
	geo   string
	list  []Value
	mp    map[string]Value
	vtx   *Vertex
	edge  *Edge
	path  *Path
	blob  []byte
}

func Null() Value                    { return Value{kind: KindNull} }
func Bool(b bool) Value              { return Value{kind: KindBool, b: b} }
func Int(i int64) Value              { return Value{kind: KindInt, i: i} }
func Float(f float64) Value          { return Value{kind: KindFloat, f: f} }
func String(s string) Value          { return Value{kind: KindString, s: s} }
func Date(t time.Time) Value         { return Value{kind: KindDate, t: t} }
func Time(t time.Time) Value         { return Value{kind: KindTime, t: t} }
func DateTime(t time.Time) Value     { return Value{kind: KindDateTime, t: t} }
func Duration(d time.Duration) Value { return Value{kind: KindDuration, dur: d} }
func Geography(wkt string) Value     { return Value{kind: KindGeography, geo: wkt} }
func Blob(b []byte) Value            { return Value{kind: KindBlob, blob: append([]byte(nil), b...)} }

func List(items []Value) Value {
	return Value{kind: KindList, list: items}
}

func Set(items []Value) Value {
	return Value{kind: KindSet, list: dedupValues(items)}
}

func Map(m map[string]Value) Value {
	return Value{kind: KindMap, mp: m}
}

func VertexValue(v *Vertex) Value { return Value{kind: KindVertex, vtx: v} }
func EdgeValue(e *Edge) Value     { return Value{kind: KindEdge, edge: e} }
func PathValue(p *Path) Value     { return Value{kind: KindPath, path: p} }

func dedupValues(items []Value) []Value {
	out := make([]Value, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, v := range items {
		key := v.hashKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool)             { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool)             { return v.i, v.kind == KindInt }
func (v Value) AsFloat() (float64, bool)         { return v.f, v.kind == KindFloat }
func (v Value) AsString() (string, bool)         { return v.s, v.kind == KindString }
func (v Value) AsTime() (time.Time, bool)        { return v.t, v.kind == KindDate || v.kind == KindTime || v.kind == KindDateTime }
func (v Value) AsDuration() (time.Duration, bool) { return v.dur, v.kind == KindDuration }
func (v Value) AsList() ([]Value, bool)          { return v.list, v.kind == KindList || v.kind == KindSet }
func (v Value) AsMap() (map[string]Value, bool)  { return v.mp, v.kind == KindMap }
func (v Value) AsVertex() (*Vertex, bool)        { return v.vtx, v.kind == KindVertex }
func (v Value) AsEdge() (*Edge, bool)            { return v.edge, v.kind == KindEdge }
func (v Value) AsPath() (*Path, bool)            { return v.path, v.kind == KindPath }
func (v Value) AsBlob() ([]byte, bool)           { return v.blob, v.kind == KindBlob }

// AsNumeric coerces Int or Float values to float64, for use by code (the
// optimizer's selectivity estimator, the A* heuristic) that needs a numeric
// reading from an arbitrary property value. Returns ok=false for any other
// kind, including non-numeric strings.
func (v Value) AsNumeric() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Equal implements Value's structural equality. Cross-kind comparisons are
// always unequal (never an error) for Equal; ordering comparisons use Compare
// instead and do error across kinds.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindGeography:
		return v.geo == other.geo
	case KindDate, KindTime, KindDateTime:
		return v.t.Equal(other.t)
	case KindDuration:
		return v.dur == other.dur
	case KindBlob:
		if len(v.blob) != len(other.blob) {
			return false
		}
		for i := range v.blob {
			if v.blob[i] != other.blob[i] {
				return false
			}
		}
		return true
	case KindList, KindSet:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.mp) != len(other.mp) {
			return false
		}
		for k, a := range v.mp {
			b, ok := other.mp[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	case KindVertex:
		return v.vtx != nil && other.vtx != nil && v.vtx.VID.Equal(other.vtx.VID)
	case KindEdge:
		return v.edge != nil && other.edge != nil && v.edge.Identity() == other.edge.Identity()
	case KindPath:
		return v.path != nil && other.path != nil && v.path.Equal(other.path)
	default:
		return false
	}
}

// ErrTypeMismatch is returned by Compare when asked to order values of
// different kinds.
type ErrTypeMismatch struct {
	Left, Right Kind
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("cannot compare %s with %s", e.Left, e.Right)
}

// Compare orders two Values of the same Kind. Returns an *ErrTypeMismatch
// for differing kinds, per the spec's "cross-type comparison yields a typed
// error" rule.
func (v Value) Compare(other Value) (int, error) {
	if v.kind != other.kind {
		return 0, &ErrTypeMismatch{Left: v.kind, Right: other.kind}
	}
	switch v.kind {
	case KindNull:
		return 0, nil
	case KindBool:
		return boolCompare(v.b, other.b), nil
	case KindInt:
		return int64Compare(v.i, other.i), nil
	case KindFloat:
		return float64Compare(v.f, other.f), nil
	case KindString:
		return stringCompare(v.s, other.s), nil
	case KindGeography:
		return stringCompare(v.geo, other.geo), nil
	case KindDate, KindTime, KindDateTime:
		switch {
		case v.t.Before(other.t):
			return -1, nil
		case v.t.After(other.t):
			return 1, nil
		default:
			return 0, nil
		}
	case KindDuration:
		return int64Compare(int64(v.dur), int64(other.dur)), nil
	default:
		return 0, &ErrTypeMismatch{Left: v.kind, Right: other.kind}
	}
}

func boolCompare(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

func int64Compare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func float64Compare(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func stringCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// hashKey produces a stable string key for deduplication in Set; it is not
// a general hash function and is only used internally.
func (v Value) hashKey() string {
	switch v.kind {
	case KindNull:
		return "n:"
	case KindBool:
		return fmt.Sprintf("b:%v", v.b)
	case KindInt:
		return fmt.Sprintf("i:%d", v.i)
	case KindFloat:
		return fmt.Sprintf("f:%v", v.f)
	case KindString:
		return "s:" + v.s
	case KindGeography:
		return "g:" + v.geo
	case KindDate, KindTime, KindDateTime:
		return fmt.Sprintf("t:%d:%d", v.kind, v.t.UnixNano())
	case KindDuration:
		return fmt.Sprintf("d:%d", v.dur)
	case KindBlob:
		return fmt.Sprintf("blob:%x", v.blob)
	default:
		return fmt.Sprintf("p:%p", &v)
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return fmt.Sprintf("%v", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%v", v.f)
	case KindString:
		return v.s
	case KindGeography:
		return v.geo
	case KindDate, KindTime, KindDateTime:
		return v.t.String()
	case KindDuration:
		return v.dur.String()
	case KindList:
		return fmt.Sprintf("%v", v.list)
	case KindSet:
		return fmt.Sprintf("%v", v.list)
	case KindMap:
		return fmt.Sprintf("%v", v.mp)
	case KindVertex:
		if v.vtx != nil {
			return v.vtx.String()
		}
		return "<nil vertex>"
	case KindEdge:
		if v.edge != nil {
			return v.edge.String()
		}
		return "<nil edge>"
	case KindPath:
		if v.path != nil {
			return v.path.String()
		}
		return "<nil path>"
	case KindBlob:
		return fmt.Sprintf("blob(%d bytes)", len(v.blob))
	default:
		return "?"
	}
}

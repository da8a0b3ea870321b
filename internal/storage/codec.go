package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ali01/graphd/internal/core/value"
)

// encodedValue is the JSON-on-the-wire shape used to round-trip a
// value.Value through a jsonb column. value.Value's fields are
// unexported, so this codec goes through its public constructors and
// accessors rather than reaching into the struct directly — the same
// boundary any other package consuming value.Value has to respect.
type encodedValue struct {
	Kind string                   `json:"k"`
	S    string                   `json:"s,omitempty"`
	I    int64                    `json:"i,omitempty"`
	F    float64                  `json:"f,omitempty"`
	B    bool                     `json:"b,omitempty"`
	T    *time.Time               `json:"t,omitempty"`
	D    int64                    `json:"d,omitempty"`
	List []encodedValue           `json:"list,omitempty"`
	Map  map[string]encodedValue  `json:"map,omitempty"`
	Blob []byte                   `json:"blob,omitempty"`
}

// encodeValue converts a Value into its wire form. Vertex/Edge/Path-kinded
// values are rejected: the storage client's property maps hold scalar and
// collection data, never materialized subgraph fragments.
func encodeValue(v value.Value) (encodedValue, error) {
	switch v.Kind() {
	case value.KindNull:
		return encodedValue{Kind: "null"}, nil
	case value.KindBool:
		b, _ := v.AsBool()
		return encodedValue{Kind: "bool", B: b}, nil
	case value.KindInt:
		i, _ := v.AsInt()
		return encodedValue{Kind: "int", I: i}, nil
	case value.KindFloat:
		f, _ := v.AsFloat()
		return encodedValue{Kind: "float", F: f}, nil
	case value.KindString:
		s, _ := v.AsString()
		return encodedValue{Kind: "string", S: s}, nil
	case value.KindGeography:
		return encodedValue{Kind: "geography", S: v.String()}, nil
	case value.KindDate:
		t, _ := v.AsTime()
		return encodedValue{Kind: "date", T: &t}, nil
	case value.KindTime:
		t, _ := v.AsTime()
		return encodedValue{Kind: "time", T: &t}, nil
	case value.KindDateTime:
		t, _ := v.AsTime()
		return encodedValue{Kind: "datetime", T: &t}, nil
	case value.KindDuration:
		d, _ := v.AsDuration()
		return encodedValue{Kind: "duration", D: int64(d)}, nil
	case value.KindBlob:
		blob, _ := v.AsBlob()
		return encodedValue{Kind: "blob", Blob: blob}, nil
	case value.KindList, value.KindSet:
		items, _ := v.AsList()
		out := make([]encodedValue, len(items))
		for i, item := range items {
			ev, err := encodeValue(item)
			if err != nil {
				return encodedValue{}, err
			}
			out[i] = ev
		}
		kind := "list"
		if v.Kind() == value.KindSet {
			kind = "set"
		}
		return encodedValue{Kind: kind, List: out}, nil
	case value.KindMap:
		m, _ := v.AsMap()
		out := make(map[string]encodedValue, len(m))
		for k, item := range m {
			ev, err := encodeValue(item)
			if err != nil {
				return encodedValue{}, err
			}
			out[k] = ev
		}
		return encodedValue{Kind: "map", Map: out}, nil
	default:
		return encodedValue{}, fmt.Errorf("storage: value kind %s is not a storable property type", v.Kind())
	}
}

// decodeValue is encodeValue's inverse.
func decodeValue(e encodedValue) (value.Value, error) {
	switch e.Kind {
	case "null", "":
		return value.Null(), nil
	case "bool":
		return value.Bool(e.B), nil
	case "int":
		return value.Int(e.I), nil
	case "float":
		return value.Float(e.F), nil
	case "string":
		return value.String(e.S), nil
	case "geography":
		return value.Geography(e.S), nil
	case "date":
		return value.Date(derefTime(e.T)), nil
	case "time":
		return value.Time(derefTime(e.T)), nil
	case "datetime":
		return value.DateTime(derefTime(e.T)), nil
	case "duration":
		return value.Duration(time.Duration(e.D)), nil
	case "blob":
		return value.Blob(e.Blob), nil
	case "list", "set":
		items := make([]value.Value, len(e.List))
		for i, ev := range e.List {
			v, err := decodeValue(ev)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = v
		}
		if e.Kind == "set" {
			return value.Set(items), nil
		}
		return value.List(items), nil
	case "map":
		m := make(map[string]value.Value, len(e.Map))
		for k, ev := range e.Map {
			v, err := decodeValue(ev)
			if err != nil {
				return value.Value{}, err
			}
			m[k] = v
		}
		return value.Map(m), nil
	default:
		return value.Value{}, fmt.Errorf("storage: unrecognized encoded value kind %q", e.Kind)
	}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// encodeProperties serializes a property map to the JSON bytes stored in a
// jsonb column.
func encodeProperties(props map[string]value.Value) ([]byte, error) {
	out := make(map[string]encodedValue, len(props))
	for k, v := range props {
		ev, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		out[k] = ev
	}
	return json.Marshal(out)
}

// decodeProperties is encodeProperties's inverse. A nil/empty blob decodes
// to an empty, non-nil map.
func decodeProperties(data []byte) (map[string]value.Value, error) {
	result := make(map[string]value.Value)
	if len(data) == 0 {
		return result, nil
	}
	var raw map[string]encodedValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for k, ev := range raw {
		v, err := decodeValue(ev)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		result[k] = v
	}
	return result, nil
}

// vidKind/vidText split a VID into the two columns the schema stores it
// as: a small int discriminator (string vs. int, per the space's declared
// VID type) and its text representation.
const (
	vidKindString = 0
	vidKindInt    = 1
)

func encodeVID(v value.Value) (int, string, error) {
	if s, ok := v.AsString(); ok {
		return vidKindString, s, nil
	}
	if i, ok := v.AsInt(); ok {
		return vidKindInt, fmt.Sprintf("%d", i), nil
	}
	return 0, "", fmt.Errorf("storage: VID must be string or int, got %s", v.Kind())
}

func decodeVID(kind int, text string) (value.Value, error) {
	switch kind {
	case vidKindString:
		return value.String(text), nil
	case vidKindInt:
		var i int64
		if _, err := fmt.Sscanf(text, "%d", &i); err != nil {
			return value.Value{}, fmt.Errorf("storage: malformed int VID %q: %w", text, err)
		}
		return value.Int(i), nil
	default:
		return value.Value{}, fmt.Errorf("storage: unrecognized VID kind %d", kind)
	}
}

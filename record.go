package kkr

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Record is an insertion-ordered mapping from field names to parsed
// values. Values are numbers, strings, bools, numeric slices or nested
// *Record groups. A key, once set, keeps its first value.
type Record struct {
	keys []string
	vals map[string]any
}

func NewRecord() *Record {
	return &Record{vals: make(map[string]any)}
}

// Set stores v under key unless key is already present. It reports
// whether v was stored.
func (r *Record) Set(key string, v any) bool {
	if r.vals == nil {
		r.vals = make(map[string]any)
	}
	if _, ok := r.vals[key]; ok {
		return false
	}
	r.keys = append(r.keys, key)
	r.vals[key] = v
	return true
}

func (r *Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.vals[key]
	return v, ok
}

func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns the keys of r in insertion order
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	ret := make([]string, len(r.keys))
	copy(ret, r.keys)
	return ret
}

func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Lookup follows path through nested groups and returns the value at
// its end.
func (r *Record) Lookup(path ...string) (any, bool) {
	cur := r
	for i, key := range path {
		v, ok := cur.Get(key)
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		if cur, ok = v.(*Record); !ok {
			return nil, false
		}
	}
	return nil, false
}

func (r *Record) Int(path ...string) (int, bool) {
	v, ok := r.Lookup(path...)
	if !ok {
		return 0, false
	}
	switch v := v.(type) {
	case int:
		return v, true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

func (r *Record) Float(path ...string) (float64, bool) {
	v, ok := r.Lookup(path...)
	if !ok {
		return 0, false
	}
	switch v := v.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func (r *Record) Bool(path ...string) (bool, bool) {
	v, ok := r.Lookup(path...)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func (r *Record) Str(path ...string) (string, bool) {
	v, ok := r.Lookup(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (r *Record) Floats(path ...string) ([]float64, bool) {
	v, ok := r.Lookup(path...)
	if !ok {
		return nil, false
	}
	switch v := v.(type) {
	case []float64:
		return v, true
	case []any:
		ret := make([]float64, 0, len(v))
		for _, e := range v {
			f, ok := e.(float64)
			if !ok {
				return nil, false
			}
			ret = append(ret, f)
		}
		return ret, true
	}
	return nil, false
}

func (r *Record) Group(path ...string) (*Record, bool) {
	v, ok := r.Lookup(path...)
	if !ok {
		return nil, false
	}
	g, ok := v.(*Record)
	return g, ok
}

// group returns the nested group at key, creating it if needed
func (r *Record) group(key string) *Record {
	if g, ok := r.Group(key); ok {
		return g
	}
	g := NewRecord()
	r.Set(key, g)
	return g
}

// merge copies the keys of src into r. Groups present in both are
// merged recursively; any other key already in r is left alone.
func (r *Record) merge(src *Record) {
	for _, key := range src.keys {
		v := src.vals[key]
		if g, ok := v.(*Record); ok {
			if dst, ok := r.Group(key); ok {
				dst.merge(g)
				continue
			}
		}
		r.Set(key, v)
	}
}

// Clone returns a deep copy of the group structure of r. Leaf values
// are shared.
func (r *Record) Clone() *Record {
	ret := NewRecord()
	if r == nil {
		return ret
	}
	for _, key := range r.keys {
		v := r.vals[key]
		if g, ok := v.(*Record); ok {
			v = g.Clone()
		}
		ret.Set(key, v)
	}
	return ret
}

// Map converts r into plain nested maps, losing the key order
func (r *Record) Map() map[string]any {
	ret := make(map[string]any, r.Len())
	if r == nil {
		return ret
	}
	for _, key := range r.keys {
		v := r.vals[key]
		if g, ok := v.(*Record); ok {
			v = g.Map()
		}
		ret[key] = v
	}
	return ret
}

func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.vals[key])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object into r keeping the key order.
// Numbers become float64, arrays become []any.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return fmt.Errorf("record: expected object, got %v", tok)
	}
	*r = *NewRecord()
	return r.decodeObject(dec)
}

func (r *Record) decodeObject(dec *json.Decoder) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return err
		}
		r.Set(key, v)
	}
	_, err := dec.Token()
	return err
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch tok {
	case json.Delim('{'):
		g := NewRecord()
		return g, g.decodeObject(dec)
	case json.Delim('['):
		ret := make([]any, 0)
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			ret = append(ret, v)
		}
		_, err := dec.Token()
		return ret, err
	}
	return tok, nil
}

func (r *Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range r.Keys() {
		var k, v yaml.Node
		if err := k.Encode(key); err != nil {
			return nil, err
		}
		if err := v.Encode(r.vals[key]); err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		node.Content = append(node.Content, &k, &v)
	}
	return node, nil
}

// Package params provides the ordered parameter bag threaded through
// experiment runs: trial hyperparameters, algorithm arguments and the
// user_info provenance attached to each result.
package params

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
)

// Pair is a single key/value entry in insertion order
type Pair struct {
	Key   string `yaml:"key" json:"key"`
	Value any    `yaml:"value" json:"value"`
}

// Args is an insertion-ordered mapping from parameter name to value.
// Overwriting an existing key keeps its original position.
type Args struct {
	keys   []string
	values map[string]any
}

// New creates an empty Args
func New() *Args {
	return &Args{values: make(map[string]any)}
}

// FromPairs builds Args from pairs, later pairs overwriting earlier ones
func FromPairs(pairs ...Pair) *Args {
	a := New()
	for _, p := range pairs {
		a.Set(p.Key, p.Value)
	}
	return a
}

// FromMap builds Args from a map using sorted key order
func FromMap(m map[string]any) *Args {
	a := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a.Set(k, m[k])
	}
	return a
}

// Len returns the number of entries
func (a *Args) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Set stores value under key and returns the receiver for chaining
func (a *Args) Set(key string, value any) *Args {
	if a.values == nil {
		a.values = make(map[string]any)
	}
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
	return a
}

// Get returns the value stored under key
func (a *Args) Get(key string) (any, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a.values[key]
	return v, ok
}

// Has reports whether key is present
func (a *Args) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Delete removes key and reports whether it was present
func (a *Args) Delete(key string) bool {
	if a == nil {
		return false
	}
	if _, ok := a.values[key]; !ok {
		return false
	}
	delete(a.values, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the keys in insertion order
func (a *Args) Keys() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Clone returns a shallow copy; values are shared
func (a *Args) Clone() *Args {
	out := New()
	if a == nil {
		return out
	}
	for _, k := range a.keys {
		out.Set(k, a.values[k])
	}
	return out
}

// Merge copies every entry of other into a, other winning on collision.
// Keys new to a are appended in other's order.
func (a *Args) Merge(other *Args) *Args {
	if other == nil {
		return a
	}
	for _, k := range other.keys {
		a.Set(k, other.values[k])
	}
	return a
}

// Pairs returns the entries in insertion order
func (a *Args) Pairs() []Pair {
	if a == nil {
		return nil
	}
	out := make([]Pair, 0, len(a.keys))
	for _, k := range a.keys {
		out = append(out, Pair{Key: k, Value: a.values[k]})
	}
	return out
}

// Map returns a plain map copy
func (a *Args) Map() map[string]any {
	out := make(map[string]any, a.Len())
	for _, p := range a.Pairs() {
		out[p.Key] = p.Value
	}
	return out
}

// Int returns key as an int, def when absent
func (a *Args) Int(key string, def int) (int, error) {
	v, ok := a.Get(key)
	if !ok {
		return def, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("param %s: %w", key, err)
	}
	return n, nil
}

// Float returns key as a float64, def when absent
func (a *Args) Float(key string, def float64) (float64, error) {
	v, ok := a.Get(key)
	if !ok {
		return def, nil
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	}
	return 0, fmt.Errorf("param %s: expected number, got %T", key, v)
}

// Bool returns key as a bool, def when absent
func (a *Args) Bool(key string, def bool) (bool, error) {
	v, ok := a.Get(key)
	if !ok {
		return def, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, fmt.Errorf("param %s: expected bool, got %T", key, v)
	}
	return b, nil
}

// Str returns key as a string, def when absent
func (a *Args) Str(key string, def string) (string, error) {
	v, ok := a.Get(key)
	if !ok {
		return def, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", fmt.Errorf("param %s: expected string, got %T", key, v)
	}
	return s, nil
}

// IntSlice returns key as []int. A scalar int is treated as a one-element slice.
func (a *Args) IntSlice(key string, def []int) ([]int, error) {
	v, ok := a.Get(key)
	if !ok {
		return def, nil
	}
	switch x := v.(type) {
	case []int:
		out := make([]int, len(x))
		copy(out, x)
		return out, nil
	case []any:
		out := make([]int, 0, len(x))
		for i, item := range x {
			n, err := toInt(item)
			if err != nil {
				return nil, fmt.Errorf("param %s[%d]: %w", key, i, err)
			}
			out = append(out, n)
		}
		return out, nil
	}
	n, err := toInt(v)
	if err != nil {
		return nil, fmt.Errorf("param %s: %w", key, err)
	}
	return []int{n}, nil
}

// ToStruct converts the bag to a protobuf Struct. Values without a JSON
// representation are rendered with fmt.
func (a *Args) ToStruct() *structpb.Struct {
	fields := make(map[string]*structpb.Value, a.Len())
	for _, p := range a.Pairs() {
		fields[p.Key] = ToValue(p.Value)
	}
	return &structpb.Struct{Fields: fields}
}

// ToValue converts a single parameter value to a protobuf Value
func ToValue(v any) *structpb.Value {
	switch x := v.(type) {
	case []int:
		items := make([]any, len(x))
		for i, n := range x {
			items[i] = n
		}
		v = items
	case []float64:
		items := make([]any, len(x))
		for i, f := range x {
			items[i] = f
		}
		v = items
	case fmt.Stringer:
		return structpb.NewStringValue(x.String())
	}
	pv, err := structpb.NewValue(v)
	if err != nil {
		return structpb.NewStringValue(fmt.Sprint(v))
	}
	return pv
}

// String renders the bag as {k: v, ...} in insertion order
func (a *Args) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, p := range a.Pairs() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", p.Key, p.Value)
	}
	b.WriteString("}")
	return b.String()
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case int32:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("expected integer, got %v", x)
		}
		return int(x), nil
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

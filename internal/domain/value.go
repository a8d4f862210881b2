package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value. The declaration order is the
// cross-type sort order.
type ValueKind uint8

const (
	ValueKindMissing ValueKind = iota
	ValueKindNull
	ValueKindBool
	ValueKindNumber
	ValueKindString
	ValueKindSequence
	ValueKindMapping
)

func (k ValueKind) String() string {
	switch k {
	case ValueKindMissing:
		return "missing"
	case ValueKindNull:
		return "null"
	case ValueKindBool:
		return "bool"
	case ValueKindNumber:
		return "number"
	case ValueKindString:
		return "string"
	case ValueKindSequence:
		return "sequence"
	case ValueKindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
}

// Value is the canonical, totally ordered form of a profile node.
// Mappings keep their entries sorted by key so that key order in the
// source document never affects equality; sequences keep source order.
type Value struct {
	kind  ValueKind
	b     bool
	num   *big.Rat
	text  string
	keys  []string
	items []Value
}

// Missing is the sentinel for a path that does not resolve in a profile.
// It is distinct from every real value, including null.
func Missing() Value {
	return Value{kind: ValueKindMissing}
}

// Null returns the normalized JSON null.
func Null() Value {
	return Value{kind: ValueKindNull}
}

// Bool wraps a boolean.
func Bool(b bool) Value {
	return Value{kind: ValueKindBool, b: b}
}

// String wraps a string.
func String(s string) Value {
	return Value{kind: ValueKindString, text: s}
}

// Number wraps an exact rational number.
func Number(r *big.Rat) Value {
	return Value{kind: ValueKindNumber, num: new(big.Rat).Set(r)}
}

// Sequence wraps an ordered list of already-normalized values.
func Sequence(items ...Value) Value {
	return Value{kind: ValueKindSequence, items: append([]Value(nil), items...)}
}

// Normalize converts a decoded JSON node into its canonical Value.
// Anything that is not a JSON type falls back to its fmt rendering as a
// string, so normalization never fails.
func Normalize(raw any) Value {
	switch typed := raw.(type) {
	case nil:
		return Null()
	case Value:
		return typed
	case bool:
		return Bool(typed)
	case string:
		return String(typed)
	case json.Number:
		r, ok := new(big.Rat).SetString(typed.String())
		if !ok {
			return String(typed.String())
		}
		return Value{kind: ValueKindNumber, num: r}
	case float64:
		r := new(big.Rat)
		if r.SetFloat64(typed) == nil {
			return String(fmt.Sprintf("%v", typed))
		}
		return Value{kind: ValueKindNumber, num: r}
	case float32:
		return Normalize(float64(typed))
	case int:
		return Value{kind: ValueKindNumber, num: new(big.Rat).SetInt64(int64(typed))}
	case int32:
		return Value{kind: ValueKindNumber, num: new(big.Rat).SetInt64(int64(typed))}
	case int64:
		return Value{kind: ValueKindNumber, num: new(big.Rat).SetInt64(typed)}
	case uint32:
		return Value{kind: ValueKindNumber, num: new(big.Rat).SetUint64(uint64(typed))}
	case uint64:
		return Value{kind: ValueKindNumber, num: new(big.Rat).SetUint64(typed)}
	case []any:
		items := make([]Value, len(typed))
		for i, item := range typed {
			items[i] = Normalize(item)
		}
		return Value{kind: ValueKindSequence, items: items}
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		items := make([]Value, len(keys))
		for i, key := range keys {
			items[i] = Normalize(typed[key])
		}
		return Value{kind: ValueKindMapping, keys: keys, items: items}
	default:
		return String(fmt.Sprintf("%v", typed))
	}
}

// Kind reports the variant tag.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsMissing reports whether v is the missing sentinel.
func (v Value) IsMissing() bool {
	return v.kind == ValueKindMissing
}

// Equal reports structural equality under normalization.
func (v Value) Equal(other Value) bool {
	return Compare(v, other) == 0
}

// Compare defines a total order over values: first by kind tag, then by
// value. Composites compare element-wise, shorter first on a common prefix.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case ValueKindBool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	case ValueKindNumber:
		return a.num.Cmp(b.num)
	case ValueKindString:
		return strings.Compare(a.text, b.text)
	case ValueKindSequence:
		return compareItems(a.keys, a.items, b.keys, b.items)
	case ValueKindMapping:
		return compareItems(a.keys, a.items, b.keys, b.items)
	default:
		return 0
	}
}

func compareItems(aKeys []string, aItems []Value, bKeys []string, bItems []Value) int {
	minLen := len(aItems)
	if len(bItems) < minLen {
		minLen = len(bItems)
	}
	for i := 0; i < minLen; i++ {
		if aKeys != nil && bKeys != nil {
			if c := strings.Compare(aKeys[i], bKeys[i]); c != 0 {
				return c
			}
		}
		if c := Compare(aItems[i], bItems[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(aItems) < len(bItems):
		return -1
	case len(aItems) > len(bItems):
		return 1
	default:
		return 0
	}
}

// Key returns a canonical encoding that is identical for exactly the
// values that compare equal. It is used as a set key.
func (v Value) Key() string {
	var builder strings.Builder
	v.writeKey(&builder)
	return builder.String()
}

func (v Value) writeKey(builder *strings.Builder) {
	switch v.kind {
	case ValueKindMissing:
		builder.WriteString("<missing>")
	case ValueKindNull:
		builder.WriteString("null")
	case ValueKindBool:
		builder.WriteString(strconv.FormatBool(v.b))
	case ValueKindNumber:
		builder.WriteString("n")
		builder.WriteString(v.num.RatString())
	case ValueKindString:
		builder.WriteString(strconv.Quote(v.text))
	case ValueKindSequence:
		builder.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				builder.WriteByte(',')
			}
			item.writeKey(builder)
		}
		builder.WriteByte(']')
	case ValueKindMapping:
		builder.WriteByte('{')
		for i, item := range v.items {
			if i > 0 {
				builder.WriteByte(',')
			}
			builder.WriteString(strconv.Quote(v.keys[i]))
			builder.WriteByte(':')
			item.writeKey(builder)
		}
		builder.WriteByte('}')
	}
}

// Text renders the value as text. Composites render in a JSON-like form
// with mapping keys in sorted order.
func (v Value) Text() string {
	switch v.kind {
	case ValueKindMissing:
		return ""
	case ValueKindNull:
		return "null"
	case ValueKindBool:
		return strconv.FormatBool(v.b)
	case ValueKindNumber:
		return numberText(v.num)
	case ValueKindString:
		return v.text
	default:
		var builder strings.Builder
		v.writeText(&builder)
		return builder.String()
	}
}

func (v Value) writeText(builder *strings.Builder) {
	switch v.kind {
	case ValueKindString:
		builder.WriteString(strconv.Quote(v.text))
	case ValueKindSequence:
		builder.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				builder.WriteString(", ")
			}
			item.writeText(builder)
		}
		builder.WriteByte(']')
	case ValueKindMapping:
		builder.WriteByte('{')
		for i, item := range v.items {
			if i > 0 {
				builder.WriteString(", ")
			}
			builder.WriteString(strconv.Quote(v.keys[i]))
			builder.WriteString(": ")
			item.writeText(builder)
		}
		builder.WriteByte('}')
	default:
		builder.WriteString(v.Text())
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.kind == ValueKindMissing {
		return "<missing>"
	}
	return v.Text()
}

// CellValue returns the value as it should be written into a spreadsheet
// cell: booleans and numbers stay native, null becomes an empty cell and
// composites are rendered as text.
func (v Value) CellValue() any {
	switch v.kind {
	case ValueKindMissing, ValueKindNull:
		return ""
	case ValueKindBool:
		return v.b
	case ValueKindNumber:
		if v.num.IsInt() && v.num.Num().IsInt64() {
			return v.num.Num().Int64()
		}
		f, _ := v.num.Float64()
		if math.IsInf(f, 0) {
			// Out of float64 range; a numeric cell cannot hold it.
			return numberText(v.num)
		}
		return f
	case ValueKindString:
		return v.text
	default:
		return v.Text()
	}
}

func numberText(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	f, _ := r.Float64()
	if math.IsInf(f, 0) {
		return r.FloatString(6)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

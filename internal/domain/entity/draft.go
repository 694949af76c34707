package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ValueKind discriminates the leaf/container kinds a draft field may hold.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

// Value is a tagged union over the shapes the parser may return. The parsed
// draft has no fixed schema, so the console stores whatever arrived and edits
// it structurally without foreknowledge of keys.
type Value struct {
	Kind ValueKind
	Str  string
	Num  json.Number // numeric text kept verbatim so re-serialization is unchanged
	Bool bool
	Obj  *Draft
	Arr  []Value
}

// StringValue, NumberValue, BoolValue, NullValue build leaf values.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }
func BoolValue(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func NullValue() Value           { return Value{Kind: KindNull} }

// NumberValue builds a numeric leaf from a decimal amount.
func NumberValue(d decimal.Decimal) Value {
	return Value{Kind: KindNumber, Num: json.Number(d.String())}
}

// Decimal converts a numeric leaf to a decimal amount.
func (v Value) Decimal() (decimal.Decimal, error) {
	if v.Kind != KindNumber {
		return decimal.Zero, fmt.Errorf("draft value is not a number")
	}
	return decimal.NewFromString(v.Num.String())
}

// ValueFromJSON decodes a single JSON value (any kind) into a Value.
func ValueFromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return readValue(dec)
}

// Field is one key/value pair of a draft, in arrival order.
type Field struct {
	Key   string
	Value Value
}

// Draft is the editable in-memory interpretation of pasted text: an ordered
// mapping from field name to value. Field order and numeric formatting are
// preserved exactly, so an unedited draft marshals back structurally identical
// to what the parser returned.
type Draft struct {
	fields []Field
}

// NewDraft builds a draft from fields, keeping the given order.
func NewDraft(fields ...Field) *Draft {
	return &Draft{fields: fields}
}

// Len returns the number of top-level fields.
func (d *Draft) Len() int {
	if d == nil {
		return 0
	}
	return len(d.fields)
}

// Fields returns the fields in order. The slice is a copy; values are shared.
func (d *Draft) Fields() []Field {
	if d == nil {
		return nil
	}
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// Get returns the value at key.
func (d *Draft) Get(key string) (Value, bool) {
	if d == nil {
		return Value{}, false
	}
	for _, f := range d.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the value at key in place, or appends the field when absent.
func (d *Draft) Set(key string, v Value) {
	for i := range d.fields {
		if d.fields[i].Key == key {
			d.fields[i].Value = v
			return
		}
	}
	d.fields = append(d.fields, Field{Key: key, Value: v})
}

// SetPath replaces the value at a nested key path, creating intermediate
// objects as needed. An empty path is invalid.
func (d *Draft) SetPath(path []string, v Value) error {
	if len(path) == 0 {
		return fmt.Errorf("empty field path")
	}
	if len(path) == 1 {
		d.Set(path[0], v)
		return nil
	}
	cur, ok := d.Get(path[0])
	if !ok || cur.Kind != KindObject || cur.Obj == nil {
		child := NewDraft()
		d.Set(path[0], Value{Kind: KindObject, Obj: child})
		return child.SetPath(path[1:], v)
	}
	return cur.Obj.SetPath(path[1:], v)
}

// Clone deep-copies the draft.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	out := &Draft{fields: make([]Field, len(d.fields))}
	for i, f := range d.fields {
		out.fields[i] = Field{Key: f.Key, Value: cloneValue(f.Value)}
	}
	return out
}

func cloneValue(v Value) Value {
	switch v.Kind {
	case KindObject:
		v.Obj = v.Obj.Clone()
	case KindArray:
		arr := make([]Value, len(v.Arr))
		for i, e := range v.Arr {
			arr[i] = cloneValue(e)
		}
		v.Arr = arr
	}
	return v
}

// MarshalJSON serializes the draft as a JSON object preserving field order.
func (d *Draft) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDraft(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeDraft(buf *bytes.Buffer, d *Draft) error {
	buf.WriteByte('{')
	for i, f := range d.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := writeValue(buf, f.Value); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeValue(buf *bytes.Buffer, v Value) error {
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		b, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindNumber:
		if v.Num == "" {
			buf.WriteByte('0')
			return nil
		}
		buf.WriteString(v.Num.String())
	case KindBool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindObject:
		if v.Obj == nil {
			buf.WriteString("{}")
			return nil
		}
		return writeDraft(buf, v.Obj)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.Arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("unknown draft value kind %d", v.Kind)
	}
	return nil
}

// UnmarshalJSON parses a JSON object into the draft, keeping key order and
// the exact numeric text of every number.
func (d *Draft) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("draft must be a JSON object")
	}
	fields, err := readFields(dec)
	if err != nil {
		return err
	}
	d.fields = fields
	return nil
}

// readFields consumes key/value pairs up to and including the closing '}'.
func readFields(dec *json.Decoder) ([]Field, error) {
	var fields []Field
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return fields, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("draft object key must be a string")
		}
		val, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Key: key, Value: val})
	}
}

func readValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return valueFromToken(dec, tok)
}

func valueFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		return Value{Kind: KindNumber, Num: t}, nil
	case json.Delim:
		switch t {
		case '{':
			fields, err := readFields(dec)
			if err != nil {
				return Value{}, err
			}
			return Value{Kind: KindObject, Obj: &Draft{fields: fields}}, nil
		case '[':
			var arr []Value
			for {
				tok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				if delim, ok := tok.(json.Delim); ok && delim == ']' {
					return Value{Kind: KindArray, Arr: arr}, nil
				}
				elem, err := valueFromToken(dec, tok)
				if err != nil {
					return Value{}, err
				}
				arr = append(arr, elem)
			}
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v in draft", tok)
}

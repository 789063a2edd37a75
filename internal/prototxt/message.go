// Package prototxt reads and writes the protobuf text format used by Caffe
// network definitions.
//
// A Message is an ordered list of fields. The writer emits fields in the
// order they were added, so callers add them in protobuf field-number order
// to match what the reference serializer produces.
package prototxt

import (
	"fmt"
	"strconv"
)

// Enum is an unquoted enum identifier such as TRAIN or SUM.
type Enum string

// Float is a float field. It is written with Python's float repr so
// integral values keep a trailing `.0`.
type Float float64

// Field is one key/value pair. Value is a string, Enum, int64, Float,
// bool or *Message.
type Field struct {
	Key   string
	Value any
}

// Message is an ordered set of fields.
type Message struct {
	Fields []Field
}

// New returns an empty message.
func New() *Message {
	return &Message{}
}

// Add appends a field and returns m for chaining. Integers of any width are
// normalised to int64 and float64 to Float.
func (m *Message) Add(key string, value any) *Message {
	switch v := value.(type) {
	case int:
		value = int64(v)
	case int32:
		value = int64(v)
	case uint32:
		value = int64(v)
	case float64:
		value = Float(v)
	case float32:
		value = Float(v)
	case string, Enum, int64, Float, bool, *Message:
	default:
		panic(fmt.Sprintf("prototxt: unsupported value type %T for field %q", value, key))
	}
	m.Fields = append(m.Fields, Field{Key: key, Value: value})
	return m
}

// AddMessage appends a nested message built by fill and returns m.
func (m *Message) AddMessage(key string, fill func(*Message)) *Message {
	sub := New()
	fill(sub)
	return m.Add(key, sub)
}

// Get returns every value stored under key, in order.
func (m *Message) Get(key string) []any {
	var out []any
	for _, f := range m.Fields {
		if f.Key == key {
			out = append(out, f.Value)
		}
	}
	return out
}

// Strings returns every string value stored under key.
func (m *Message) Strings(key string) []string {
	var out []string
	for _, v := range m.Get(key) {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// StringField returns the first string value under key.
func (m *Message) StringField(key string) (string, bool) {
	ss := m.Strings(key)
	if len(ss) == 0 {
		return "", false
	}
	return ss[0], true
}

// Messages returns every nested message stored under key.
func (m *Message) Messages(key string) []*Message {
	var out []*Message
	for _, v := range m.Get(key) {
		if sub, ok := v.(*Message); ok {
			out = append(out, sub)
		}
	}
	return out
}

// Sub returns the first nested message under key, or nil.
func (m *Message) Sub(key string) *Message {
	ms := m.Messages(key)
	if len(ms) == 0 {
		return nil
	}
	return ms[0]
}

// Int returns the first integer value under key.
func (m *Message) Int(key string) (int64, bool) {
	for _, v := range m.Get(key) {
		if i, ok := v.(int64); ok {
			return i, true
		}
	}
	return 0, false
}

// Number returns the first numeric value under key as a float64.
func (m *Message) Number(key string) (float64, bool) {
	for _, v := range m.Get(key) {
		switch n := v.(type) {
		case int64:
			return float64(n), true
		case Float:
			return float64(n), true
		}
	}
	return 0, false
}

func formatScalar(v any) string {
	switch x := v.(type) {
	case string:
		return quote(x)
	case Enum:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case Float:
		return formatFloat(float64(x))
	case bool:
		return strconv.FormatBool(x)
	}
	panic(fmt.Sprintf("prototxt: unsupported scalar %T", v))
}

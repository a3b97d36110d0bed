package models

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Messages maps a field path to its messages and remembers the order in
// which paths were first reported.
type Messages struct {
	keys   []string
	values map[string][]string
}

func (m *Messages) Add(field, message string) {
	if m.values == nil {
		m.values = make(map[string][]string)
	}
	if _, ok := m.values[field]; !ok {
		m.keys = append(m.keys, field)
	}
	m.values[field] = append(m.values[field], message)
}

func (m *Messages) Get(field string) []string {
	return m.values[field]
}

func (m *Messages) Keys() []string {
	return append([]string(nil), m.keys...)
}

func (m *Messages) Len() int {
	return len(m.keys)
}

func (m *Messages) IsEmpty() bool {
	return len(m.keys) == 0
}

func (m Messages) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		encodedValues, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValues)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

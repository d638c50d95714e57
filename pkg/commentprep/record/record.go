// Package record models one row of tabular input as an ordered list of
// named fields. Records are values: every method that adds a field returns
// a new Record and leaves the receiver untouched.
package record

import (
	"errors"
	"fmt"
)

// ErrFieldExists is returned when appending a field whose name is taken.
var ErrFieldExists = errors.New("field already exists")

// Field is a single named value.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered set of uniquely named fields.
type Record struct {
	fields []Field
}

// New builds a record from fields. A repeated name keeps its first position
// and takes the last value.
func New(fields ...Field) Record {
	var r Record
	for _, f := range fields {
		if i := r.index(f.Name); i >= 0 {
			r.fields[i].Value = f.Value
			continue
		}
		r.fields = append(r.fields, f)
	}
	return r
}

func (r Record) index(name string) int {
	for i, f := range r.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// Get returns the value of the named field.
func (r Record) Get(name string) (any, bool) {
	if i := r.index(name); i >= 0 {
		return r.fields[i].Value, true
	}
	return nil, false
}

// Has reports whether the named field exists.
func (r Record) Has(name string) bool {
	return r.index(name) >= 0
}

// Names returns field names in order.
func (r Record) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Fields returns a copy of the fields in order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Append returns a new record with the fields added at the end. Existing
// fields are never replaced: a name collision returns ErrFieldExists and
// the zero Record.
func (r Record) Append(fields ...Field) (Record, error) {
	out := Record{fields: make([]Field, len(r.fields), len(r.fields)+len(fields))}
	copy(out.fields, r.fields)
	for _, f := range fields {
		if out.index(f.Name) >= 0 {
			return Record{}, fmt.Errorf("append %q: %w", f.Name, ErrFieldExists)
		}
		out.fields = append(out.fields, f)
	}
	return out, nil
}

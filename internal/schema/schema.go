// Package schema describes the per-table field layout that drives the
// import/export pipeline. Tables are configured dynamically by operators;
// the pipeline treats the schema as read-only input.
package schema

import (
	"fmt"
	"strings"
)

// MaxFields is the maximum number of fields a table may declare.
const MaxFields = 20

// Kind is the declared data type of a field.
type Kind string

const (
	KindText     Kind = "text"
	KindNumber   Kind = "number"
	KindDate     Kind = "date"
	KindEmail    Kind = "email"
	KindTextarea Kind = "textarea"
	KindImage    Kind = "image"
)

// imageNamePatterns marks fields that hold images even when their declared
// kind is text. Legacy tables label photo columns as plain text; the name
// is the only signal.
var imageNamePatterns = []string{"photo", "sign", "barcode", "qr"}

// Field is one column of a table schema.
type Field struct {
	Name  string `json:"name"`
	Kind  Kind   `json:"kind"`
	Order int    `json:"order"`
}

// IsImage reports whether the field holds an image reference, either by
// declared kind or by name pattern.
func (f Field) IsImage() bool {
	if f.Kind == KindImage {
		return true
	}
	name := strings.ToLower(f.Name)
	for _, p := range imageNamePatterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

// Table is a named, ordered field schema.
type Table struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Validate checks structural invariants: at least one field, at most
// MaxFields, non-empty unique names.
func (t Table) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("table has no id")
	}
	if len(t.Fields) == 0 {
		return fmt.Errorf("table %s has no fields", t.ID)
	}
	if len(t.Fields) > MaxFields {
		return fmt.Errorf("table %s has %d fields, maximum is %d", t.ID, len(t.Fields), MaxFields)
	}
	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("table %s has a field with an empty name", t.ID)
		}
		if seen[f.Name] {
			return fmt.Errorf("table %s declares field %q twice", t.ID, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// TextFields returns the non-image fields in schema order.
func (t Table) TextFields() []Field {
	var out []Field
	for _, f := range t.Fields {
		if !f.IsImage() {
			out = append(out, f)
		}
	}
	return out
}

// ImageFields returns the image fields in schema order.
func (t Table) ImageFields() []Field {
	var out []Field
	for _, f := range t.Fields {
		if f.IsImage() {
			out = append(out, f)
		}
	}
	return out
}

// FieldNames returns every field name in schema order.
func (t Table) FieldNames() []string {
	out := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		out[i] = f.Name
	}
	return out
}

// HasField reports whether the table declares a field with the given name.
func (t Table) HasField(name string) bool {
	for _, f := range t.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

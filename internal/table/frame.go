// Package table holds sample data as named, typed columns and maps
// parameter names onto them.
package table

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrLength        = errors.New("column length mismatch")
	ErrColumnType    = errors.New("wrong column type")
	ErrUnknownScheme = errors.New("unknown column scheme")
)

// Frame is a set of equal-length columns. Float columns use NaN for "no
// value"; text columns hold quality flags and other labels.
type Frame struct {
	n      int
	order  []string
	floats map[string][]float64
	texts  map[string][]string
}

func NewFrame(rows int) *Frame {
	return &Frame{
		n:      rows,
		floats: make(map[string][]float64),
		texts:  make(map[string][]string),
	}
}

func (f *Frame) Len() int { return f.n }

// Columns returns column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

func (f *Frame) Has(name string) bool {
	_, fok := f.floats[name]
	_, tok := f.texts[name]
	return fok || tok
}

// SetFloat adds or replaces a float column.
func (f *Frame) SetFloat(name string, col []float64) error {
	if len(col) != f.n {
		return fmt.Errorf("%w: %s has %d rows, frame has %d", ErrLength, name, len(col), f.n)
	}
	f.track(name)
	delete(f.texts, name)
	f.floats[name] = col
	return nil
}

// SetText adds or replaces a text column.
func (f *Frame) SetText(name string, col []string) error {
	if len(col) != f.n {
		return fmt.Errorf("%w: %s has %d rows, frame has %d", ErrLength, name, len(col), f.n)
	}
	f.track(name)
	delete(f.floats, name)
	f.texts[name] = col
	return nil
}

func (f *Frame) track(name string) {
	if !f.Has(name) {
		f.order = append(f.order, name)
	}
}

func (f *Frame) Float(name string) ([]float64, error) {
	if col, ok := f.floats[name]; ok {
		return col, nil
	}
	if _, ok := f.texts[name]; ok {
		return nil, fmt.Errorf("%w: %s is text, want float", ErrColumnType, name)
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
}

func (f *Frame) Text(name string) ([]string, error) {
	if col, ok := f.texts[name]; ok {
		return col, nil
	}
	if _, ok := f.floats[name]; ok {
		return nil, fmt.Errorf("%w: %s is float, want text", ErrColumnType, name)
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
}

// Cell formats one value for display. Missing floats are "".
func (f *Frame) Cell(name string, row int) string {
	if col, ok := f.floats[name]; ok {
		if math.IsNaN(col[row]) {
			return ""
		}
		return fmt.Sprintf("%g", col[row])
	}
	if col, ok := f.texts[name]; ok {
		return col[row]
	}
	return ""
}

// IsFloat reports whether name is a float column.
func (f *Frame) IsFloat(name string) bool {
	_, ok := f.floats[name]
	return ok
}

package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/lox/nodccalc/internal/table"
)

// readCSV loads a header-first CSV into a frame. Columns named in text
// are always kept as strings; any other column becomes a float column
// unless one of its cells fails to parse.
func readCSV(r io.Reader, text []string) (*table.Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return table.NewFrame(0), nil
	}
	if err != nil {
		return nil, err
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	isText := make(map[string]bool, len(text))
	for _, name := range text {
		isText[name] = true
	}

	f := table.NewFrame(len(records))
	for j, name := range header {
		cells := make([]string, len(records))
		for i, rec := range records {
			cells[i] = strings.TrimSpace(rec[j])
		}

		if !isText[name] {
			if col, ok := parseFloats(cells); ok {
				if err := f.SetFloat(name, col); err != nil {
					return nil, err
				}
				continue
			}
		}
		if err := f.SetText(name, cells); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func parseFloats(cells []string) ([]float64, bool) {
	col := make([]float64, len(cells))
	for i, c := range cells {
		if c == "" || strings.EqualFold(c, "nan") {
			col[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, false
		}
		col[i] = v
	}
	return col, true
}

func writeCSV(w io.Writer, f *table.Frame) error {
	cw := csv.NewWriter(w)
	cols := f.Columns()

	if err := cw.Write(cols); err != nil {
		return err
	}
	rec := make([]string, len(cols))
	for i := range f.Len() {
		for j, name := range cols {
			rec[j] = f.Cell(name, i)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Package tableio reads the column-labelled tables that material and
// spectrum data ship in. The first non-comment line names the columns;
// every following line holds one value per column. Values may be separated
// by whitespace or commas.
package tableio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fwordingham/arctorus/internal/material"
)

// Table is a set of labelled parallel columns.
type Table struct {
	labels  []string
	columns map[string][]float64
	rows    int
}

// Parse reads a table from r.
func Parse(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	tab := &Table{columns: map[string][]float64{}}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := splitFields(line)

		if tab.labels == nil {
			tab.labels = fields
			for _, l := range fields {
				if _, dup := tab.columns[l]; dup {
					return nil, fmt.Errorf("tableio: line %d: duplicate column label %q", lineNo, l)
				}
				tab.columns[l] = nil
			}
			continue
		}

		if len(fields) != len(tab.labels) {
			return nil, fmt.Errorf("tableio: line %d: %d values for %d columns", lineNo, len(fields), len(tab.labels))
		}
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("tableio: line %d: value %q: %w", lineNo, f, err)
			}
			tab.columns[tab.labels[i]] = append(tab.columns[tab.labels[i]], v)
		}
		tab.rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tableio: %w", err)
	}
	if tab.labels == nil {
		return nil, fmt.Errorf("tableio: empty table")
	}
	if tab.rows == 0 {
		return nil, fmt.Errorf("tableio: table has a header but no rows")
	}

	return tab, nil
}

// Column returns the named column.
func (t *Table) Column(label string) ([]float64, error) {
	col, ok := t.columns[label]
	if !ok {
		return nil, fmt.Errorf("tableio: no column %q (have %s)", label, strings.Join(t.labels, ", "))
	}
	return col, nil
}

// LoadMaterial reads a five-column material table (w, n, a, s, g) and
// builds the material.
func LoadMaterial(path string) (*material.Material, error) {
	tab, err := loadTable(path)
	if err != nil {
		return nil, err
	}

	cols := make([][]float64, 5)
	for i, label := range []string{"w", "n", "a", "s", "g"} {
		if cols[i], err = tab.Column(label); err != nil {
			return nil, fmt.Errorf("%w (in %s)", err, path)
		}
	}

	mat, err := material.New(cols[0], cols[1], cols[2], cols[3], cols[4])
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return mat, nil
}

// LoadSpectrum reads a two-column spectrum table (w, p) and builds the
// spectrum.
func LoadSpectrum(path string) (*material.Spectrum, error) {
	tab, err := loadTable(path)
	if err != nil {
		return nil, err
	}

	w, err := tab.Column("w")
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	p, err := tab.Column("p")
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}

	spec, err := material.NewSpectrum(w, p)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return spec, nil
}

func loadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tableio: %w", err)
	}
	defer f.Close()

	tab, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return tab, nil
}

func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

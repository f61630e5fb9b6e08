// Package features describes the ordered name/value records produced by a
// radiomics extractor for a single (image, mask) pair.
package features

import (
	"fmt"
	"strconv"
	"strings"
)

// DiagnosticsEntries is the number of leading entries in a pyradiomics feature
// vector that describe the extraction (versions, settings, image and mask
// diagnostics) rather than features. The count holds for extractions without
// resampling and changes with the extractor's version.
const DiagnosticsEntries = 22

// ShapePrefix starts the name of every 3-D shape feature. Shape features are
// only computed on the original image and depend on the mask alone.
const ShapePrefix = "original_shape_"

// Entry is one named value. Value holds a float64, an int or a string.
type Entry struct {
	Name  string
	Value interface{}
}

// Record is an extractor result in emission order.
type Record []Entry

// Add appends a named value.
func (r *Record) Add(name string, value interface{}) {
	*r = append(*r, Entry{Name: name, Value: value})
}

// Lookup returns the first value stored under name.
func (r Record) Lookup(name string) (interface{}, bool) {
	for _, e := range r {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// Features returns the entries that remain after dropping the first skip
// entries. The cut is positional: metadata emitted past it, such as the
// diagnostics of a resampled image, is kept like any feature.
func (r Record) Features(skip int) Record {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(r) {
		return Record{}
	}
	return r[skip:]
}

// IsShape reports whether name is a 3-D shape feature of the original image.
// 2-D shape features (shape2D) are not included.
func IsShape(name string) bool {
	return strings.HasPrefix(name, ShapePrefix)
}

// FormatValue renders a value the way it is written to delimited output.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// ParseValue converts extractor text output to a float64 when it is numeric
// and leaves it as a string otherwise.
func ParseValue(s string) interface{} {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	return s
}

// Package radiomix holds small helpers shared by the radiomix packages and
// commands.
package radiomix

import (
	"io"

	"github.com/csimplestring/go-csv/detector"
)

// delimiters are the runes accepted from detection. Anything else, including
// a failed detection on single-column input, falls back to a comma.
var delimiters = map[rune]bool{',': true, '\t': true, ';': true, '|': true, ' ': true}

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	candidates := d.DetectDelimiter(r, '"')

	for _, c := range candidates {
		if len(c) == 0 {
			continue
		}
		if delim := rune(c[0]); delimiters[delim] {
			return delim
		}
	}

	return ','
}

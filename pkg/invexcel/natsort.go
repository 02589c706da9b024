package invexcel

import (
	"fmt"
	"sort"
	"strings"
)

// Natural sorting compares embedded digit runs by numeric value instead of
// character by character, so "item10" sorts after "item2".

// keySegment is one span of a decomposed sort key: either a run of digits or
// the (lowercased) text between two runs.
type keySegment struct {
	text    string
	numeric bool
}

// naturalKey decomposes s into alternating text and digit segments. The key
// always starts with a text segment, possibly empty, so that two keys compared
// position by position always meet segments of the same kind.
func naturalKey(s string) []keySegment {
	s = strings.ToLower(s)
	segments := make([]keySegment, 0, 4)

	i := 0
	for i < len(s) {
		j := i
		for j < len(s) && !isASCIIDigit(s[j]) {
			j++
		}
		segments = append(segments, keySegment{text: s[i:j]})
		if j == len(s) {
			return segments
		}
		i = j
		for j < len(s) && isASCIIDigit(s[j]) {
			j++
		}
		segments = append(segments, keySegment{text: s[i:j], numeric: true})
		i = j
	}

	if len(segments) == 0 {
		segments = append(segments, keySegment{})
	}
	return segments
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// compareKeys orders two decomposed keys lexicographically over their
// segments; a key that is a strict prefix of the other sorts first.
func compareKeys(a, b []keySegment) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareSegments(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func compareSegments(a, b keySegment) int {
	if a.numeric && b.numeric {
		return compareDigitRuns(a.text, b.text)
	}
	// Canonical keys alternate text/number starting with text, so segments at
	// the same position share a kind; the guard below only matters when keys
	// of different lengths are compared through composite sort columns.
	if a.numeric != b.numeric {
		if a.numeric {
			return -1
		}
		return 1
	}
	return strings.Compare(a.text, b.text)
}

// compareDigitRuns compares two digit runs by numeric magnitude without
// parsing, so arbitrarily long runs cannot overflow.
func compareDigitRuns(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return strings.Compare(a, b)
}

// rowSorter sorts rows and their precomputed composite keys in lockstep.
type rowSorter struct {
	rows [][]interface{}
	keys [][][]keySegment
}

func (s *rowSorter) Len() int { return len(s.rows) }

func (s *rowSorter) Swap(i, j int) {
	s.rows[i], s.rows[j] = s.rows[j], s.rows[i]
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
}

func (s *rowSorter) Less(i, j int) bool {
	for k := range s.keys[i] {
		if c := compareKeys(s.keys[i][k], s.keys[j][k]); c != 0 {
			return c < 0
		}
	}
	return false
}

// sortRowsNatural reorders rows in place by the natural keys of the given
// column indices, most significant first. The sort is stable: rows with fully
// equal keys keep their insertion order.
func sortRowsNatural(rows [][]interface{}, keyColumns []int) {
	if len(rows) == 0 || len(keyColumns) == 0 {
		return
	}

	keys := make([][][]keySegment, len(rows))
	for i, row := range rows {
		composite := make([][]keySegment, len(keyColumns))
		for j, col := range keyColumns {
			cell := ""
			if col < len(row) {
				cell = fmt.Sprint(row[col])
			}
			composite[j] = naturalKey(cell)
		}
		keys[i] = composite
	}

	sort.Stable(&rowSorter{rows: rows, keys: keys})
}

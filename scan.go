package kkr

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// maxLine bounds a single output line. KKR writes some very wide
// tables, so the bufio default is too small.
const maxLine = 1 << 24

// Text is the fully read content of one output file
type Text struct {
	Name  string
	Lines []string
}

// ReadText reads r to the end. On a read error the lines read so far
// are returned together with the error.
func ReadText(name string, r io.Reader) (*Text, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	t := &Text{Name: name}
	for scanner.Scan() {
		t.Lines = append(t.Lines, scanner.Text())
	}
	return t, scanner.Err()
}

// NewText splits content into a Text, mostly for tests and callers
// that already hold the output in memory.
func NewText(name, content string) *Text {
	t, _ := ReadText(name, strings.NewReader(content))
	return t
}

// need reports why t cannot be scanned, if it cannot
func need(t *Text) error {
	switch {
	case t == nil:
		return ErrNoSource
	case len(t.Lines) == 0:
		return fmt.Errorf("%s: %w", t.Name, ErrBlankOutput)
	}
	return nil
}

// find returns the index of the first line containing marker, or -1
func (t *Text) find(marker string) int {
	return t.findFrom(marker, 0)
}

func (t *Text) findFrom(marker string, start int) int {
	if t == nil || start < 0 {
		return -1
	}
	for i := start; i < len(t.Lines); i++ {
		if strings.Contains(t.Lines[i], marker) {
			return i
		}
	}
	return -1
}

func (t *Text) findLast(marker string) int {
	if t == nil {
		return -1
	}
	for i := len(t.Lines) - 1; i >= 0; i-- {
		if strings.Contains(t.Lines[i], marker) {
			return i
		}
	}
	return -1
}

func (t *Text) findAll(marker string) (ret []int) {
	if t == nil {
		return nil
	}
	for i, line := range t.Lines {
		if strings.Contains(line, marker) {
			ret = append(ret, i)
		}
	}
	return
}

// mustFind is find with a marker error instead of -1
func (t *Text) mustFind(marker string) (int, error) {
	i := t.find(marker)
	if i < 0 {
		return i, fmt.Errorf("%q in %s: %w", marker, t.Name, ErrMarkerNotFound)
	}
	return i, nil
}

// line returns line i, which is an error past the end of a truncated
// file
func (t *Text) line(i int) (string, error) {
	if i < 0 || i >= len(t.Lines) {
		return "", fmt.Errorf("line %d of %s: %w", i+1, t.Name, ErrMalformed)
	}
	return t.Lines[i], nil
}

// span checks that n rows starting at line start exist in t. Counts
// read from the output are checked with it before anything is sized by
// them.
func (t *Text) span(start, n int) error {
	if n < 0 || start < 0 || n > len(t.Lines)-start {
		return fmt.Errorf("%d rows from line %d of %s: %w",
			n, start+1, t.Name, ErrMalformed)
	}
	return nil
}

// parseFloat parses a Fortran real, accepting D exponents. Non-finite
// values are rejected so every record stays serializable.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(
		strings.NewReplacer("D", "E", "d", "e").Replace(s),
		64,
	)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrMalformed, s)
	}
	return v, nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformed, s)
	}
	return v, nil
}

// field returns the ith whitespace-separated field of line
func field(line string, i int) (string, error) {
	fields := strings.Fields(line)
	if i < 0 {
		i += len(fields)
	}
	if i < 0 || i >= len(fields) {
		return "", fmt.Errorf("%w: no field %d in %q", ErrMalformed, i, line)
	}
	return fields[i], nil
}

// after returns the text following the first sep in line
func after(line, sep string) (string, error) {
	_, rest, ok := strings.Cut(line, sep)
	if !ok {
		return "", fmt.Errorf("%w: no %q in %q", ErrMalformed, sep, line)
	}
	return rest, nil
}

// afterLast returns the text following the last sep in line
func afterLast(line, sep string) (string, error) {
	i := strings.LastIndex(line, sep)
	if i < 0 {
		return "", fmt.Errorf("%w: no %q in %q", ErrMalformed, sep, line)
	}
	return line[i+len(sep):], nil
}

// floatAfter parses the first field following sep
func floatAfter(line, sep string) (float64, error) {
	rest, err := after(line, sep)
	if err != nil {
		return 0, err
	}
	s, err := field(rest, 0)
	if err != nil {
		return 0, err
	}
	return parseFloat(s)
}

func intAfter(line, sep string) (int, error) {
	rest, err := after(line, sep)
	if err != nil {
		return 0, err
	}
	s, err := field(rest, 0)
	if err != nil {
		return 0, err
	}
	return parseInt(s)
}

func lastFloat(line string) (float64, error) {
	s, err := field(line, -1)
	if err != nil {
		return 0, err
	}
	return parseFloat(s)
}

// column slices a fixed-width field out of line. A line cut short
// inside the field yields what is there; one that ends before the
// field starts is malformed.
func column(line string, start, width int) (string, error) {
	if start >= len(line) {
		return "", fmt.Errorf("%w: line too short for column %d: %q",
			ErrMalformed, start+1, line)
	}
	end := start + width
	if end > len(line) {
		end = len(line)
	}
	return line[start:end], nil
}

// columns cuts line into consecutive fields of the given widths
func columns(line string, widths ...int) ([]string, error) {
	ret := make([]string, 0, len(widths))
	var start int
	for _, w := range widths {
		s, err := column(line, start, w)
		if err != nil {
			return nil, err
		}
		ret = append(ret, s)
		start += w
	}
	return ret, nil
}

package lut

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a malformed LUT file. Callers typically fall back to
// the identity table rather than failing the pipeline.
type ParseError struct {
	Name string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("lut: parse %s: line %d: %s", e.Name, e.Line, e.Msg)
	}
	return fmt.Sprintf("lut: parse %s: %s", e.Name, e.Msg)
}

// Parse reads a .cube format table from src.
//
// The LUT_3D_SIZE header is required; TITLE, DOMAIN_MIN, DOMAIN_MAX, and
// comment lines are ignored. Exactly size^3 RGB triples must follow, in
// cube order (red fastest). Values are clamped to [0, 1].
func Parse(src, name string) (Table, error) {
	size := 0
	var data []float32
	want := 0

	scanner := bufio.NewScanner(strings.NewReader(src))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch strings.ToUpper(fields[0]) {
		case "TITLE", "DOMAIN_MIN", "DOMAIN_MAX", "LUT_1D_SIZE":
			continue
		case "LUT_3D_SIZE":
			if len(fields) != 2 {
				return Table{}, &ParseError{Name: name, Line: lineNo, Msg: "malformed LUT_3D_SIZE"}
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 2 {
				return Table{}, &ParseError{Name: name, Line: lineNo, Msg: fmt.Sprintf("invalid size %q", fields[1])}
			}
			size = n
			want = n * n * n * 3
			data = make([]float32, 0, want)
			continue
		}

		// Anything else must be a data row.
		if size == 0 {
			return Table{}, &ParseError{Name: name, Line: lineNo, Msg: "data before LUT_3D_SIZE header"}
		}
		if len(fields) != 3 {
			return Table{}, &ParseError{Name: name, Line: lineNo, Msg: fmt.Sprintf("expected 3 values, got %d", len(fields))}
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return Table{}, &ParseError{Name: name, Line: lineNo, Msg: fmt.Sprintf("bad value %q", f)}
			}
			data = append(data, clamp01(float32(v)))
		}
		if len(data) > want {
			return Table{}, &ParseError{Name: name, Line: lineNo, Msg: "more data rows than size^3"}
		}
	}

	if size == 0 {
		return Table{}, &ParseError{Name: name, Msg: "missing LUT_3D_SIZE header"}
	}
	if len(data) != want {
		return Table{}, &ParseError{Name: name, Msg: fmt.Sprintf("expected %d values, got %d", want, len(data))}
	}

	return Table{Name: name, Size: size, Data: data}, nil
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

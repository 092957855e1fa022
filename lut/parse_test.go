package lut

import (
	"errors"
	"strings"
	"testing"
)

const cube2 = `# test cube
TITLE "tiny"
LUT_3D_SIZE 2
DOMAIN_MIN 0.0 0.0 0.0
DOMAIN_MAX 1.0 1.0 1.0
0.0 0.0 0.0
1.0 0.0 0.0
0.0 1.0 0.0
1.0 1.0 0.0
0.0 0.0 1.0
1.0 0.0 1.0
0.0 1.0 1.0
1.0 1.0 1.0
`

func TestParseWellFormed(t *testing.T) {
	table, err := Parse(cube2, "tiny")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if table.Size != 2 {
		t.Errorf("Size = %d, want 2", table.Size)
	}
	if len(table.Data) != 24 {
		t.Errorf("len(Data) = %d, want 24", len(table.Data))
	}
	if table.Name != "tiny" {
		t.Errorf("Name = %q, want %q", table.Name, "tiny")
	}
	if !table.IsIdentity(0) {
		t.Errorf("parsed cube should be the exact identity")
	}
}

func TestParseMissingSizeHeader(t *testing.T) {
	src := "0.0 0.0 0.0\n1.0 1.0 1.0\n"
	_, err := Parse(src, "headerless")

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty input", ""},
		{"comments only", "# nothing here\n# still nothing\n"},
		{"malformed size line", "LUT_3D_SIZE\n"},
		{"non-numeric size", "LUT_3D_SIZE abc\n"},
		{"size below two", "LUT_3D_SIZE 1\n0 0 0\n"},
		{"too few triples", "LUT_3D_SIZE 2\n0 0 0\n1 1 1\n"},
		{"too many triples", cube2 + "0.5 0.5 0.5\n"},
		{"wrong arity row", "LUT_3D_SIZE 2\n0 0\n"},
		{"garbled value", strings.Replace(cube2, "1.0 1.0 1.0", "1.0 oops 1.0", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src, tt.name)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Errorf("Parse() error = %v, want *ParseError", err)
			}
		})
	}
}

func TestParseClampsValues(t *testing.T) {
	src := strings.Replace(cube2, "1.0 1.0 1.0", "1.5 -0.5 1.0", 1)
	table, err := Parse(src, "clamped")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	i := len(table.Data) - 3
	if table.Data[i] != 1 || table.Data[i+1] != 0 {
		t.Errorf("out-of-range values not clamped: (%v, %v)", table.Data[i], table.Data[i+1])
	}
}

func TestParseErrorMessage(t *testing.T) {
	_, err := Parse("", "empty")
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("error should name the table: %v", err)
	}
}

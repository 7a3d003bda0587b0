package csvdata

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	in := "\uFEFFname , number\nAlice,123\nBob,456\n"
	got, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := &Table{
		Headers: []string{"name", "number"},
		Rows: []Row{
			{"name": "Alice", "number": "123"},
			{"name": "Bob", "number": "456"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	if got.KeyField() != "name" {
		t.Errorf("KeyField = %q, want name", got.KeyField())
	}
}

func TestParseShortRecord(t *testing.T) {
	got, err := Parse(strings.NewReader("name,number\nAlice\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Rows[0].Value("number") != "" {
		t.Errorf("missing field should read as empty, got %q", got.Rows[0].Value("number"))
	}
}

func TestParseKeepsValueWhitespace(t *testing.T) {
	got, err := Parse(strings.NewReader("name\n  Alice \n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v := got.Rows[0].Value("name"); v != "  Alice " {
		t.Errorf("cell whitespace not preserved: %q", v)
	}
}

func TestParseNonLatinValues(t *testing.T) {
	got, err := Parse(strings.NewReader("name\nઅમદાવાદ\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Rows[0].Value("name") != "અમદાવાદ" {
		t.Errorf("non-Latin value mangled: %q", got.Rows[0].Value("name"))
	}
}

func TestParseEmptyInput(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Error("expected ErrNoHeader")
	}
}

func TestParseHeaderOnly(t *testing.T) {
	got, err := Parse(strings.NewReader("name,number\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got.Rows) != 0 {
		t.Errorf("expected zero rows, got %d", len(got.Rows))
	}
}

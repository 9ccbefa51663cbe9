package format

import (
	"errors"
	"testing"
	"time"

	"github.com/midbel/xlcalc/value"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		Pattern string
		Input   float64
		Want    string
	}{
		{Pattern: "#,##0.00", Input: 1234.5, Want: "1,234.50"},
		{Pattern: "#,##0", Input: 1234567, Want: "1,234,567"},
		{Pattern: "#,##0", Input: 999, Want: "999"},
		{Pattern: "0.0", Input: -5, Want: "-5.0"},
		{Pattern: "0.0", Input: -0.01, Want: "0.0"},
		{Pattern: "+0", Input: 7, Want: "+7"},
		{Pattern: "000", Input: 7, Want: "007"},
		{Pattern: "0.##", Input: 2.5, Want: "2.5"},
		{Pattern: "0.00", Input: 308.625, Want: "308.63"},
		{Pattern: "0", Input: 2.5, Want: "3"},
		{Pattern: "#.00", Input: 0.5, Want: ".50"},
		{Pattern: "0%", Input: 0.25, Want: "25%"},
		{Pattern: "0.0%", Input: 0.125, Want: "12.5%"},
		{Pattern: "#,##0,", Input: 1234567, Want: "1,235"},
		{Pattern: `"$"#,##0.00`, Input: 1234.5, Want: "$1,234.50"},
		{Pattern: `0.0" kg"`, Input: 3, Want: "3.0 kg"},
		{Pattern: `\$0`, Input: 3, Want: "$3"},
		{Pattern: "#,##0;(#,##0)", Input: -1234, Want: "(1,234)"},
		{Pattern: "#,##0;(#,##0)", Input: 1234, Want: "1,234"},
		{Pattern: `0.00;-0.00;"zero"`, Input: 0, Want: "zero"},
		{Pattern: "#,##0_);(#,##0)", Input: 12, Want: "12 "},
		{Pattern: DefaultNumberPattern, Input: 10, Want: "10.00"},
	}
	for _, c := range tests {
		f, err := ParseNumberFormatter(c.Pattern)
		if err != nil {
			t.Errorf("%s: error parsing pattern: %s", c.Pattern, err)
			continue
		}
		got, err := f.Format(value.Float(c.Input))
		if err != nil {
			t.Errorf("%s: fail to format number (%v): %s", c.Pattern, c.Input, err)
			continue
		}
		if got != c.Want {
			t.Errorf("%s (%v): results mismatched! want %s - got %s", c.Pattern, c.Input, c.Want, got)
		}
	}
}

func TestFormatNumberDate(t *testing.T) {
	f, err := ParseNumberFormatter("0.00")
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.Format(value.Date(time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("fail to format date as number: %s", err)
	}
	if got != "45366.25" {
		t.Errorf("results mismatched! want 45366.25 - got %s", got)
	}
}

func TestFormatNumberInvalid(t *testing.T) {
	for _, pattern := range []string{"", ".", "+", "0.0x", "a0", "0.0.0", `"abc`, "0;0;0;0;0"} {
		_, err := ParseNumberFormatter(pattern)
		if !errors.Is(err, ErrPattern) {
			t.Errorf("%s: expected invalid pattern error, got %v", pattern, err)
		}
	}
	f, _ := ParseNumberFormatter("0")
	if _, err := f.Format(value.Text("x")); err == nil {
		t.Errorf("expected error formatting text as number")
	}
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		Code  string
		Input value.Value
		Want  string
	}{
		{Code: "General", Input: value.Float(1.5), Want: "1.5"},
		{Code: "@", Input: value.Text("abc"), Want: "abc"},
		{Code: "0.00", Input: value.Float(2), Want: "2.00"},
		{Code: "yyyy-mm-dd", Input: value.Float(45366), Want: "2024-03-15"},
		{Code: "dd/mm/yyyy", Input: value.Date(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)), Want: "15/03/2024"},
	}
	for _, c := range tests {
		f, err := Parse(c.Code)
		if err != nil {
			t.Errorf("%s: error parsing code: %s", c.Code, err)
			continue
		}
		got, err := f.Format(c.Input)
		if err != nil {
			t.Errorf("%s: fail to format value: %s", c.Code, err)
			continue
		}
		if got != c.Want {
			t.Errorf("%s: results mismatched! want %s - got %s", c.Code, c.Want, got)
		}
	}
}

func TestCodes(t *testing.T) {
	codes := NewCodes()
	tests := []struct {
		Code  string
		Input value.Value
		Want  string
	}{
		{Code: "", Input: value.Float(3), Want: "3"},
		{Code: "0.0", Input: value.Float(3), Want: "3.0"},
		{Code: "0.0", Input: value.Text("n/a"), Want: "n/a"},
		{Code: "0.0", Input: value.ErrDiv0, Want: "#DIV/0!"},
		{Code: "0.0x", Input: value.Float(3), Want: "3"},
		{Code: "0.0", Input: nil, Want: ""},
	}
	for _, c := range tests {
		if got := codes.Format(c.Code, c.Input); got != c.Want {
			t.Errorf("%s (%v): results mismatched! want %s - got %s", c.Code, c.Input, c.Want, got)
		}
	}
}

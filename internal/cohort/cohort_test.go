package cohort

import (
	"errors"
	"strings"
	"testing"
)

const validCohort = "0x4c7d1e9f0a3b5c8d2e6f1a9b0c4d7e2f5a8b1c3d6e9f0a2b5c8d1e4f7a0b3c6d"

func TestParseCohortID_Valid(t *testing.T) {
	id, err := ParseCohortID(validCohort)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != validCohort {
		t.Errorf("expected canonical id unchanged, got %s", id)
	}
}

func TestParseCohortID_Lowercases(t *testing.T) {
	upper := "0x" + strings.ToUpper(validCohort[2:])
	id, err := ParseCohortID(upper)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != validCohort {
		t.Errorf("expected lowercased id %s, got %s", validCohort, id)
	}
}

func TestParseCohortID_Invalid(t *testing.T) {
	cases := []string{
		"",
		"0x",
		validCohort[:65],             // too short
		validCohort + "ab",           // too long
		strings.Replace(validCohort, "4c", "zz", 1), // non-hex
		validCohort[2:],              // missing 0x prefix
	}
	for _, c := range cases {
		if _, err := ParseCohortID(c); !errors.Is(err, ErrInvalidCohortID) {
			t.Errorf("ParseCohortID(%q): expected ErrInvalidCohortID, got %v", c, err)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1000000", 1000000, true},
		{"-400000", -400000, true},
		{"0", 0, true},
		{"9223372036854775807", 9223372036854775807, true},
		{"1.5", 0, false},
		{"1e6", 0, false},
		{"", 0, false},
		{"1,000", 0, false},
		{"abc", 0, false},
		{"9223372036854775808", 0, false}, // overflows int64
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in)
		if c.ok {
			if err != nil {
				t.Errorf("ParseAmount(%q): unexpected error %v", c.in, err)
			} else if int64(got) != c.want {
				t.Errorf("ParseAmount(%q) = %d, want %d", c.in, got, c.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseAmount(%q): expected ErrInvalidAmount, got %v", c.in, err)
		}
	}
}

func TestParsePositiveAmount(t *testing.T) {
	if _, err := ParsePositiveAmount("100"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, c := range []string{"0", "-100"} {
		if _, err := ParsePositiveAmount(c); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParsePositiveAmount(%q): expected ErrInvalidAmount, got %v", c, err)
		}
	}
}

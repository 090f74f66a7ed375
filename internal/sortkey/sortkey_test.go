package sortkey_test

import (
	"testing"

	"logmon/internal/sortkey"
)

func TestParseExtractsTimestampDigits(t *testing.T) {
	key, ok := sortkey.Parse("[2026-08-29 13:45:02.123] [info] service started")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if key != 20260829134502123 {
		t.Fatalf("unexpected key: %d", key)
	}
}

func TestParseOrdersChronologically(t *testing.T) {
	early, ok := sortkey.Parse("[2026-08-29 13:45:02.123] a")
	if !ok {
		t.Fatal("parse early line")
	}
	late, ok := sortkey.Parse("[2026-08-29 13:45:02.124] b")
	if !ok {
		t.Fatal("parse late line")
	}
	if early >= late {
		t.Fatalf("expected %d < %d", early, late)
	}
}

func TestParseRejectsMalformedLines(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"no prefix", "plain text without timestamp"},
		{"short", "[2026-08-29]"},
		{"missing open bracket", "2026-08-29 13:45:02.123] x"},
		{"missing close bracket", "[2026-08-29 13:45:02.123 x"},
		{"letters in digits", "[2026-08-29 13:45:0a.123] x"},
		{"wrong date separator", "[2026/08/29 13:45:02.123] x"},
		{"wrong time separator", "[2026-08-29 13-45-02.123] x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := sortkey.Parse(tc.line); ok {
				t.Fatalf("expected parse failure for %q", tc.line)
			}
		})
	}
}

package config

import (
	"testing"
	"time"
)

func TestDurationTextRoundTrip(t *testing.T) {
	cases := []time.Duration{
		500 * time.Millisecond,
		1 * time.Second,
		30 * time.Second,
		2 * time.Minute,
	}
	for _, d := range cases {
		original := NewDuration(d)
		text, err := original.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText() error = %v", err)
		}

		var parsed Duration
		if err := parsed.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", text, err)
		}
		if parsed.Duration != d {
			t.Errorf("round trip of %v = %v", d, parsed.Duration)
		}
	}
}

func TestDurationUnmarshalTextRejectsGarbage(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("not-a-duration")); err == nil {
		t.Fatal("expected UnmarshalText to reject an invalid duration string")
	}
}

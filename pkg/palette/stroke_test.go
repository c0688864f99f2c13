package palette

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestStrokeDarker(t *testing.T) {
	for _, fill := range DefaultColors {
		stroke := Stroke(fill)
		fc, _ := colorful.Hex(fill)
		sc, err := colorful.Hex(stroke)
		if err != nil {
			t.Fatalf("Stroke(%s) = %q: %v", fill, stroke, err)
		}
		fl, _, _ := fc.Lab()
		sl, _, _ := sc.Lab()
		if sl >= fl {
			t.Errorf("Stroke(%s) = %s is not darker", fill, stroke)
		}
	}
	if got := Stroke("not-a-color"); got != Neutral {
		t.Errorf("Stroke(invalid) = %s, want %s", got, Neutral)
	}
}

func TestTextOn(t *testing.T) {
	if got := TextOn("#1f2937"); got != "#ffffff" {
		t.Errorf("TextOn(dark) = %s, want white", got)
	}
	if got := TextOn("#fef3c7"); got != "#111827" {
		t.Errorf("TextOn(light) = %s, want dark", got)
	}
}

func TestSwatch(t *testing.T) {
	if got := Swatch("#2563eb", 1); got != "#ffffff" {
		t.Errorf("Swatch(full) = %s, want #ffffff", got)
	}
	if got := Swatch("#2563eb", 0); got != "#2563eb" {
		t.Errorf("Swatch(none) = %s, want unchanged", got)
	}
}

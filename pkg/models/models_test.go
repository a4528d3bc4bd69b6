package models

import (
	"strings"
	"testing"
)

func TestKnownPlatformCaseInsensitive(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{input: "Blinkit", want: "Blinkit", ok: true},
		{input: "blinkit", want: "Blinkit", ok: true},
		{input: "ZEPTO", want: "Zepto", ok: true},
		{input: "swiggy instamart", want: "Swiggy Instamart", ok: true},
		{input: "  JioMart ", want: "JioMart", ok: true},
		{input: "Amazon Fresh", ok: false},
		{input: "", ok: false},
	}
	for _, tt := range tests {
		t.Run("input_"+tt.input, func(t *testing.T) {
			p, ok := KnownPlatform(tt.input)
			if ok != tt.ok {
				t.Fatalf("KnownPlatform(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && p.Name != tt.want {
				t.Fatalf("KnownPlatform(%q) = %q, want %q", tt.input, p.Name, tt.want)
			}
		})
	}
}

func TestPlatformURLTemplates(t *testing.T) {
	if len(Platforms) != 6 {
		t.Fatalf("platform set must stay closed at 6 entries, got %d", len(Platforms))
	}
	for _, p := range Platforms {
		if p.SearchURL == "" {
			t.Errorf("%s has no search URL template", p.Name)
		}
		if !strings.Contains(p.SearchURL, "[QUERY]") {
			t.Errorf("%s template %q lacks the [QUERY] placeholder", p.Name, p.SearchURL)
		}
	}
}

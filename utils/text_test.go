package utils

import "testing"

func TestNormaliseText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"  Blue   Reef\nDiving ", "Blue Reef Diving"},
		{"\tمركز  الغوص ", "مركز الغوص"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormaliseText(tt.raw); got != tt.want {
			t.Errorf("NormaliseText(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		raw  string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"a longer sentence", 10, "a longe..."},
		{"مرحبا بالعالم", 8, "مرحبا..."},
		{"abcdef", 2, "ab"},
	}

	for _, tt := range tests {
		if got := Truncate(tt.raw, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q; want %q", tt.raw, tt.max, got, tt.want)
		}
	}
}

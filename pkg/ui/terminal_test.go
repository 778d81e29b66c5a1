package ui

import (
	"testing"
)

func TestDefaultSpinner(t *testing.T) {
	s := DefaultSpinner()
	if len(s.Frames) == 0 {
		t.Fatal("DefaultSpinner returned empty frames")
	}
	if s.Interval <= 0 {
		t.Fatal("DefaultSpinner returned non-positive interval")
	}

	// Test runner stderr is a pipe, so UnicodeTerminal() is false and
	// the ASCII line spinner is expected.
	if !UnicodeTerminal() {
		line := Spinners[SpinnerLine]
		if len(s.Frames) != len(line.Frames) {
			t.Errorf("expected ASCII spinner (%d frames), got %d frames", len(line.Frames), len(s.Frames))
		}
		for i, f := range s.Frames {
			if f != line.Frames[i] {
				t.Errorf("frame[%d] = %q, want %q", i, f, line.Frames[i])
			}
		}
	}
}

func TestGetSpinnerFallback(t *testing.T) {
	if UnicodeTerminal() {
		t.Skip("stderr is a real terminal; fallback not active")
	}
	for _, typ := range []SpinnerType{SpinnerDots, SpinnerCircle, SpinnerBounce} {
		s := GetSpinner(typ)
		for _, f := range s.Frames {
			for _, r := range f {
				if r > 0x7F {
					t.Errorf("GetSpinner(%d) returned non-ASCII frame %q on legacy terminal", typ, f)
				}
			}
		}
	}
}

func TestIcon(t *testing.T) {
	tests := []struct {
		name    string
		unicode string
		ascii   string
	}{
		{"check", "✓", "+"},
		{"cross", "✗", "x"},
		{"block", "█", "#"},
		{"empty_ascii", "⠋", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Icon(tt.unicode, tt.ascii)

			if !UnicodeTerminal() {
				if result != tt.ascii {
					t.Errorf("Icon(%q, %q) = %q; want ASCII %q (non-terminal env)",
						tt.unicode, tt.ascii, result, tt.ascii)
				}
			} else {
				if result != tt.unicode {
					t.Errorf("Icon(%q, %q) = %q; want Unicode %q (terminal env)",
						tt.unicode, tt.ascii, result, tt.unicode)
				}
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	if UnicodeTerminal() {
		t.Skip("stderr is a real terminal; sanitization inactive")
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii_passthrough", "shop.example.com [200]", "shop.example.com [200]"},
		{"latin1_kept", "Café Backend", "Café Backend"},
		{"emoji_dropped", "Admin 🔒 Portal", "Admin  Portal"},
		{"braille_dropped", "⠋ loading", " loading"},
		{"block_chars_dropped", "[███---]", "[---]"},
		{"variation_selector_dropped", "warn️!", "warn!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeString(tt.in); got != tt.want {
				t.Errorf("SanitizeString(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnicodeTerminal(t *testing.T) {
	// Piped stderr (the test runner) must report false; a real terminal
	// may report true. Either way the call must be stable.
	first := UnicodeTerminal()
	second := UnicodeTerminal()
	if first != second {
		t.Errorf("UnicodeTerminal() unstable: %v then %v", first, second)
	}
	if !StderrIsTerminal() && first {
		t.Error("UnicodeTerminal() = true with piped stderr")
	}
}

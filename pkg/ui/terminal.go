package ui

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/term"
)

// StdoutIsTerminal reports whether stdout is attached to a terminal.
// When it is not (piped into jq, redirected to a file), data output
// must stay free of ANSI sequences.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// StderrIsTerminal reports whether stderr is attached to a terminal.
// Progress lines and banners downgrade to plain text when it is not.
func StderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

var (
	unicodeOnce sync.Once
	unicodeOK   bool
)

// UnicodeTerminal reports whether stderr can render Unicode glyphs
// (braille spinners, block progress bars). Returns false when output is
// piped, TERM is "dumb", or on Windows outside Windows Terminal.
//
// Legacy Windows consoles cannot render braille or block elements even
// with the UTF-8 code page active because the default fonts lack the
// glyphs. Windows Terminal sets WT_SESSION and handles them fine.
func UnicodeTerminal() bool {
	unicodeOnce.Do(func() {
		if os.Getenv("TERM") == "dumb" {
			return
		}
		if !StderrIsTerminal() {
			return
		}
		if runtime.GOOS == "windows" {
			unicodeOK = os.Getenv("WT_SESSION") != ""
			return
		}
		unicodeOK = true
	})
	return unicodeOK
}

// DefaultSpinner returns a braille-dot spinner on Unicode terminals and
// the ASCII line spinner (-\|/) everywhere else.
func DefaultSpinner() Spinner {
	if UnicodeTerminal() {
		return Spinners[SpinnerDots]
	}
	return Spinners[SpinnerLine]
}

// Icon returns unicode when the terminal supports it, ascii otherwise:
// ui.Icon("✓", "+")
func Icon(unicode, ascii string) string {
	if UnicodeTerminal() {
		return unicode
	}
	return ascii
}

// SanitizeString strips glyphs the terminal cannot render from s. Page
// titles and matcher names come straight from probed hosts and may carry
// arbitrary Unicode; on legacy consoles those bytes turn into mojibake.
// On Unicode-capable terminals s is returned unchanged.
func SanitizeString(s string) string {
	if UnicodeTerminal() {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r < 0x80:
			b.WriteByte(s[i])
		case r >= 0xFE00 && r <= 0xFE0F:
			// Variation selectors modify the preceding glyph; with the
			// glyph gone they render as boxes. Drop silently.
		case legacyRenderable(r):
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

// Sanitizef formats and sanitizes in one step. Drop-in for fmt.Sprintf
// when the result goes to the terminal.
func Sanitizef(format string, args ...interface{}) string {
	return SanitizeString(fmt.Sprintf(format, args...))
}

// Fprintf writes to w with terminal-appropriate sanitization.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprint(w, Sanitizef(format, args...))
}

// legacyRenderable reports whether a non-ASCII rune is safe on consoles
// without modern font support: Latin scripts and the Latin-1 supplement
// render everywhere; emoji, braille, and block elements do not.
// Box-drawing (U+2500-U+259F) is excluded too since those are exactly
// the characters that garble progress bars on old conhost.
func legacyRenderable(r rune) bool {
	if r <= 0xFF {
		return true
	}
	return unicode.Is(unicode.Latin, r)
}

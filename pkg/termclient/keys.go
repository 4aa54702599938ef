package termclient

import (
	"unicode/utf8"

	"github.com/quillkit/quill/internal/input"
)

// csiFinal maps a CSI sequence's final letter (ESC [ ... LETTER) to a
// Code, grounded on bind_arrow_keys/bind_side_special_keys in the
// source's ncurses client, which perform the equivalent terminfo-driven
// translation.
var csiFinal = map[byte]input.Code{
	'A': input.CodeUp,
	'B': input.CodeDown,
	'C': input.CodeRight,
	'D': input.CodeLeft,
	'H': input.CodeHome,
	'F': input.CodeEnd,
}

// csiTilde maps a CSI "ESC [ N ~" sequence's numeric parameter to a Code,
// grounded on bind_side_special_key's KEY_DC/KEY_IC/KEY_NPAGE/KEY_PPAGE
// handling (the VT220 extended-key encoding most terminals emit today).
var csiTilde = map[int]input.Code{
	1: input.CodeHome,
	3: input.CodeDelete,
	4: input.CodeEnd,
	5: input.CodePageUp,
	6: input.CodePageDown,
	2: input.CodeInsert,
}

// ssoFinal maps an SS3 sequence's final letter (ESC O LETTER), the
// alternate encoding some terminals use for the first four function keys
// and arrow keys in application-cursor mode.
var ssoFinal = map[byte]input.Code{
	'A': input.CodeUp,
	'B': input.CodeDown,
	'C': input.CodeRight,
	'D': input.CodeLeft,
	'H': input.CodeHome,
	'F': input.CodeEnd,
	'P': input.CodeF1,
	'Q': input.CodeF2,
	'R': input.CodeF3,
	'S': input.CodeF4,
}

// DecodeKeys parses a raw chunk of terminal input (as read from a raw-mode
// stdin) into a key sequence, consuming escape sequences whole and falling
// back to treating a lone ESC followed by nothing recognizable as the
// Escape key. Control characters in [1, 26] decode to C-<letter>, except
// the ones with dedicated named keys (Tab and Enter).
func DecodeKeys(buf []byte) []input.Key {
	var keys []input.Key

	i := 0
	for i < len(buf) {
		k, n := decodeOne(buf[i:])
		keys = append(keys, k)
		i += n
	}

	return keys
}

func decodeOne(buf []byte) (input.Key, int) {
	b := buf[0]

	switch {
	case b == 0x1b:
		if k, n, ok := decodeEscape(buf); ok {
			return k, n
		}

		return input.Key{Code: input.CodeEscape}, 1
	case b == 0x7f:
		return input.Key{Code: input.CodeBackspace}, 1
	case b == '\r' || b == '\n':
		return input.Key{Code: input.CodeEnter}, 1
	case b == '\t':
		return input.Key{Code: input.CodeTab}, 1
	case b >= 1 && b <= 26:
		return input.Key{Modifiers: input.ModControl, Code: input.Code('a' + rune(b) - 1)}, 1
	case b < 0x80:
		return input.Key{Code: input.Code(b)}, 1
	default:
		r, n := utf8.DecodeRune(buf)
		if r == utf8.RuneError {
			return input.Key{Code: input.Code(b)}, 1
		}

		return input.Key{Code: input.Code(r)}, n
	}
}

// decodeEscape attempts to parse an escape sequence starting at buf[0]
// (which must be ESC). It returns ok=false for a bare, standalone ESC.
func decodeEscape(buf []byte) (input.Key, int, bool) {
	if len(buf) < 2 {
		return input.Key{}, 0, false
	}

	switch buf[1] {
	case '[':
		return decodeCSI(buf)
	case 'O':
		if len(buf) < 3 {
			return input.Key{}, 0, false
		}

		if code, ok := ssoFinal[buf[2]]; ok {
			return input.Key{Code: code}, 3, true
		}

		return input.Key{}, 0, false
	default:
		// Alt-prefixed key: ESC followed by one more byte decodes that
		// byte and sets ModAlt, the terminal's usual meta-key encoding.
		k, n := decodeOne(buf[1:])
		k.Modifiers |= input.ModAlt

		return k, n + 1, true
	}
}

// decodeCSI parses "ESC [ N FINAL" (arrows, Home/End) or "ESC [ N ~"
// (the VT220-style extended keys). Modifier parameters (e.g. the ";2" in
// "\x1b[1;2A" for Shift-Up) are not decoded; such sequences fall through
// as unrecognized, the same as an unbound key the source's
// print_unbound_key_message would report.
func decodeCSI(buf []byte) (input.Key, int, bool) {
	i := 2

	start := i
	for i < len(buf) && buf[i] >= '0' && buf[i] <= '9' {
		i++
	}

	numStr := buf[start:i]

	if i >= len(buf) {
		return input.Key{}, 0, false
	}

	final := buf[i]
	i++

	if final == '~' {
		n := atoiOr(numStr, -1)
		if code, ok := csiTilde[n]; ok {
			return input.Key{Code: code}, i, true
		}

		return input.Key{}, 0, false
	}

	if len(numStr) == 0 {
		if code, ok := csiFinal[final]; ok {
			return input.Key{Code: code}, i, true
		}
	}

	return input.Key{}, 0, false
}

func atoiOr(b []byte, deflt int) int {
	if len(b) == 0 {
		return deflt
	}

	n := 0

	for _, c := range b {
		n = n*10 + int(c-'0')
	}

	return n
}

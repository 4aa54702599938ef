// Package input implements the §4.8 key dispatch pipeline: a modifier-aware
// Key type, a trie-shaped Key_Map binding key sequences to named commands,
// remapping, macro record/playback, and a per-frame dispatch budget.
package input

import (
	"fmt"
	"strings"
)

// Modifiers is a bitmask of key modifiers, stringified with the source's
// single-letter prefixes (A- alt, C- control, S- shift, Sup- super).
type Modifiers uint8

const (
	ModAlt Modifiers = 1 << iota
	ModControl
	ModShift
	ModSuper
)

// Code identifies a key: printable keys carry their rune value directly
// (values below specialCodeBase); named keys use the constants below.
type Code rune

const specialCodeBase = 1 << 20

const (
	CodeBackspace Code = specialCodeBase + iota
	CodeEnter
	CodeTab
	CodeEscape
	CodeUp
	CodeDown
	CodeLeft
	CodeRight
	CodeHome
	CodeEnd
	CodePageUp
	CodePageDown
	CodeDelete
	CodeInsert
	CodeF1
	CodeF2
	CodeF3
	CodeF4
	CodeF5
	CodeF6
	CodeF7
	CodeF8
	CodeF9
	CodeF10
	CodeF11
	CodeF12
)

var namedCodes = map[Code]string{
	CodeBackspace: "BACKSPACE",
	CodeEnter:     "ENTER",
	CodeTab:       "TAB",
	CodeEscape:    "ESCAPE",
	CodeUp:        "UP",
	CodeDown:      "DOWN",
	CodeLeft:      "LEFT",
	CodeRight:     "RIGHT",
	CodeHome:      "HOME",
	CodeEnd:       "END",
	CodePageUp:    "PAGE_UP",
	CodePageDown:  "PAGE_DOWN",
	CodeDelete:    "DELETE",
	CodeInsert:    "INSERT",
	CodeF1:        "F1",
	CodeF2:        "F2",
	CodeF3:        "F3",
	CodeF4:        "F4",
	CodeF5:        "F5",
	CodeF6:        "F6",
	CodeF7:        "F7",
	CodeF8:        "F8",
	CodeF9:        "F9",
	CodeF10:       "F10",
	CodeF11:       "F11",
	CodeF12:       "F12",
}

var codesByName = func() map[string]Code {
	out := make(map[string]Code, len(namedCodes))
	for code, name := range namedCodes {
		out[name] = code
	}

	return out
}()

// Key is one key press: an optional modifier set plus the code pressed.
type Key struct {
	Modifiers Modifiers
	Code      Code
}

// String renders key the way stringify_key does: `A-`/`C-`/`S-`/`Sup-`
// modifier prefixes, named keys bare, and printable runes quoted only when
// ambiguous (handled by StringifyKeys for a whole sequence).
func (k Key) String() string {
	var b strings.Builder

	if k.Modifiers&ModAlt != 0 {
		b.WriteString("A-")
	}

	if k.Modifiers&ModControl != 0 {
		b.WriteString("C-")
	}

	if k.Modifiers&ModShift != 0 {
		b.WriteString("S-")
	}

	if k.Modifiers&ModSuper != 0 {
		b.WriteString("Sup-")
	}

	if name, ok := namedCodes[k.Code]; ok {
		b.WriteString(name)
	} else {
		b.WriteRune(rune(k.Code))
	}

	return b.String()
}

func isPrintable(k Key) bool {
	_, named := namedCodes[k.Code]
	return !named && k.Code >= 0x20 && k.Code < specialCodeBase
}

// StringifyKeys renders a key sequence the way the source's stringify_keys
// does: runs of two or more plain printable keys (no modifiers) are
// collapsed into a single quoted string, a lone printable key is written
// bare unless it is a space or a quote, and named/modified keys are
// written bare, separated by spaces.
func StringifyKeys(keys []Key) string {
	var parts []string

	i := 0
	for i < len(keys) {
		if keys[i].Modifiers == 0 && isPrintable(keys[i]) {
			var run strings.Builder

			for i < len(keys) && keys[i].Modifiers == 0 && isPrintable(keys[i]) {
				run.WriteRune(rune(keys[i].Code))
				i++
			}

			parts = append(parts, quoteKeyRun(run.String()))

			continue
		}

		parts = append(parts, keys[i].String())
		i++
	}

	return strings.Join(parts, " ")
}

// namedCodeNames disambiguates a literal run that happens to spell a named
// key's display form (e.g. typing the letters E-N-T-E-R) from that named
// key itself, by forcing the run to be quoted.
var namedCodeNames = func() map[string]bool {
	out := make(map[string]bool, len(namedCodes))
	for _, name := range namedCodes {
		out[name] = true
	}

	return out
}()

func quoteKeyRun(run string) string {
	needsQuote := run == "" || len([]rune(run)) > 1 || strings.ContainsAny(run, " '") || namedCodeNames[run]
	if !needsQuote {
		return run
	}

	return "'" + strings.ReplaceAll(run, "'", "''") + "'"
}

// ParseKeys parses the output of StringifyKeys back into a key sequence.
func ParseKeys(s string) ([]Key, error) {
	var keys []Key

	i := 0
	for i < len(s) {
		switch {
		case s[i] == ' ':
			i++
		case s[i] == '\'':
			run, n, err := parseQuotedRun(s[i:])
			if err != nil {
				return nil, err
			}

			for _, r := range run {
				keys = append(keys, Key{Code: Code(r)})
			}

			i += n
		default:
			tok, n := nextToken(s[i:])
			key, err := parseToken(tok)
			if err != nil {
				return nil, err
			}

			keys = append(keys, key)
			i += n
		}
	}

	return keys, nil
}

func nextToken(s string) (string, int) {
	idx := strings.IndexByte(s, ' ')
	if idx < 0 {
		return s, len(s)
	}

	return s[:idx], idx
}

func parseQuotedRun(s string) (string, int, error) {
	var b strings.Builder

	i := 1
	for i < len(s) {
		if s[i] == '\'' {
			if i+1 < len(s) && s[i+1] == '\'' {
				b.WriteByte('\'')
				i += 2

				continue
			}

			return b.String(), i + 1, nil
		}

		b.WriteByte(s[i])
		i++
	}

	return "", 0, fmt.Errorf("input: unterminated quoted key run: %q", s)
}

func parseToken(tok string) (Key, error) {
	mods, rest := Modifiers(0), tok

	for {
		switch {
		case strings.HasPrefix(rest, "A-"):
			mods |= ModAlt
			rest = rest[2:]
		case strings.HasPrefix(rest, "C-"):
			mods |= ModControl
			rest = rest[2:]
		case strings.HasPrefix(rest, "S-"):
			mods |= ModShift
			rest = rest[2:]
		case strings.HasPrefix(rest, "Sup-"):
			mods |= ModSuper
			rest = rest[4:]
		default:
			if code, ok := codesByName[rest]; ok {
				return Key{Modifiers: mods, Code: code}, nil
			}

			runes := []rune(rest)
			if len(runes) != 1 {
				return Key{}, fmt.Errorf("input: invalid key token %q", tok)
			}

			return Key{Modifiers: mods, Code: Code(runes[0])}, nil
		}
	}
}

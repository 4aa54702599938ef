package editor

import (
	"os"
	"strconv"
	"strings"
)

// ParseOpenArg implements the §6 file-open argument grammar: PATH,
// PATH:LINE (1-based), or PATH:LINE:COLUMN (1-based). Disambiguation tries
// the whole string as a path first; only if that doesn't exist does it peel
// a trailing ":N", then two trailing ":N:M"s, retrying existence at each
// step. If nothing on disk matches any candidate, the original string is
// returned as the path (the caller creates a new file there), with line
// and column left at zero meaning "unspecified".
func ParseOpenArg(raw string) (path string, line, col int) {
	if pathExists(raw) {
		return raw, 0, 0
	}

	if p, n, ok := peelTrailingInt(raw); ok && pathExists(p) {
		return p, n, 0
	}

	if p, l, c, ok := peelTrailingTwoInts(raw); ok && pathExists(p) {
		return p, l, c
	}

	return raw, 0, 0
}

func pathExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// peelTrailingInt splits "PATH:N" into ("PATH", N, true), or reports false
// if raw has no trailing ":N" suffix.
func peelTrailingInt(raw string) (string, int, bool) {
	idx := strings.LastIndexByte(raw, ':')
	if idx < 0 {
		return "", 0, false
	}

	n, err := strconv.Atoi(raw[idx+1:])
	if err != nil {
		return "", 0, false
	}

	return raw[:idx], n, true
}

// peelTrailingTwoInts splits "PATH:L:C" into ("PATH", L, C, true).
func peelTrailingTwoInts(raw string) (string, int, int, bool) {
	withoutCol, col, ok := peelTrailingInt(raw)
	if !ok {
		return "", 0, 0, false
	}

	path, line, ok := peelTrailingInt(withoutCol)
	if !ok {
		return "", 0, 0, false
	}

	return path, line, col, true
}

// Package textutil provides byte-level text utilities: binary detection,
// line counting, and byte-slice reader adapters.
package textutil

import (
	"bytes"
	"io"
)

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// IsBinary returns true if data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}

// CountLines returns the number of newline-delimited lines in data.
// A non-empty buffer without a trailing newline counts the last partial line.
// Returns 0 for empty data.
func CountLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}

	lines := bytes.Count(data, []byte{'\n'})

	if data[len(data)-1] != '\n' {
		lines++
	}

	return lines
}

// BytesReader wraps a byte slice as an [io.ReadCloser].
// The returned closer is a no-op.
func BytesReader(data []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(data))
}

// DetectCRLF reports whether data's first line ending is "\r\n". Buffers
// detect this once on load and write back in the same form.
func DetectCRLF(data []byte) bool {
	i := bytes.IndexByte(data, '\n')
	return i > 0 && data[i-1] == '\r'
}

// StripCR removes the "\r" of every "\r\n" pair in data, carrying a single
// byte across chunk boundaries via carry. Pass carry as false on the first
// call for a stream and thread the returned value into the next call.
func StripCR(data []byte, carry bool) ([]byte, bool) {
	out := make([]byte, 0, len(data))

	pendingCR := carry

	for _, b := range data {
		if pendingCR {
			if b != '\n' {
				out = append(out, '\r')
			}

			pendingCR = false
		}

		if b == '\r' {
			pendingCR = true
			continue
		}

		out = append(out, b)
	}

	return out, pendingCR
}

// InsertCRLF reintroduces "\r" before every "\n" in data, for writing a
// CRLF-mode buffer back to disk.
func InsertCRLF(data []byte) []byte {
	out := make([]byte, 0, len(data))

	for _, b := range data {
		if b == '\n' {
			out = append(out, '\r')
		}

		out = append(out, b)
	}

	return out
}

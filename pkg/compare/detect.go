package compare

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// binarySniffSize is the prefix read to decide text vs binary (8KB)
const binarySniffSize = 8 * 1024

// IsBinaryData reports whether a content prefix looks binary: a NUL byte or
// invalid UTF-8 marks the file as binary.
func IsBinaryData(prefix []byte) bool {
	if bytes.IndexByte(prefix, 0) >= 0 {
		return true
	}
	// A sniff window may cut a multi-byte rune; trim the incomplete tail
	// before validating.
	trimmed := prefix
	for len(trimmed) > 0 && len(prefix) == binarySniffSize {
		r, size := utf8.DecodeLastRune(trimmed)
		if r != utf8.RuneError || size != 1 {
			break
		}
		trimmed = trimmed[:len(trimmed)-1]
		if len(prefix)-len(trimmed) >= utf8.UTFMax {
			break
		}
	}
	return !utf8.Valid(trimmed)
}

// IsBinaryFile sniffs the first 8KB of a file for binary content
func IsBinaryFile(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	buf := make([]byte, binarySniffSize)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, fmt.Errorf("failed to read file: %w", err)
	}

	return IsBinaryData(buf[:n]), nil
}

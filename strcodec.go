// SPDX-License-Identifier: MIT
// Source: github.com/lisamanaa189-commits/animated-fortnight

package pak

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// readIndexString reads one length-prefixed index string at the current
// stream position. The 4-byte signed length selects the encoding: positive
// means one byte per character, negative means UTF-16LE with |length| code
// units. One trailing NUL terminator is stripped when present.
//
// Decoding is permissive: malformed text never fails, invalid sequences are
// replaced and reported through the valid flag. Paths are cosmetic metadata
// in this format, so corrupt bytes must not abort the index scan.
func readIndexString(r io.Reader) (s string, valid bool, err error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", false, fmt.Errorf("read string length: %w", err)
	}

	length := int32(binary.LittleEndian.Uint32(lenBuf[:]))
	if length == 0 {
		return "", true, nil
	}

	wide := length < 0
	chars := int64(length)
	if wide {
		chars = -chars
	}
	if chars > maxStringLen {
		return "", false, fmt.Errorf("%w: string length %d", ErrUnreadableEntry, chars)
	}

	byteLen := chars
	if wide {
		byteLen *= 2
	}

	raw := make([]byte, byteLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", false, fmt.Errorf("read string payload: %w", err)
	}

	if wide {
		return decodeUTF16LE(raw)
	}

	return decodeNarrow(raw)
}

// decodeNarrow decodes single-byte-per-character text, replacing bytes
// outside the ASCII range.
func decodeNarrow(raw []byte) (string, bool, error) {
	raw = trimNarrowNUL(raw)

	valid := true
	for _, b := range raw {
		if b >= 0x80 {
			valid = false
			break
		}
	}
	if valid {
		return string(raw), true, nil
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		if c >= 0x80 {
			b.WriteRune(utf8.RuneError)
			continue
		}

		b.WriteByte(c)
	}

	return b.String(), false, nil
}

// decodeUTF16LE decodes little-endian UTF-16 code units, replacing unpaired
// surrogates.
func decodeUTF16LE(raw []byte) (string, bool, error) {
	units := make([]uint16, len(raw)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}

	if n := len(units); n > 0 && units[n-1] == 0 {
		units = units[:n-1]
	}

	runes := utf16.Decode(units)
	valid := true
	for _, r := range runes {
		if r == utf8.RuneError {
			valid = false
			break
		}
	}

	return string(runes), valid, nil
}

// trimNarrowNUL strips one trailing NUL terminator.
func trimNarrowNUL(raw []byte) []byte {
	if n := len(raw); n > 0 && raw[n-1] == 0 {
		return raw[:n-1]
	}

	return raw
}

package instance

import (
	"bytes"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// SegmentSize is the size in bytes of the shared segment.
const SegmentSize = 16000

// Payload joins a working directory and a command line the way they travel
// through the segment.
func Payload(workDir, commandLine string) string {
	return workDir + "\n" + commandLine
}

// SplitPayload splits a payload at its first newline. ok is false when the
// payload has no newline; such payloads are dropped.
func SplitPayload(payload string) (workDir, commandLine string, ok bool) {
	return strings.Cut(payload, "\n")
}

// EncodePayload returns s as NUL-terminated UTF-8 no longer than limit bytes.
// A payload that does not fit is truncated without splitting a character.
func EncodePayload(s string, limit int) []byte {
	if limit < 1 {
		return nil
	}

	if room := limit - 1; len(s) > room {
		cut := room
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}

		s = s[:cut]
	}

	out := make([]byte, len(s)+1)
	copy(out, s)

	return out
}

// DecodePayload reads a NUL-terminated UTF-8 payload.
func DecodePayload(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}

	return string(b)
}

// EncodePayloadUTF16 returns s as NUL-terminated UTF-16 no longer than limit
// bytes. A surrogate pair is never split.
func EncodePayloadUTF16(s string, limit int) []uint16 {
	if limit < 2 {
		return nil
	}

	units := utf16.Encode([]rune(s))

	if room := limit/2 - 1; len(units) > room {
		cut := room
		if cut > 0 && isHighSurrogate(units[cut-1]) {
			cut--
		}

		units = units[:cut]
	}

	return append(units, 0)
}

// DecodePayloadUTF16 reads a NUL-terminated UTF-16 payload.
func DecodePayloadUTF16(u []uint16) string {
	for i, c := range u {
		if c == 0 {
			u = u[:i]

			break
		}
	}

	return string(utf16.Decode(u))
}

func isHighSurrogate(u uint16) bool {
	return u >= 0xD800 && u < 0xDC00
}

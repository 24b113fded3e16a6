package instance

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		payload     string
		wantDir     string
		wantCmdLine string
		wantOK      bool
	}{
		{
			name:        "first newline splits",
			payload:     "/home/u\nconsulo --open a\nb",
			wantDir:     "/home/u",
			wantCmdLine: "consulo --open a\nb",
			wantOK:      true,
		},
		{
			name:        "empty command line",
			payload:     `C:\work` + "\n",
			wantDir:     `C:\work`,
			wantCmdLine: "",
			wantOK:      true,
		},
		{
			name:    "no newline",
			payload: "garbage",
			wantDir: "garbage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir, cmdLine, ok := SplitPayload(tt.payload)
			if dir != tt.wantDir || cmdLine != tt.wantCmdLine || ok != tt.wantOK {
				t.Errorf("SplitPayload() = (%q, %q, %v), want (%q, %q, %v)",
					dir, cmdLine, ok, tt.wantDir, tt.wantCmdLine, tt.wantOK)
			}
		})
	}
}

func TestPayload_SplitsBack(t *testing.T) {
	t.Parallel()

	dir, cmdLine, ok := SplitPayload(Payload("/srv", "consulo file.txt"))
	if !ok || dir != "/srv" || cmdLine != "consulo file.txt" {
		t.Errorf("SplitPayload(Payload()) = (%q, %q, %v)", dir, cmdLine, ok)
	}
}

func TestEncodePayload(t *testing.T) {
	t.Parallel()

	got := EncodePayload("abc", SegmentSize)
	if string(got) != "abc\x00" {
		t.Errorf("EncodePayload() = %q, want NUL-terminated", got)
	}

	if DecodePayload(append(got, 'x', 'y')) != "abc" {
		t.Error("DecodePayload() should stop at the first NUL")
	}
}

func TestEncodePayload_Truncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", SegmentSize) // two bytes each

	got := EncodePayload(long, SegmentSize)
	if len(got) > SegmentSize {
		t.Fatalf("len = %d, exceeds segment size", len(got))
	}

	if got[len(got)-1] != 0 {
		t.Error("truncated payload must stay NUL-terminated")
	}

	if !utf8.Valid(got[:len(got)-1]) {
		t.Error("truncation split a character")
	}

	if tiny := EncodePayload("abc", 1); string(tiny) != "\x00" {
		t.Errorf("EncodePayload(limit 1) = %q", tiny)
	}
}

func TestEncodePayloadUTF16(t *testing.T) {
	t.Parallel()

	s := `C:\Users\ü` + "\n" + `consulo64.exe "𝄞.txt"`

	got := EncodePayloadUTF16(s, SegmentSize)
	if got[len(got)-1] != 0 {
		t.Fatal("payload must be NUL-terminated")
	}

	if back := DecodePayloadUTF16(got); back != s {
		t.Errorf("DecodePayloadUTF16() = %q, want %q", back, s)
	}
}

func TestEncodePayloadUTF16_KeepsSurrogatePairs(t *testing.T) {
	t.Parallel()

	// "a" then a clef (surrogate pair); a 6 byte limit leaves room for two
	// units, which would split the pair
	got := EncodePayloadUTF16("a𝄞", 6)

	if len(got) != 2 || got[0] != 'a' || got[1] != 0 {
		t.Errorf("EncodePayloadUTF16() = %v, want [a NUL]", got)
	}

	long := EncodePayloadUTF16(strings.Repeat("x", SegmentSize), SegmentSize)
	if len(long)*2 > SegmentSize {
		t.Errorf("encoded %d bytes, exceeds segment size", len(long)*2)
	}
}

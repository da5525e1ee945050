package charset

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf16"

	"golang.org/x/text/encoding/japanese"
)

const japaneseLine = "Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,こんにちは、これはテストです。わたしのなまえはさくらです。\n"

func TestToUTF8PassesThroughUTF8(t *testing.T) {
	in := []byte("Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,你好，世界")
	out, err := ToUTF8(in)
	if err != nil {
		t.Fatalf("ToUTF8 failed: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Errorf("expected input unchanged, got %q", out)
	}
}

func TestToUTF8Empty(t *testing.T) {
	out, err := ToUTF8(nil)
	if err != nil {
		t.Fatalf("ToUTF8 failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestToUTF8DecodesUTF16LE(t *testing.T) {
	text := "Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,字幕\n"
	in := []byte{0xff, 0xfe}
	for _, u := range utf16.Encode([]rune(text)) {
		in = append(in, byte(u), byte(u>>8))
	}

	out, err := ToUTF8(in)
	if err != nil {
		t.Fatalf("ToUTF8 failed: %v", err)
	}
	if string(out) != text {
		t.Errorf("expected %q, got %q", text, out)
	}
}

func TestToUTF8DecodesShiftJIS(t *testing.T) {
	text := strings.Repeat(japaneseLine, 20)
	in, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(text))
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}

	out, err := ToUTF8(in)
	if err != nil {
		t.Fatalf("ToUTF8 failed: %v", err)
	}
	if string(out) != text {
		t.Errorf("expected Shift_JIS text to round trip, got %q", out)
	}
}

func TestToUTF8KeepsMostlyUTF8Text(t *testing.T) {
	line := "Dialogue: 0,0:00:01.00,0:00:03.50,Default,,0,0,0,,你好，世界。这是中文字幕。\n"
	in := []byte(strings.Repeat(line, 30) + "Comment: broken \xff byte\n")

	out, err := ToUTF8(in)
	if err != nil {
		t.Fatalf("ToUTF8 failed: %v", err)
	}
	want := strings.Repeat(line, 30) + "Comment: broken \uFFFD byte\n"
	if string(out) != want {
		t.Errorf("expected stray byte replaced and text kept, got %q", out)
	}
}

func TestToUTF8RejectsUnrecognisedBytes(t *testing.T) {
	if _, err := ToUTF8([]byte{0xff}); err == nil {
		t.Error("expected error for undetectable input")
	}
}

func TestMostlyUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want bool
	}{
		{"ascii with stray byte", []byte("abc\xffdef"), false},
		{"chinese with stray byte", []byte("你好世界你好世界你好\xff"), true},
		{"too many stray bytes", []byte("你好\xff\xfe"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mostlyUTF8(tt.in); got != tt.want {
				t.Errorf("mostlyUTF8(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

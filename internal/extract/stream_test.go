package extract

import (
	"reflect"
	"testing"
)

func TestParseContentStream(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{
			name:   "Tj operator",
			stream: "BT\n(Hello World) Tj\nET",
			want:   "Hello World",
		},
		{
			name:   "TJ array operator",
			stream: "[(Hel) -20 (lo)] TJ",
			want:   "Hello",
		},
		{
			name:   "positioning inserts space",
			stream: "(Hello) Tj\n1 0 0 1 72 700 Td\n(World) Tj",
			want:   "Hello World",
		},
		{
			name:   "octal escape",
			stream: `(A\040B) Tj`,
			want:   "A B",
		},
		{
			name:   "empty stream",
			stream: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseContentStream([]byte(tt.stream)); got != tt.want {
				t.Errorf("parseContentStream = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodePDFString(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`plain`, "plain"},
		{`line\nbreak`, "line\nbreak"},
		{`tab\there`, "tab\there"},
		{`back\\slash`, `back\slash`},
		{`\101\102`, "AB"},
	}

	for _, tt := range tests {
		if got := decodePDFString([]byte(tt.raw)); got != tt.want {
			t.Errorf("decodePDFString(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "two paragraphs",
			text: "First paragraph.\n\nSecond paragraph.",
			want: []string{"First paragraph.", "Second paragraph."},
		},
		{
			name: "no blank lines yields one block",
			text: "Line one.\nLine two.",
			want: []string{"Line one. Line two."},
		},
		{
			name: "windows line endings",
			text: "First.\r\n\r\nSecond.",
			want: []string{"First.", "Second."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitParagraphs(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitParagraphs = %v, want %v", got, tt.want)
			}
		})
	}
}

package backend

import (
	"bytes"
	"testing"

	"github.com/matzehuels/dotpipe/pkg/errors"
)

func TestLookupEncoding(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"utf-8", "utf-8"},
		{"UTF8", "utf-8"},
		{"ascii", "ascii"},
		{"US-ASCII", "ascii"},
		{"latin1", "iso-8859-1"},
		{"ISO-8859-1", "iso-8859-1"},
		{"l1", "iso-8859-1"},
		{"cp1252", "windows-1252"},
		{"iso-8859-2", "iso-8859-2"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			c, err := LookupEncoding(tt.label)
			if err != nil {
				t.Fatalf("LookupEncoding(%q) error = %v", tt.label, err)
			}
			if c.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", c.Name(), tt.want)
			}
		})
	}
}

func TestLookupEncodingErrors(t *testing.T) {
	if _, err := LookupEncoding(""); !errors.Is(err, errors.ErrCodeRequiredArgument) {
		t.Errorf("empty label: error = %v, want REQUIRED_ARGUMENT", err)
	}
	if _, err := LookupEncoding("klingon"); !errors.Is(err, errors.ErrCodeUnknownValue) {
		t.Errorf("unknown label: error = %v, want UNKNOWN_VALUE", err)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	tests := []struct {
		encoding string
		text     string
		encoded  []byte
	}{
		{"ascii", "graph { spam }", []byte("graph { spam }")},
		{"utf-8", "graph { \"Straße\" }", []byte("graph { \"Stra\xc3\x9fe\" }")},
		{"latin1", "graph { \"Straße\" }", []byte("graph { \"Stra\xdfe\" }")},
		{"latin1", "\u0080\u00ff", []byte{0x80, 0xff}},
		{"windows-1252", "€", []byte{0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			c, err := LookupEncoding(tt.encoding)
			if err != nil {
				t.Fatal(err)
			}
			got, err := c.Encode(tt.text)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if !bytes.Equal(got, tt.encoded) {
				t.Errorf("Encode() = %q, want %q", got, tt.encoded)
			}
			back, err := c.Decode(got)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if back != tt.text {
				t.Errorf("Decode() = %q, want %q", back, tt.text)
			}
		})
	}
}

func TestASCIIIsStrict(t *testing.T) {
	c, err := LookupEncoding("ascii")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Encode("Straße"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Encode() error = %v, want INVALID_INPUT", err)
	}
	if _, err := c.Decode([]byte{'a', 0xdf}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Decode() error = %v, want INVALID_INPUT", err)
	}
}

func TestEncodeUnrepresentable(t *testing.T) {
	c, err := LookupEncoding("latin1")
	if err != nil {
		t.Fatal(err)
	}
	for _, text := range []string{"雪", "€"} {
		if _, err := c.Encode(text); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Encode(%q) error = %v, want INVALID_INPUT", text, err)
		}
	}
}

func TestLatin1DecodesEveryByte(t *testing.T) {
	c, err := LookupEncoding("latin1")
	if err != nil {
		t.Fatal(err)
	}
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	text, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	for i, r := range []rune(text) {
		if r != rune(i) {
			t.Fatalf("byte %#x decoded as %U", i, r)
		}
	}
}

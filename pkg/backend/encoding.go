package backend

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/matzehuels/dotpipe/pkg/errors"
)

// DefaultEncoding is the encoding Graphviz reads and writes unless the
// graph sets a "charset" attribute.
const DefaultEncoding = "utf-8"

// Codec converts between Go strings and the bytes exchanged with a subprocess.
type Codec struct {
	name string
	enc  encoding.Encoding // nil for the built-in ascii and utf-8 codecs
}

// latin1Labels name ISO-8859-1 proper. The WHATWG index folds them into
// windows-1252, which Graphviz's charset=latin1 does not mean.
var latin1Labels = map[string]bool{
	"latin1": true, "latin-1": true, "l1": true,
	"iso-8859-1": true, "iso8859-1": true, "iso_8859-1": true, "iso88591": true,
	"8859": true, "cp819": true, "ibm819": true,
}

// LookupEncoding returns the codec for a case-insensitive encoding label.
// "ascii" is strict 7-bit and the latin1 family is ISO-8859-1; other labels
// follow the WHATWG encoding index.
func LookupEncoding(name string) (Codec, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	switch label {
	case "":
		return Codec{}, errors.New(errors.ErrCodeRequiredArgument, "encoding is required")
	case "ascii", "us-ascii":
		return Codec{name: "ascii"}, nil
	case "utf-8", "utf8":
		return Codec{name: "utf-8"}, nil
	}
	if latin1Labels[label] {
		return Codec{name: "iso-8859-1", enc: charmap.ISO8859_1}, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return Codec{}, &errors.UnknownValueError{Kind: "encoding", Value: name}
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = label
	}
	return Codec{name: canonical, enc: enc}, nil
}

// Name returns the canonical encoding name.
func (c Codec) Name() string { return c.name }

// Encode converts text to bytes. Characters the encoding cannot represent
// are an INVALID_INPUT error.
func (c Codec) Encode(text string) ([]byte, error) {
	switch {
	case c.name == "ascii":
		if i := nonASCII(text); i >= 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "'ascii' codec can't encode character at position %d", i)
		}
		return []byte(text), nil
	case c.enc == nil:
		return []byte(text), nil
	}

	b, err := c.enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode %s", c.name)
	}
	return b, nil
}

// Decode converts subprocess output to text.
func (c Codec) Decode(data []byte) (string, error) {
	switch {
	case c.name == "ascii":
		if i := nonASCII(string(data)); i >= 0 {
			return "", errors.New(errors.ErrCodeInvalidInput, "'ascii' codec can't decode byte at position %d", i)
		}
		return string(data), nil
	case c.enc == nil:
		return string(data), nil
	}

	b, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", c.name)
	}
	return string(b), nil
}

func nonASCII(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return i
		}
	}
	return -1
}

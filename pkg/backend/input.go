package backend

import (
	"bufio"
	"bytes"
	"io"
	"iter"

	"github.com/matzehuels/dotpipe/pkg/errors"
)

// Input is what a subprocess reads on standard input. It is one of
// NoInput, BytesInput, TextInput, LinesInput or ByteLinesInput.
type Input interface {
	open() (stdin, error)
}

// stdin is an opened Input. close must be called once the subprocess has
// been waited for, whether or not it was started.
type stdin struct {
	r     io.Reader // nil for the null device
	err   func() error
	close func()
}

func noStdin(r io.Reader) stdin {
	return stdin{r: r, err: func() error { return nil }, close: func() {}}
}

// NoInput connects standard input to the null device.
type NoInput struct{}

func (NoInput) open() (stdin, error) { return noStdin(nil), nil }

// BytesInput passes already encoded data through unchanged.
type BytesInput struct {
	Data []byte
}

func (in BytesInput) open() (stdin, error) { return noStdin(bytes.NewReader(in.Data)), nil }

// TextInput encodes Text with Encoding before the subprocess is started.
type TextInput struct {
	Text     string
	Encoding string
}

func (in TextInput) open() (stdin, error) {
	codec, err := LookupEncoding(in.Encoding)
	if err != nil {
		return stdin{}, err
	}
	data, err := codec.Encode(in.Text)
	if err != nil {
		return stdin{}, err
	}
	return noStdin(bytes.NewReader(data)), nil
}

// LinesInput streams text lines, each encoded with Encoding as it is
// written. Lines should carry their own newline.
type LinesInput struct {
	Lines    iter.Seq2[string, error]
	Encoding string
}

func (in LinesInput) open() (stdin, error) {
	codec, err := LookupEncoding(in.Encoding)
	if err != nil {
		return stdin{}, err
	}
	next, stop := iter.Pull2(in.Lines)
	lr := &lineReader{next: func() ([]byte, error, bool) {
		line, err, ok := next()
		if !ok || err != nil {
			return nil, err, ok
		}
		b, err := codec.Encode(line)
		return b, err, true
	}}
	return lr.stdin(stop), nil
}

// ByteLinesInput streams lines that the caller has already encoded.
type ByteLinesInput struct {
	Lines iter.Seq2[[]byte, error]
}

func (in ByteLinesInput) open() (stdin, error) {
	next, stop := iter.Pull2(in.Lines)
	lr := &lineReader{next: next}
	return lr.stdin(stop), nil
}

// lineReader adapts a pull iterator to io.Reader. The first iterator error
// is kept so the runner can report it instead of the exit status it causes.
type lineReader struct {
	next func() ([]byte, error, bool)
	buf  []byte
	err  error
}

func (r *lineReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		line, err, ok := r.next()
		if !ok {
			return 0, io.EOF
		}
		if err != nil {
			r.err = err
			return 0, err
		}
		r.buf = line
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *lineReader) stdin(stop func()) stdin {
	return stdin{
		r: r,
		err: func() error {
			if r.err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, r.err, "stream input lines")
			}
			return nil
		},
		close: stop,
	}
}

// StringLines returns a sequence over fixed lines.
func StringLines(lines ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, l := range lines {
			if !yield(l, nil) {
				return
			}
		}
	}
}

// ReaderLines returns a sequence over the lines of r, newlines included.
// A read error ends the sequence with that error.
func ReaderLines(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			if line != "" && !yield(line, nil) {
				return
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
		}
	}
}

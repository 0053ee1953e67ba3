// Package source wraps DOT source text with its rendering settings.
//
// A Source remembers where it is saved and how it should be laid out, so
// callers can render the same graph repeatedly:
//
//	src := source.New("digraph { spam -> eggs }", client, defaults)
//	src.Filename = "spam.gv"
//	if err := src.SetFormat("svg"); err != nil { ... }
//	path, err := src.Render(ctx)
//
// Engine and format fall back to a shared *backend.Defaults when unset.
package source

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/dotpipe/pkg/backend"
	"github.com/matzehuels/dotpipe/pkg/errors"
)

// DefaultFilename is used when a Source has no filename.
const DefaultFilename = "Source.gv"

// Backend is the subset of *backend.Client a Source needs.
type Backend interface {
	Render(ctx context.Context, req backend.Request, path string, opts ...backend.CallOption) (string, error)
	PipeLines(ctx context.Context, req backend.Request, lines iter.Seq2[string, error], inputEncoding string, opts ...backend.CallOption) ([]byte, error)
	PipeLinesString(ctx context.Context, req backend.Request, lines iter.Seq2[string, error], encoding string, opts ...backend.CallOption) (string, error)
	Unflatten(ctx context.Context, source string, opts backend.UnflattenOptions, encoding string, callOpts ...backend.CallOption) (string, error)
}

var _ Backend = (*backend.Client)(nil)

// Source is DOT text plus the settings used to save and render it.
type Source struct {
	Text      string
	Filename  string // defaults to DefaultFilename
	Directory string
	Encoding  string // defaults to backend.DefaultEncoding

	engine    string
	format    string
	renderer  string
	formatter string

	backend  Backend
	defaults *backend.Defaults
}

// New creates a source rendered with b. defaults may be nil.
func New(text string, b Backend, defaults *backend.Defaults) *Source {
	return &Source{
		Text:     text,
		Encoding: backend.DefaultEncoding,
		backend:  b,
		defaults: defaults,
	}
}

// FromFile reads a DOT file decoded with encoding. The source keeps the
// file's name and directory, so Save writes back to it.
func FromFile(path, encoding string, b Backend, defaults *backend.Defaults) (*Source, error) {
	if encoding == "" {
		encoding = backend.DefaultEncoding
	}
	codec, err := backend.LookupEncoding(encoding)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	text, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}

	s := New(text, b, defaults)
	s.Directory, s.Filename = filepath.Split(path)
	s.Encoding = encoding
	return s, nil
}

// Engine returns the layout engine, falling back to the defaults.
func (s *Source) Engine() string {
	if s.engine != "" {
		return s.engine
	}
	return s.defaults.Engine()
}

// Format returns the output format, falling back to the defaults.
func (s *Source) Format() string {
	if s.format != "" {
		return s.format
	}
	return s.defaults.Format()
}

// Renderer returns the output renderer, or "".
func (s *Source) Renderer() string { return s.renderer }

// Formatter returns the output formatter, or "".
func (s *Source) Formatter() string { return s.formatter }

// SetEngine sets the layout engine. An empty value restores the default.
func (s *Source) SetEngine(engine string) error {
	return set(&s.engine, engine, backend.CheckEngine)
}

// SetFormat sets the output format. An empty value restores the default.
func (s *Source) SetFormat(format string) error {
	return set(&s.format, format, backend.CheckFormat)
}

// SetRenderer sets the output renderer. An empty value clears it.
func (s *Source) SetRenderer(renderer string) error {
	return set(&s.renderer, renderer, backend.CheckRenderer)
}

// SetFormatter sets the output formatter. An empty value clears it.
func (s *Source) SetFormatter(formatter string) error {
	return set(&s.formatter, formatter, backend.CheckFormatter)
}

func set(dst *string, value string, check func(string) (string, error)) error {
	if value == "" {
		*dst = ""
		return nil
	}
	v, err := check(value)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// Request returns the layout request for the current settings.
func (s *Source) Request() backend.Request {
	return backend.Request{
		Engine:    s.Engine(),
		Format:    s.Format(),
		Renderer:  s.renderer,
		Formatter: s.formatter,
	}
}

// Filepath returns the path Save writes to.
func (s *Source) Filepath() string {
	name := s.Filename
	if name == "" {
		name = DefaultFilename
	}
	return filepath.Join(s.Directory, name)
}

// Bytes returns the text encoded with the source's encoding.
func (s *Source) Bytes() ([]byte, error) {
	codec, err := backend.LookupEncoding(s.encoding())
	if err != nil {
		return nil, err
	}
	return codec.Encode(s.Text)
}

// Save writes the encoded text to Filepath, creating the directory if
// needed, and returns the path written.
func (s *Source) Save() (string, error) {
	data, err := s.Bytes()
	if err != nil {
		return "", err
	}
	path := s.Filepath()
	if s.Directory != "" {
		if err := os.MkdirAll(s.Directory, 0o755); err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", s.Directory)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return path, nil
}

// Render saves the source and renders the saved file, returning the path
// of the output.
func (s *Source) Render(ctx context.Context, opts ...backend.CallOption) (string, error) {
	if _, err := s.Request().Normalize(); err != nil {
		return "", err
	}
	path, err := s.Save()
	if err != nil {
		return "", err
	}
	return s.backend.Render(ctx, s.Request(), path, opts...)
}

// Pipe streams the text line by line, encoded with the source's encoding,
// and returns the rendered output as bytes.
func (s *Source) Pipe(ctx context.Context, opts ...backend.CallOption) ([]byte, error) {
	return s.backend.PipeLines(ctx, s.Request(), s.lines(), s.encoding(), opts...)
}

// PipeString is Pipe with the output decoded with the source's encoding.
// Only meaningful for text formats such as svg or plain.
func (s *Source) PipeString(ctx context.Context, opts ...backend.CallOption) (string, error) {
	return s.backend.PipeLinesString(ctx, s.Request(), s.lines(), s.encoding(), opts...)
}

// lines yields the text's lines, newlines included.
func (s *Source) lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for line := range strings.Lines(s.Text) {
			if !yield(line, nil) {
				return
			}
		}
	}
}

// Unflatten returns a copy of s with its text passed through unflatten.
// The copy keeps the settings of s.
func (s *Source) Unflatten(ctx context.Context, opts backend.UnflattenOptions, callOpts ...backend.CallOption) (*Source, error) {
	text, err := s.backend.Unflatten(ctx, s.Text, opts, s.encoding(), callOpts...)
	if err != nil {
		return nil, err
	}
	out := *s
	out.Text = text
	return &out, nil
}

func (s *Source) encoding() string {
	if s.Encoding == "" {
		return backend.DefaultEncoding
	}
	return s.Encoding
}

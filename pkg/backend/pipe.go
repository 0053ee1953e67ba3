package backend

import (
	"context"
	"iter"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dotpipe/pkg/errors"
)

// Client renders DOT source with the Graphviz executables. The zero value
// is not usable; create one with New.
type Client struct {
	// Binary is the layout command, resolved on PATH unless it contains a
	// path separator.
	Binary string

	// UnflattenBinary is the command used by Unflatten.
	UnflattenBinary string

	Runner *Runner
}

// New creates a client for the default "dot" and "unflatten" binaries.
func New(logger *log.Logger) *Client {
	return &Client{
		Binary:          DotBinary,
		UnflattenBinary: UnflattenBinary,
		Runner:          NewRunner(logger),
	}
}

// CallOption adjusts a single façade call.
type CallOption func(*callOptions)

type callOptions struct {
	quiet bool
}

// WithQuiet suppresses forwarding of the subprocess's stderr to the log.
func WithQuiet() CallOption {
	return func(o *callOptions) { o.quiet = true }
}

func collect(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Render lays out the DOT file at path and writes the result next to it
// ("dot -O"). It returns the path of the rendered file, which is relative
// when path is. The subprocess starts in the file's directory so that
// references such as [image="images/camelot.png"] resolve against it.
func (c *Client) Render(ctx context.Context, req Request, path string, opts ...CallOption) (string, error) {
	req, err := req.Normalize()
	if err != nil {
		return "", err
	}
	cmd, err := BuildCommand(c.binary(), req)
	if err != nil {
		return "", err
	}
	if err := errors.ValidateSourcePath(path); err != nil {
		return "", err
	}

	dir, file := filepath.Split(path)
	cmd = cmd.With("-O", file)
	rendered := file + "." + req.Suffix()

	run := RunOptions{CaptureOutput: true, Quiet: collect(opts).quiet}
	if dir != "" {
		run.Dir = dir
		rendered = filepath.Join(dir, rendered)
	}

	if _, err := c.runner().Run(ctx, cmd, NoInput{}, run); err != nil {
		return "", err
	}
	return rendered, nil
}

// Pipe returns data piped through the layout command as raw bytes.
// Neither direction is encoded.
func (c *Client) Pipe(ctx context.Context, req Request, data []byte, opts ...CallOption) ([]byte, error) {
	return c.pipe(ctx, req, BytesInput{Data: data}, opts)
}

// PipeString returns input piped through the layout command. encoding is
// used both to encode input and to decode the output.
func (c *Client) PipeString(ctx context.Context, req Request, input, encoding string, opts ...CallOption) (string, error) {
	return c.pipeText(ctx, req, TextInput{Text: input, Encoding: encoding}, encoding, opts)
}

// PipeLines streams lines into the layout command, encoding each with
// inputEncoding, and returns the raw output. The lines are consumed while
// the subprocess runs and are never joined in memory.
func (c *Client) PipeLines(ctx context.Context, req Request, lines iter.Seq2[string, error], inputEncoding string, opts ...CallOption) ([]byte, error) {
	return c.pipe(ctx, req, LinesInput{Lines: lines, Encoding: inputEncoding}, opts)
}

// PipeLinesString is PipeLines with the output decoded using encoding.
func (c *Client) PipeLinesString(ctx context.Context, req Request, lines iter.Seq2[string, error], encoding string, opts ...CallOption) (string, error) {
	return c.pipeText(ctx, req, LinesInput{Lines: lines, Encoding: encoding}, encoding, opts)
}

// PipeByteLines streams lines the caller has already encoded.
func (c *Client) PipeByteLines(ctx context.Context, req Request, lines iter.Seq2[[]byte, error], opts ...CallOption) ([]byte, error) {
	return c.pipe(ctx, req, ByteLinesInput{Lines: lines}, opts)
}

// Command returns the layout command the pipe variants run for req.
func (c *Client) Command(req Request) (Command, error) {
	return BuildCommand(c.binary(), req)
}

func (c *Client) pipe(ctx context.Context, req Request, in Input, opts []CallOption) ([]byte, error) {
	cmd, err := c.Command(req)
	if err != nil {
		return nil, err
	}
	out, err := c.runner().Run(ctx, cmd, in, RunOptions{CaptureOutput: true, Quiet: collect(opts).quiet})
	if err != nil {
		return nil, err
	}
	return out.Stdout, nil
}

func (c *Client) pipeText(ctx context.Context, req Request, in Input, encoding string, opts []CallOption) (string, error) {
	cmd, err := BuildCommand(c.binary(), req)
	if err != nil {
		return "", err
	}
	codec, err := LookupEncoding(encoding)
	if err != nil {
		return "", err
	}
	out, err := c.runner().Run(ctx, cmd, in, RunOptions{CaptureOutput: true, Quiet: collect(opts).quiet})
	if err != nil {
		return "", err
	}
	return codec.Decode(out.Stdout)
}

func (c *Client) binary() string {
	if c.Binary == "" {
		return DotBinary
	}
	return c.Binary
}

func (c *Client) runner() *Runner {
	if c.Runner == nil {
		return NewRunner(nil)
	}
	return c.Runner
}

package backend

import (
	"slices"
	"strings"

	"github.com/matzehuels/dotpipe/pkg/errors"
)

// DotBinary is the default name of the layout command.
const DotBinary = "dot"

// Request selects the layout engine and the output pipeline.
// Empty Renderer and Formatter mean "not given".
type Request struct {
	Engine    string `json:"engine"`
	Format    string `json:"format"`
	Renderer  string `json:"renderer,omitempty"`
	Formatter string `json:"formatter,omitempty"`
}

// Normalize validates every field and returns the request with lower-cased
// values. A formatter without a renderer is rejected before any lookup.
func (r Request) Normalize() (Request, error) {
	if r.Formatter != "" && r.Renderer == "" {
		return Request{}, errors.New(errors.ErrCodeRequiredArgument, "formatter given without renderer")
	}

	var (
		out Request
		err error
	)
	if out.Engine, err = CheckEngine(r.Engine); err != nil {
		return Request{}, err
	}
	if out.Format, err = CheckFormat(r.Format); err != nil {
		return Request{}, err
	}
	if r.Renderer != "" {
		if out.Renderer, err = CheckRenderer(r.Renderer); err != nil {
			return Request{}, err
		}
	}
	if r.Formatter != "" {
		if out.Formatter, err = CheckFormatter(r.Formatter); err != nil {
			return Request{}, err
		}
	}
	return out, nil
}

// OutputFormat returns the "-T" value: format[:renderer[:formatter]].
func (r Request) OutputFormat() string {
	return joinPresent(":", r.Format, r.Renderer, r.Formatter)
}

// Suffix returns the extension "dot -O" appends to a rendered file:
// [formatter.][renderer.]format.
func (r Request) Suffix() string {
	return joinPresent(".", r.Formatter, r.Renderer, r.Format)
}

func joinPresent(sep string, parts ...string) string {
	var present []string
	for _, p := range parts {
		if p != "" {
			present = append(present, p)
		}
	}
	return strings.Join(present, sep)
}

// Command is an argument vector for one subprocess invocation.
type Command struct {
	Name string   // executable name or path
	Args []string // arguments after the executable
}

// BuildCommand validates req and returns the layout command
// "<binary> -K<engine> -T<format>[:<renderer>[:<formatter>]]".
func BuildCommand(binary string, req Request) (Command, error) {
	req, err := req.Normalize()
	if err != nil {
		return Command{}, err
	}
	if binary == "" {
		binary = DotBinary
	}
	return Command{
		Name: binary,
		Args: []string{"-K" + req.Engine, "-T" + req.OutputFormat()},
	}, nil
}

// With returns a copy of c with args appended.
func (c Command) With(args ...string) Command {
	return Command{Name: c.Name, Args: append(slices.Clone(c.Args), args...)}
}

// Argv returns a fresh slice holding the executable followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command for logs and error messages.
func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

package source

import (
	"context"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/dotpipe/pkg/errors"
)

// Check parses data as DOT without laying it out. A syntax error is an
// INVALID_INPUT error; nothing is executed.
func Check(ctx context.Context, data []byte) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "init graphviz parser")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()
	return nil
}

// Check parses the encoded text of s.
func (s *Source) Check(ctx context.Context) error {
	data, err := s.Bytes()
	if err != nil {
		return err
	}
	return Check(ctx, data)
}

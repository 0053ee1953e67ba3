package backend

import (
	"context"
	"strconv"

	"github.com/matzehuels/dotpipe/pkg/errors"
)

// UnflattenBinary is the default name of the unflatten command.
const UnflattenBinary = "unflatten"

// UnflattenOptions controls "unflatten", which adjusts the aspect ratio of
// wide graphs by staggering leaves. Zero values leave a flag unset.
type UnflattenOptions struct {
	Stagger int  // -l: stagger the minimum length of leaf edges across 1..Stagger
	Fanout  bool // -f: fan out nodes with indegree and outdegree 1; needs Stagger
	Chain   int  // -c: form disconnected nodes into chains of up to Chain nodes
}

// Args returns the command-line flags for o.
func (o UnflattenOptions) Args() ([]string, error) {
	if o.Fanout && o.Stagger == 0 {
		return nil, errors.New(errors.ErrCodeRequiredArgument, "fanout given without stagger")
	}
	if o.Stagger < 0 || o.Chain < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "stagger and chain must not be negative")
	}

	var args []string
	if o.Stagger > 0 {
		args = append(args, "-l", strconv.Itoa(o.Stagger))
	}
	if o.Fanout {
		args = append(args, "-f")
	}
	if o.Chain > 0 {
		args = append(args, "-c", strconv.Itoa(o.Chain))
	}
	return args, nil
}

// Unflatten returns source piped through "unflatten". encoding is used for
// both directions.
func (c *Client) Unflatten(ctx context.Context, source string, opts UnflattenOptions, encoding string, callOpts ...CallOption) (string, error) {
	args, err := opts.Args()
	if err != nil {
		return "", err
	}
	codec, err := LookupEncoding(encoding)
	if err != nil {
		return "", err
	}

	name := c.UnflattenBinary
	if name == "" {
		name = UnflattenBinary
	}
	cmd := Command{Name: name, Args: args}
	in := TextInput{Text: source, Encoding: encoding}

	out, err := c.runner().Run(ctx, cmd, in, RunOptions{CaptureOutput: true, Quiet: collect(callOpts).quiet})
	if err != nil {
		return "", err
	}
	return codec.Decode(out.Stdout)
}

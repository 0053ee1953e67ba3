package backend

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/dotpipe/pkg/errors"
)

// Version is a Graphviz version number with two to four components.
type Version []int

// versionPattern matches "graphviz version MAJOR.MINOR[.PATCH[~dev.YYYYmmdd.HHMM | .SUB]] ".
// The dev-build date and time are not captured.
var versionPattern = regexp.MustCompile(`graphviz version` +
	` ` +
	`(\d+)\.(\d+)` +
	`(?:\.(\d+)` +
	`(?:~dev\.\d{8}\.\d{4}|\.(\d+))?` +
	`)?` +
	` `)

// ParseVersion extracts the version number from a "dot -V" banner.
func ParseVersion(text string) (Version, error) {
	m := versionPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, errors.New(errors.ErrCodeVersionParse, "cannot parse version banner: %q", text)
	}

	var v Version
	for _, g := range m[1:] {
		if g == "" {
			continue
		}
		n, err := strconv.Atoi(g)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeVersionParse, err, "cannot parse version banner: %q", text)
		}
		v = append(v, n)
	}
	return v, nil
}

// String returns the dotted version, e.g. "2.44.1".
func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// AtLeast reports whether v >= want, comparing component-wise with missing
// components treated as zero.
func (v Version) AtLeast(want ...int) bool {
	for i := 0; i < max(len(v), len(want)); i++ {
		a, b := at(v, i), at(want, i)
		if a != b {
			return a > b
		}
	}
	return true
}

func at(v []int, i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}

// Version runs "dot -V" and parses the banner, which Graphviz may print on
// either stdout or stderr.
func (c *Client) Version(ctx context.Context) (Version, error) {
	cmd := Command{Name: c.binary(), Args: []string{"-V"}}
	out, err := c.runner().Run(ctx, cmd, NoInput{}, RunOptions{CaptureOutput: true, CombinedOutput: true})
	if err != nil {
		return nil, err
	}

	text, err := asciiCodec.Decode(out.Stdout)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeVersionParse, err, "cannot parse %s output: %q", cmd, out.Stdout)
	}
	v, err := ParseVersion(text)
	if err != nil {
		return nil, errors.New(errors.ErrCodeVersionParse, "cannot parse %s output: %q", cmd, text)
	}
	return v, nil
}

var asciiCodec = Codec{name: "ascii"}

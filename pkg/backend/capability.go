package backend

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/dotpipe/pkg/errors"
)

// Engines is the set of known layout commands used for rendering.
var Engines = set(
	"dot", // http://www.graphviz.org/pdf/dot.1.pdf
	"neato",
	"twopi",
	"circo",
	"fdp",
	"sfdp",
	"patchwork",
	"osage",
)

// Formats is the set of known output formats for rendering.
var Formats = set(
	"bmp", // http://www.graphviz.org/doc/info/output.html
	"canon", "dot", "gv", "xdot", "xdot1.2", "xdot1.4",
	"cgimage",
	"cmap",
	"eps",
	"exr",
	"fig",
	"gd", "gd2",
	"gif",
	"gtk",
	"ico",
	"imap", "cmapx",
	"imap_np", "cmapx_np",
	"ismap",
	"jp2",
	"jpg", "jpeg", "jpe",
	"json", "json0", "dot_json", "xdot_json", // Graphviz 2.40
	"pct", "pict",
	"pdf",
	"pic",
	"plain", "plain-ext",
	"png",
	"pov",
	"ps",
	"ps2",
	"psd",
	"sgi",
	"svg", "svgz",
	"tga",
	"tif", "tiff",
	"tk",
	"vml", "vmlz",
	"vrml",
	"wbmp",
	"webp",
	"xlib",
	"x11",
)

// Renderers is the set of known output renderers ("dot -T:" lists them).
var Renderers = set(
	"cairo",
	"dot",
	"fig",
	"gd",
	"gdiplus",
	"map",
	"pic",
	"pov",
	"ps",
	"svg",
	"tk",
	"vml",
	"vrml",
	"xdot",
)

// Formatters is the set of known output formatters.
var Formatters = set(
	"cairo",
	"core",
	"gd",
	"gdiplus",
	"gdwbmp",
	"xlib",
)

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// Sorted returns the members of a capability set in lexical order.
func Sorted(s map[string]bool) []string {
	return slices.Sorted(maps.Keys(s))
}

// check lower-cases value and verifies it is a member of s.
func check(kind string, s map[string]bool, value string) (string, error) {
	v := strings.ToLower(value)
	if !s[v] {
		return "", &errors.UnknownValueError{Kind: kind, Value: value}
	}
	return v, nil
}

// CheckEngine returns the normalized engine or an UNKNOWN_VALUE error.
func CheckEngine(engine string) (string, error) { return check("engine", Engines, engine) }

// CheckFormat returns the normalized format or an UNKNOWN_VALUE error.
func CheckFormat(format string) (string, error) { return check("format", Formats, format) }

// CheckRenderer returns the normalized renderer or an UNKNOWN_VALUE error.
func CheckRenderer(renderer string) (string, error) { return check("renderer", Renderers, renderer) }

// CheckFormatter returns the normalized formatter or an UNKNOWN_VALUE error.
func CheckFormatter(formatter string) (string, error) {
	return check("formatter", Formatters, formatter)
}

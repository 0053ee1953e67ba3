package backend

import (
	stderrors "errors"
	"slices"
	"testing"

	"github.com/matzehuels/dotpipe/pkg/errors"
)

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want []string
	}{
		{
			name: "engine and format",
			req:  Request{Engine: "dot", Format: "svg"},
			want: []string{"dot", "-Kdot", "-Tsvg"},
		},
		{
			name: "with renderer",
			req:  Request{Engine: "neato", Format: "png", Renderer: "cairo"},
			want: []string{"dot", "-Kneato", "-Tpng:cairo"},
		},
		{
			name: "with renderer and formatter",
			req:  Request{Engine: "sfdp", Format: "png", Renderer: "cairo", Formatter: "gd"},
			want: []string{"dot", "-Ksfdp", "-Tpng:cairo:gd"},
		},
		{
			name: "upper case is normalized",
			req:  Request{Engine: "DOT", Format: "SVG", Renderer: "Cairo"},
			want: []string{"dot", "-Kdot", "-Tsvg:cairo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := BuildCommand("", tt.req)
			if err != nil {
				t.Fatalf("BuildCommand() error = %v", err)
			}
			if got := cmd.Argv(); !slices.Equal(got, tt.want) {
				t.Errorf("Argv() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildCommandCustomBinary(t *testing.T) {
	cmd, err := BuildCommand("/opt/graphviz/bin/dot", Request{Engine: "dot", Format: "pdf"})
	if err != nil {
		t.Fatalf("BuildCommand() error = %v", err)
	}
	if cmd.Name != "/opt/graphviz/bin/dot" {
		t.Errorf("Name = %q", cmd.Name)
	}
	if cmd.String() != "/opt/graphviz/bin/dot -Kdot -Tpdf" {
		t.Errorf("String() = %q", cmd.String())
	}
}

func TestBuildCommandAllCombinations(t *testing.T) {
	renderers := append([]string{""}, Sorted(Renderers)...)
	formatters := append([]string{""}, Sorted(Formatters)...)

	for _, engine := range Sorted(Engines) {
		for _, format := range Sorted(Formats) {
			for _, renderer := range renderers {
				for _, formatter := range formatters {
					req := Request{Engine: engine, Format: format, Renderer: renderer, Formatter: formatter}
					cmd, err := BuildCommand("dot", req)

					if formatter != "" && renderer == "" {
						if !errors.Is(err, errors.ErrCodeRequiredArgument) {
							t.Fatalf("%+v: error = %v, want REQUIRED_ARGUMENT", req, err)
						}
						continue
					}
					if err != nil {
						t.Fatalf("%+v: unexpected error %v", req, err)
					}
					want := []string{"-K" + engine, "-T" + joinPresent(":", format, renderer, formatter)}
					if !slices.Equal(cmd.Args, want) {
						t.Fatalf("%+v: Args = %q, want %q", req, cmd.Args, want)
					}
				}
			}
		}
	}
}

func TestBuildCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		code     errors.Code
		wantKind string
		wantVal  string
	}{
		{"formatter without renderer", Request{Engine: "dot", Format: "png", Formatter: "cairo"}, errors.ErrCodeRequiredArgument, "", ""},
		{"formatter without renderer beats unknown engine", Request{Engine: "spam", Format: "png", Formatter: "cairo"}, errors.ErrCodeRequiredArgument, "", ""},
		{"unknown engine", Request{Engine: "spam", Format: "png"}, errors.ErrCodeUnknownValue, "engine", "spam"},
		{"empty engine", Request{Format: "png"}, errors.ErrCodeUnknownValue, "engine", ""},
		{"unknown format", Request{Engine: "dot", Format: "Spam"}, errors.ErrCodeUnknownValue, "format", "Spam"},
		{"unknown renderer", Request{Engine: "dot", Format: "png", Renderer: "spam"}, errors.ErrCodeUnknownValue, "renderer", "spam"},
		{"unknown formatter", Request{Engine: "dot", Format: "png", Renderer: "cairo", Formatter: "spam"}, errors.ErrCodeUnknownValue, "formatter", "spam"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildCommand("dot", tt.req)
			if !errors.Is(err, tt.code) {
				t.Fatalf("error = %v, want code %s", err, tt.code)
			}
			if tt.wantKind == "" {
				return
			}
			var uerr *errors.UnknownValueError
			if !stderrors.As(err, &uerr) {
				t.Fatalf("error %T is not *UnknownValueError", err)
			}
			if uerr.Kind != tt.wantKind || uerr.Value != tt.wantVal {
				t.Errorf("got %s %q, want %s %q", uerr.Kind, uerr.Value, tt.wantKind, tt.wantVal)
			}
		})
	}
}

func TestRequestSuffix(t *testing.T) {
	tests := []struct {
		req  Request
		want string
	}{
		{Request{Format: "pdf"}, "pdf"},
		{Request{Format: "png", Renderer: "cairo"}, "cairo.png"},
		{Request{Format: "png", Renderer: "cairo", Formatter: "gd"}, "gd.cairo.png"},
	}

	for _, tt := range tests {
		if got := tt.req.Suffix(); got != tt.want {
			t.Errorf("%+v.Suffix() = %q, want %q", tt.req, got, tt.want)
		}
	}
}

func TestCommandWithDoesNotAlias(t *testing.T) {
	base, err := BuildCommand("dot", Request{Engine: "dot", Format: "pdf"})
	if err != nil {
		t.Fatal(err)
	}
	a := base.With("-O", "a.gv")
	b := base.With("-O", "b.gv")

	if len(base.Args) != 2 {
		t.Errorf("base mutated: %q", base.Args)
	}
	if a.Args[3] != "a.gv" || b.Args[3] != "b.gv" {
		t.Errorf("With() aliases: a=%q b=%q", a.Args, b.Args)
	}

	argv := base.Argv()
	argv[1] = "-Kspam"
	if base.Args[0] != "-Kdot" {
		t.Error("Argv() must return a fresh slice")
	}
}

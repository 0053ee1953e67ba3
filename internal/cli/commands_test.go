package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/dotpipe/pkg/errors"
)

const graph = "digraph { spam -> eggs }\n"

func TestPipeCommand(t *testing.T) {
	e := newTestEnv(t, "svg")

	out, err := e.run(t, graph, "pipe", "--no-cache")
	if err != nil {
		t.Fatalf("pipe error = %v", err)
	}
	if !strings.Contains(out, "<svg>") || !strings.Contains(out, "spam -> eggs") {
		t.Errorf("output = %q", out)
	}
}

func TestPipeCommandArgs(t *testing.T) {
	e := newTestEnv(t, "args")
	path := e.writeFile(t, "g.gv", graph)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{}, "-Kdot -Tsvg"},
		{[]string{"-K", "NEATO", "-T", "png"}, "-Kneato -Tpng"},
		{[]string{"-T", "png", "-r", "cairo", "--formatter", "gd"}, "-Kdot -Tpng:cairo:gd"},
	}

	for _, tt := range tests {
		args := append([]string{"pipe", "--no-cache", path}, tt.args...)
		out, err := e.run(t, "", args...)
		if err != nil {
			t.Fatalf("%v: error = %v", tt.args, err)
		}
		if out != tt.want {
			t.Errorf("%v: argv = %q, want %q", tt.args, out, tt.want)
		}
	}
}

func TestPipeCommandErrors(t *testing.T) {
	e := newTestEnv(t, "cat")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown engine", []string{"pipe", "-K", "spam"}, errors.ErrCodeUnknownValue},
		{"formatter without renderer", []string{"pipe", "--formatter", "gd"}, errors.ErrCodeRequiredArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.run(t, graph, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := e.run(t, graph, "pipe", "-T", "svg,png"); err == nil {
		t.Error("expected error for several formats")
	}
	if _, err := e.run(t, "", "pipe", filepath.Join(e.dir, "missing.gv")); err == nil {
		t.Error("expected error for missing input file")
	}
}

func TestPipeCommandProcessFailure(t *testing.T) {
	e := newTestEnv(t, "fail")

	_, err := e.run(t, graph, "pipe", "--no-cache")
	if !errors.Is(err, errors.ErrCodeProcess) {
		t.Fatalf("error = %v, want PROCESS_FAILED", err)
	}
	if !strings.Contains(e.log.String(), "syntax error") {
		t.Errorf("stderr not logged: %q", e.log.String())
	}
}

func TestPipeCommandQuiet(t *testing.T) {
	e := newTestEnv(t, "fail")

	if _, err := e.run(t, graph, "pipe", "--no-cache", "--quiet"); err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(e.log.String(), "syntax error") {
		t.Errorf("quiet run forwarded stderr: %q", e.log.String())
	}
}

func TestPipeCommandCached(t *testing.T) {
	e := newTestEnv(t, "cat")

	first, err := e.run(t, graph, "pipe")
	if err != nil {
		t.Fatalf("first pipe error = %v", err)
	}

	// A failing binary proves the second result comes from the cache.
	t.Setenv(fakeDotEnv, "fail")
	second, err := e.run(t, graph, "pipe")
	if err != nil {
		t.Fatalf("cached pipe error = %v", err)
	}
	if first != graph || second != first {
		t.Errorf("outputs = %q, %q, want %q", first, second, graph)
	}

	if _, err := e.run(t, graph, "pipe", "--no-cache"); err == nil {
		t.Error("--no-cache should bypass the cache")
	}
	if _, err := e.run(t, "digraph { ham }\n", "pipe"); err == nil {
		t.Error("different input should miss the cache")
	}
}

func TestPipeCommandOutputFile(t *testing.T) {
	e := newTestEnv(t, "cat")
	out := filepath.Join(e.dir, "out.gv")

	stdout, err := e.run(t, graph, "pipe", "--no-cache", "-o", out)
	if err != nil {
		t.Fatalf("pipe error = %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != graph {
		t.Errorf("file = %q, want %q", data, graph)
	}
}

func TestPipeCommandBinaryToBuffer(t *testing.T) {
	e := newTestEnv(t, "binary")

	// A buffer is not a terminal, so binary output is written as is.
	out, err := e.run(t, graph, "pipe", "--no-cache", "-T", "png")
	if err != nil {
		t.Fatalf("pipe error = %v", err)
	}
	if out != "\x89PNG\xff\xfe" {
		t.Errorf("output = %q", out)
	}
}

func TestPipeCommandStream(t *testing.T) {
	e := newTestEnv(t, "cat")
	input := "digraph {\n  spam -> eggs\n  eggs -> ham\n}\n"

	out, err := e.run(t, input, "pipe", "--stream")
	if err != nil {
		t.Fatalf("pipe --stream error = %v", err)
	}
	if out != input {
		t.Errorf("output = %q, want %q", out, input)
	}

	if _, err := e.run(t, input, "pipe", "--stream", "-e", "klingon"); !errors.Is(err, errors.ErrCodeUnknownValue) {
		t.Errorf("bad encoding error = %v, want UNKNOWN_VALUE", err)
	}
}

func TestUnflattenCommand(t *testing.T) {
	e := newTestEnv(t, "args+stdin")

	out, err := e.run(t, graph, "unflatten", "-l", "2", "-f", "-c", "3")
	if err != nil {
		t.Fatalf("unflatten error = %v", err)
	}
	if want := "-l 2 -f -c 3\n" + graph; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestUnflattenCommandFile(t *testing.T) {
	e := newTestEnv(t, "args+stdin")
	in := e.writeFile(t, "wide.gv", graph)
	dst := filepath.Join(e.dir, "sub", "tall.gv")

	if _, err := e.run(t, "", "unflatten", "-c", "4", "-o", dst, in); err != nil {
		t.Fatalf("unflatten error = %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if want := "-c 4\n" + graph; string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestUnflattenCommandFanoutWithoutStagger(t *testing.T) {
	e := newTestEnv(t, "fail")

	_, err := e.run(t, graph, "unflatten", "-f")
	if !errors.Is(err, errors.ErrCodeRequiredArgument) {
		t.Errorf("error = %v, want REQUIRED_ARGUMENT", err)
	}
}

func TestVersionCommand(t *testing.T) {
	e := newTestEnv(t, "banner")
	t.Setenv(fakeBannerEnv, "dot - graphviz version 2.44.1 (20200629.0846)\n")

	out, err := e.run(t, "", "version", "--short")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if out != "2.44.1\n" {
		t.Errorf("output = %q, want 2.44.1", out)
	}

	t.Setenv(fakeBannerEnv, "nonversioninfo")
	if _, err := e.run(t, "", "version", "--short"); !errors.Is(err, errors.ErrCodeVersionParse) {
		t.Errorf("error = %v, want VERSION_PARSE", err)
	}
}

func TestFormatsCommand(t *testing.T) {
	e := newTestEnv(t, "cat")

	out, err := e.run(t, "", "formats", "--plain")
	if err != nil {
		t.Fatalf("formats error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4: %q", len(lines), out)
	}
	for i, prefix := range []string{"engines: ", "formats: ", "renderers: ", "formatters: "} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], prefix)
		}
	}
	if !strings.Contains(lines[0], " neato ") {
		t.Errorf("engines line missing neato: %q", lines[0])
	}

	table, err := e.run(t, "", "formats")
	if err != nil {
		t.Fatalf("formats error = %v", err)
	}
	if !strings.Contains(table, "Kind") || !strings.Contains(table, "cairo") {
		t.Errorf("table = %q", table)
	}
}

func TestCheckCommand(t *testing.T) {
	e := newTestEnv(t, "fail")
	good := e.writeFile(t, "good.gv", graph)
	bad := e.writeFile(t, "bad.gv", "digraph spam { eggs -> ")

	if _, err := e.run(t, "", "check", good); err != nil {
		t.Errorf("check good error = %v", err)
	}
	_, err := e.run(t, "", "check", good, bad)
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("check bad error = %v, want 1 of 2 failed", err)
	}
}

func TestRenderCommand(t *testing.T) {
	e := newTestEnv(t, "render")
	a := e.writeFile(t, "a.gv", "graph a {}\n")
	b := e.writeFile(t, "nested/b.gv", "graph b {}\n")

	if _, err := e.run(t, "", "render", "-T", "svg,png", a, b); err != nil {
		t.Fatalf("render error = %v", err)
	}

	for _, want := range []struct{ path, content string }{
		{a + ".svg", "rendered: graph a {}\n"},
		{a + ".png", "rendered: graph a {}\n"},
		{b + ".svg", "rendered: graph b {}\n"},
		{b + ".png", "rendered: graph b {}\n"},
	} {
		data, err := os.ReadFile(want.path)
		if err != nil {
			t.Errorf("missing output: %v", err)
			continue
		}
		if string(data) != want.content {
			t.Errorf("%s = %q, want %q", want.path, data, want.content)
		}
	}
	if !strings.Contains(e.log.String(), "Rendered 4 files") {
		t.Errorf("log = %q, want summary", e.log.String())
	}
}

func TestRenderCommandErrors(t *testing.T) {
	e := newTestEnv(t, "render")
	a := e.writeFile(t, "a.gv", "graph a {}\n")

	if _, err := e.run(t, "", "render", "-T", "spam", a); !errors.Is(err, errors.ErrCodeUnknownValue) {
		t.Errorf("unknown format error = %v", err)
	}
	if _, err := e.run(t, "", "render", filepath.Join(e.dir, "missing.gv")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := e.run(t, "", "render"); err == nil {
		t.Error("expected error without files")
	}
}

func TestCacheCommands(t *testing.T) {
	e := newTestEnv(t, "cat")

	out, err := e.run(t, "", "cache", "path")
	if err != nil {
		t.Fatalf("cache path error = %v", err)
	}
	if strings.TrimSpace(out) != e.cacheDir {
		t.Errorf("cache path = %q, want %q", out, e.cacheDir)
	}

	if _, err := e.run(t, graph, "pipe"); err != nil {
		t.Fatalf("pipe error = %v", err)
	}
	entries, _ := filepath.Glob(filepath.Join(e.cacheDir, "*", "*.json"))
	if len(entries) != 1 {
		t.Fatalf("got %d cache entries, want 1", len(entries))
	}

	if _, err := e.run(t, "", "cache", "clear"); err != nil {
		t.Fatalf("cache clear error = %v", err)
	}
	entries, _ = filepath.Glob(filepath.Join(e.cacheDir, "*", "*.json"))
	if len(entries) != 0 {
		t.Errorf("got %d cache entries after clear, want 0", len(entries))
	}
}

func TestCompletionCommand(t *testing.T) {
	e := newTestEnv(t, "cat")

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := e.run(t, "", "completion", shell)
		if err != nil {
			t.Fatalf("completion %s error = %v", shell, err)
		}
		if !strings.Contains(out, "dotpipe") {
			t.Errorf("completion %s does not mention dotpipe", shell)
		}
	}
	if _, err := e.run(t, "", "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestBadConfig(t *testing.T) {
	e := newTestEnv(t, "cat")
	e.cli.configPath = e.writeFile(t, "bad.toml", "engine = \"spam\"\n")

	if _, err := e.run(t, graph, "pipe"); !errors.Is(err, errors.ErrCodeUnknownValue) {
		t.Errorf("error = %v, want UNKNOWN_VALUE", err)
	}
}

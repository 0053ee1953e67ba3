package backend

import (
	stderrors "errors"
	"io"
	"strings"
	"testing"
)

func TestReaderLines(t *testing.T) {
	var got []string
	for line, err := range ReaderLines(strings.NewReader("graph {\n  spam\n}")) {
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		got = append(got, line)
	}

	want := []string{"graph {\n", "  spam\n", "}"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestLinesInputStreams(t *testing.T) {
	src, err := LinesInput{Lines: StringLines("graph {\n", "}\n"), Encoding: "ascii"}.open()
	if err != nil {
		t.Fatal(err)
	}
	defer src.close()

	data, err := io.ReadAll(src.r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "graph {\n}\n" {
		t.Errorf("data = %q", data)
	}
	if err := src.err(); err != nil {
		t.Errorf("err() = %v", err)
	}
}

func TestLinesInputIteratorError(t *testing.T) {
	boom := stderrors.New("boom")
	lines := func(yield func(string, error) bool) {
		if !yield("graph {\n", nil) {
			return
		}
		yield("", boom)
	}

	src, err := LinesInput{Lines: lines, Encoding: "utf-8"}.open()
	if err != nil {
		t.Fatal(err)
	}
	defer src.close()

	_, err = io.ReadAll(src.r)
	if !stderrors.Is(err, boom) {
		t.Fatalf("ReadAll() error = %v, want boom", err)
	}
	if err := src.err(); !stderrors.Is(err, boom) {
		t.Errorf("err() = %v, want wrapping boom", err)
	}
}

func TestLinesInputStopReleasesIterator(t *testing.T) {
	released := false
	lines := func(yield func(string, error) bool) {
		defer func() { released = true }()
		for {
			if !yield("a -- b\n", nil) {
				return
			}
		}
	}

	src, err := LinesInput{Lines: lines, Encoding: "utf-8"}.open()
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 3)
	if _, err := src.r.Read(buf); err != nil {
		t.Fatal(err)
	}
	src.close()

	if !released {
		t.Error("close() should stop the line iterator")
	}
}

func TestTextInputBadEncoding(t *testing.T) {
	if _, err := (TextInput{Text: "graph {}", Encoding: "klingon"}).open(); err == nil {
		t.Error("open() should fail for an unknown encoding")
	}
}

package backend

import (
	"testing"

	"github.com/matzehuels/dotpipe/pkg/errors"
)

func TestDefaultsSetEngine(t *testing.T) {
	d := NewDefaults()

	prev, err := d.SetEngine("neato")
	if err != nil {
		t.Fatalf("SetEngine() error = %v", err)
	}
	if prev != "dot" {
		t.Errorf("SetEngine() prev = %q, want %q", prev, "dot")
	}
	if d.Engine() != "neato" {
		t.Errorf("Engine() = %q, want %q", d.Engine(), "neato")
	}

	// Restore with the returned value
	if _, err := d.SetEngine(prev); err != nil {
		t.Fatal(err)
	}
	if d.Engine() != "dot" {
		t.Errorf("Engine() after restore = %q", d.Engine())
	}
}

func TestDefaultsSetFormat(t *testing.T) {
	d := NewDefaults()

	prev, err := d.SetFormat("PNG")
	if err != nil {
		t.Fatalf("SetFormat() error = %v", err)
	}
	if prev != "pdf" {
		t.Errorf("SetFormat() prev = %q, want %q", prev, "pdf")
	}
	if d.Format() != "png" {
		t.Errorf("Format() = %q, want %q", d.Format(), "png")
	}
}

func TestDefaultsRejectUnknown(t *testing.T) {
	d := NewDefaults()

	if _, err := d.SetEngine("spam"); !errors.Is(err, errors.ErrCodeUnknownValue) {
		t.Errorf("SetEngine(spam) error = %v, want UNKNOWN_VALUE", err)
	}
	if _, err := d.SetFormat("spam"); !errors.Is(err, errors.ErrCodeUnknownValue) {
		t.Errorf("SetFormat(spam) error = %v, want UNKNOWN_VALUE", err)
	}

	// Failed sets leave the holder unchanged
	if d.Engine() != DefaultEngine || d.Format() != DefaultFormat {
		t.Errorf("defaults changed after failed set: %q %q", d.Engine(), d.Format())
	}
}

func TestDefaultsApply(t *testing.T) {
	d := NewDefaults()
	if _, err := d.SetFormat("svg"); err != nil {
		t.Fatal(err)
	}

	got := d.Apply(Request{Renderer: "cairo"})
	want := Request{Engine: "dot", Format: "svg", Renderer: "cairo"}
	if got != want {
		t.Errorf("Apply() = %+v, want %+v", got, want)
	}

	// Explicit fields win
	got = d.Apply(Request{Engine: "circo", Format: "png"})
	if got.Engine != "circo" || got.Format != "png" {
		t.Errorf("Apply() overrode explicit fields: %+v", got)
	}
}

func TestNilDefaults(t *testing.T) {
	var d *Defaults
	if d.Engine() != DefaultEngine || d.Format() != DefaultFormat {
		t.Errorf("nil Defaults = %q %q", d.Engine(), d.Format())
	}
	if got := d.Apply(Request{}); got.Engine != "dot" || got.Format != "pdf" {
		t.Errorf("nil Apply() = %+v", got)
	}
}

package backend

import "sync"

// Fallback engine and format when nothing else is configured.
const (
	DefaultEngine = "dot"
	DefaultFormat = "pdf"
)

// Defaults holds the engine and format used when a caller leaves them
// unset. Create one at program start and pass it to whatever needs it;
// a nil *Defaults reads as DefaultEngine and DefaultFormat.
type Defaults struct {
	mu     sync.Mutex
	engine string
	format string
}

// NewDefaults returns a holder set to DefaultEngine and DefaultFormat.
func NewDefaults() *Defaults {
	return &Defaults{engine: DefaultEngine, format: DefaultFormat}
}

// Engine returns the current default engine.
func (d *Defaults) Engine() string {
	if d == nil {
		return DefaultEngine
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine
}

// Format returns the current default format.
func (d *Defaults) Format() string {
	if d == nil {
		return DefaultFormat
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.format
}

// SetEngine replaces the default engine and returns the previous one, so
// callers can restore it:
//
//	prev, err := defaults.SetEngine("neato")
//	defer defaults.SetEngine(prev)
func (d *Defaults) SetEngine(engine string) (string, error) {
	engine, err := CheckEngine(engine)
	if err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.engine
	d.engine = engine
	return prev, nil
}

// SetFormat replaces the default format and returns the previous one.
func (d *Defaults) SetFormat(format string) (string, error) {
	format, err := CheckFormat(format)
	if err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.format
	d.format = format
	return prev, nil
}

// Apply fills an empty engine or format in req from the defaults.
func (d *Defaults) Apply(req Request) Request {
	if req.Engine == "" {
		req.Engine = d.Engine()
	}
	if req.Format == "" {
		req.Format = d.Format()
	}
	return req
}

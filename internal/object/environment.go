package object

import (
	"log/slog"
)

// Environment holds global bindings and a flat stack of call frames.
// Frames do not nest lexically: a function body sees its own frame, any
// frames below it, and the globals.
type Environment struct {
	globals map[string]Object
	frames  []map[string]Object
}

func NewEnvironment() *Environment {
	return &Environment{globals: make(map[string]Object)}
}

// Get walks the frames innermost first, then the globals.
func (e *Environment) Get(name string) (Object, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if v, ok := e.frames[i][name]; ok {
			return v, true
		}
	}
	v, ok := e.globals[name]
	return v, ok
}

// Set binds name in the innermost frame, or globally when no call is active.
func (e *Environment) Set(name string, value Object) {
	if n := len(e.frames); n > 0 {
		e.frames[n-1][name] = value
		return
	}
	e.globals[name] = value
}

// Update rebinds name in the scope where it currently lives. Unknown names
// are bound as Set would bind them.
func (e *Environment) Update(name string, value Object) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if _, ok := e.frames[i][name]; ok {
			e.frames[i][name] = value
			return
		}
	}
	if _, ok := e.globals[name]; ok {
		e.globals[name] = value
		return
	}
	e.Set(name, value)
}

// Unset removes name from the innermost scope that would receive a Set.
func (e *Environment) Unset(name string) {
	if n := len(e.frames); n > 0 {
		delete(e.frames[n-1], name)
		return
	}
	delete(e.globals, name)
}

// Local reads name from the scope a Set would write to.
func (e *Environment) Local(name string) (Object, bool) {
	if n := len(e.frames); n > 0 {
		v, ok := e.frames[n-1][name]
		return v, ok
	}
	v, ok := e.globals[name]
	return v, ok
}

func (e *Environment) PushFrame(bindings map[string]Object) {
	if bindings == nil {
		bindings = make(map[string]Object)
	}
	e.frames = append(e.frames, bindings)
	slog.Debug("push frame", slog.Int("stack-size", len(e.frames)))
}

func (e *Environment) PopFrame() {
	if len(e.frames) == 0 {
		return
	}
	e.frames[len(e.frames)-1] = nil
	e.frames = e.frames[:len(e.frames)-1]
	slog.Debug("pop frame", slog.Int("stack-size", len(e.frames)))
}

func (e *Environment) Depth() int {
	return len(e.frames)
}

// Globals returns the global binding names.
func (e *Environment) Globals() []string {
	names := make([]string, 0, len(e.globals))
	for k := range e.globals {
		names = append(names, k)
	}
	return names
}

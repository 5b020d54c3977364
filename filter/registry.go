// Package filter implements the clip filters the pipeline invokes by name:
// trimming, flipping, field handling and pixel and sample format
// conversions.
package filter

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mengelbart/pipemod"
)

var ErrUnknownFilter = errors.New("unknown filter")

// Func builds a filtered clip from c.
type Func func(c pipemod.Clip, args pipemod.Args) (pipemod.Clip, error)

type entry struct {
	name string
	fn   Func
}

// Registry maps case-insensitive filter names to implementations. It
// implements pipemod.FilterInvoker.
type Registry struct {
	mu      sync.Mutex
	filters map[string]entry
}

// NewRegistry returns a registry holding all built-in filters.
func NewRegistry() *Registry {
	r := &Registry{filters: map[string]entry{}}
	r.Register("Trim", Trim)
	r.Register("FlipVertical", FlipVertical)
	r.Register("AssumeFrameBased", AssumeFrameBased)
	r.Register("Weave", Weave)
	r.Register("ConvertToYV16", ConvertToYV16)
	r.Register("ConvertToYV24", ConvertToYV24)
	r.Register("ConvertTo16bit", ConvertTo16bit)
	r.Register("ConvertAudioTo8bit", audioConverter(pipemod.SampleTypeU8))
	r.Register("ConvertAudioTo16bit", audioConverter(pipemod.SampleTypeS16))
	r.Register("ConvertAudioTo24bit", audioConverter(pipemod.SampleTypeS24))
	r.Register("ConvertAudioTo32bit", audioConverter(pipemod.SampleTypeS32))
	r.Register("ConvertAudioToFloat", audioConverter(pipemod.SampleTypeFloat))
	return r
}

// Register adds or replaces the filter name.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[strings.ToLower(name)] = entry{name: name, fn: fn}
}

func (r *Registry) Invoke(name string, c pipemod.Clip, args pipemod.Args) (pipemod.Clip, error) {
	r.mu.Lock()
	e, ok := r.filters[strings.ToLower(name)]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFilter, name)
	}
	out, err := e.fn(c, args)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", e.name, err)
	}
	return out, nil
}

// Names returns the registered filter names in alphabetical order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.filters))
	for _, e := range r.filters {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

func intArg(args pipemod.Args, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	default:
		return 0, fmt.Errorf("argument %v: expected integer, got %T", key, v)
	}
}

func stringArg(args pipemod.Args, key string, def string) (string, error) {
	v, ok := args[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %v: expected string, got %T", key, v)
	}
	return s, nil
}

func boolArg(args pipemod.Args, key string, def bool) (bool, error) {
	v, ok := args[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("argument %v: expected bool, got %T", key, v)
	}
	return b, nil
}

// child forwards everything to the wrapped clip. Filters embed it and
// override what they change.
type child struct {
	pipemod.Clip
}

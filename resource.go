package hxview

import (
	"maps"

	"github.com/pthm/hxview/lib/locator"
)

// Kind classifies a resource: view, layout, CSS or JavaScript.
type Kind = locator.Kind

// Resource kinds.
const (
	KindView   = locator.KindView
	KindLayout = locator.KindLayout
	KindCSS    = locator.KindCSS
	KindJS     = locator.KindJS
)

// Locator maps logical resource names to concrete paths.
//
// Find searches for name with each extension in turn and returns the first
// match, or false when nothing exists. With relative set, it returns a
// logical name suitable for reuse as an asset reference instead of a path.
// LastSearchedPaths lists what the most recent Find probed.
//
// *locator.Locator is the standard implementation.
type Locator interface {
	Find(name string, kind Kind, exts []string, relative bool) (string, bool)
	LastSearchedPaths() []string
}

var _ Locator = (*locator.Locator)(nil)

// Extensions probed for stylesheet and script sources.
var (
	cssExts = []string{"css", "scss"}
	jsExts  = []string{"js"}
)

// Args are the named values a template is executed with.
type Args map[string]any

// Merge returns a new Args holding a's entries overlaid with each of
// others in turn. Neither a nor others are modified.
func (a Args) Merge(others ...Args) Args {
	size := len(a)
	for _, o := range others {
		size += len(o)
	}
	out := make(Args, size)
	maps.Copy(out, a)
	for _, o := range others {
		maps.Copy(out, o)
	}
	return out
}

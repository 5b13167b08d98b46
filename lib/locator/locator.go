// Package locator resolves logical resource names (views, layouts, CSS and
// JavaScript sources) to files by searching an ordered list of roots.
//
// Every root is an fs.FS laid out the same way:
//
//	views/        view templates
//	layouts/      layout templates
//	assets/css/   stylesheet sources
//	assets/js/    script sources
//
// A logical name may carry a namespace: "blog:post" only searches the root
// named "blog", "::http-status/404" only searches the built-in root, and a
// bare name searches every root in the order they were configured.
package locator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
)

// Kind classifies a resource. It selects the subdirectory searched in each
// root.
type Kind int

const (
	KindView Kind = iota
	KindLayout
	KindCSS
	KindJS
)

func (k Kind) String() string {
	switch k {
	case KindView:
		return "view"
	case KindLayout:
		return "layout"
	case KindCSS:
		return "css"
	case KindJS:
		return "js"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Dir returns the root-relative directory holding resources of this kind.
func (k Kind) Dir() string {
	switch k {
	case KindView:
		return "views"
	case KindLayout:
		return "layouts"
	case KindCSS:
		return "assets/css"
	case KindJS:
		return "assets/js"
	}
	return ""
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "view":
		return KindView, nil
	case "layout":
		return KindLayout, nil
	case "css":
		return KindCSS, nil
	case "js":
		return KindJS, nil
	}
	return 0, fmt.Errorf("unknown resource kind %q", s)
}

// BuiltinPrefix is the path segment under which the built-in root's files
// are exposed through Locator.Open.
const BuiltinPrefix = "_builtin"

var (
	ErrNoRoots       = errors.New("locator: at least one root is required")
	ErrDuplicateRoot = errors.New("locator: duplicate root name")
)

// Root is one search location.
type Root struct {
	// Name is the namespace of the root. The empty name marks the built-in
	// root, addressed with the "::" prefix.
	Name string

	// FS holds the root's files.
	FS fs.FS

	// Dir is the directory on disk backing FS, if any. It is only used to
	// map file system events back to resource paths.
	Dir string
}

// DirRoot returns a Root backed by the directory dir on disk.
func DirRoot(name, dir string) Root {
	return Root{Name: name, FS: os.DirFS(dir), Dir: dir}
}

func (r Root) prefix() string {
	if r.Name == "" {
		return BuiltinPrefix
	}
	return r.Name
}

// Locator searches roots in order. It implements fs.FS over the paths it
// returns from Find, so those paths can be read back directly.
//
// A Locator is safe for concurrent use, but LastSearchedPaths only reflects
// the most recent Find on the whole Locator.
type Locator struct {
	roots  []Root
	byName map[string]int

	mu   sync.Mutex
	last []string
}

// New creates a Locator over roots, searched in the given order.
func New(roots ...Root) (*Locator, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}
	l := &Locator{
		roots:  roots,
		byName: make(map[string]int, len(roots)),
	}
	for i, r := range roots {
		if r.FS == nil {
			return nil, fmt.Errorf("locator: root %q has no file system", r.Name)
		}
		if _, dup := l.byName[r.prefix()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRoot, r.Name)
		}
		l.byName[r.prefix()] = i
	}
	return l, nil
}

// Roots returns the configured roots in search order.
func (l *Locator) Roots() []Root {
	return append([]Root(nil), l.roots...)
}

// Find looks for name with each of exts in every candidate root, in order,
// and returns the first match. The result is a path readable through Open,
// or the qualified logical name ("root:name") when relative is true.
//
// A missing resource is not an error: Find returns false and the probed
// paths become available from LastSearchedPaths.
func (l *Locator) Find(name string, kind Kind, exts []string, relative bool) (string, bool) {
	found, searched := l.find(name, kind, exts, relative)

	l.mu.Lock()
	l.last = searched
	l.mu.Unlock()

	return found, found != ""
}

// LastSearchedPaths returns the paths probed by the most recent Find.
func (l *Locator) LastSearchedPaths() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.last...)
}

func (l *Locator) find(name string, kind Kind, exts []string, relative bool) (string, []string) {
	candidates, ns, base := l.candidates(name)

	var searched []string
	if len(candidates) == 0 {
		// Unknown root: report where the resource would have been.
		for _, ext := range exts {
			file := base + "." + strings.TrimPrefix(ext, ".")
			if fs.ValidPath(file) {
				searched = append(searched, ns+"/"+path.Join(kind.Dir(), file))
			}
		}
		return "", searched
	}
	for _, r := range candidates {
		for _, ext := range exts {
			file := base + "." + strings.TrimPrefix(ext, ".")
			if !fs.ValidPath(file) {
				continue
			}
			rel := path.Join(kind.Dir(), file)
			full := r.prefix() + "/" + rel
			searched = append(searched, full)

			info, err := fs.Stat(r.FS, rel)
			if err != nil || info.IsDir() {
				continue
			}
			if relative {
				return qualify(r, base), searched
			}
			return full, searched
		}
	}
	return "", searched
}

// candidates splits the namespace off name and returns the roots it
// selects, the namespace prefix and the bare name.
func (l *Locator) candidates(name string) ([]Root, string, string) {
	name = strings.TrimSpace(name)
	if rest, ok := strings.CutPrefix(name, "::"); ok {
		return l.named(BuiltinPrefix), BuiltinPrefix, strings.TrimPrefix(rest, "/")
	}
	if ns, rest, ok := strings.Cut(name, ":"); ok {
		return l.named(ns), ns, strings.TrimPrefix(rest, "/")
	}
	return l.roots, "", strings.TrimPrefix(name, "/")
}

func (l *Locator) named(prefix string) []Root {
	i, ok := l.byName[prefix]
	if !ok {
		return nil
	}
	return l.roots[i : i+1]
}

func qualify(r Root, base string) string {
	if r.Name == "" {
		return "::" + base
	}
	return r.Name + ":" + base
}

// Open implements fs.FS. The first path element selects the root.
func (l *Locator) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	prefix, rel, ok := strings.Cut(name, "/")
	i, known := l.byName[prefix]
	if !ok || !known {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return l.roots[i].FS.Open(rel)
}

// PathFor maps a file on disk to the path Find would return for it. It only
// knows about roots configured with a Dir.
func (l *Locator) PathFor(file string) (string, bool) {
	file = path.Clean(strings.ReplaceAll(file, "\\", "/"))
	for _, r := range l.roots {
		if r.Dir == "" {
			continue
		}
		dir := path.Clean(strings.ReplaceAll(r.Dir, "\\", "/"))
		if rel, ok := strings.CutPrefix(file, dir+"/"); ok {
			return r.prefix() + "/" + rel, true
		}
	}
	return "", false
}

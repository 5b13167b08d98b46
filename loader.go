package hxview

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.opentelemetry.io/otel/attribute"
)

// FileLoader runs units stored as files, chosen by extension:
//
//	.html .gohtml .tmpl   html/template, executed with the Args as "."
//	.md                   Markdown, converted to HTML once
//
// Parsed files are cached until Invalidate or Reset. A FileLoader is safe
// for concurrent use.
type FileLoader struct {
	fsys fs.FS
	md   goldmark.Markdown

	mu    sync.RWMutex
	cache map[string]Unit
}

// NewFileLoader creates a loader reading from fsys, usually the Locator.
func NewFileLoader(fsys fs.FS) *FileLoader {
	return &FileLoader{
		fsys:  fsys,
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		cache: map[string]Unit{},
	}
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context, name string) (Unit, error) {
	l.mu.RLock()
	u, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return u, nil
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if !templateExt(ext) && ext != "md" {
		return nil, ErrUnitNotFound
	}

	_, span := startSpan(ctx, "hxview.FileLoader.Load", attribute.String("hxview.path", name))
	u, err := l.parse(name, ext)
	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[name] = u
	l.mu.Unlock()

	logger(ctx).Debug("parsed unit", "path", name)
	return u, nil
}

func (l *FileLoader) parse(name, ext string) (Unit, error) {
	src, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("hxview: reading %q: %w", name, err)
	}

	if ext == "md" {
		var buf bytes.Buffer
		if err := l.md.Convert(src, &buf); err != nil {
			return nil, fmt.Errorf("hxview: converting %q: %w", name, err)
		}
		return markdownUnit(buf.String()), nil
	}

	tpl, err := template.New(name).Funcs(placeholderFuncs).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("hxview: parsing %q: %w", name, err)
	}
	return &templateUnit{tpl: tpl}, nil
}

// Invalidate drops the cached unit for name.
func (l *FileLoader) Invalidate(name string) {
	l.mu.Lock()
	delete(l.cache, name)
	l.mu.Unlock()
}

// Reset drops every cached unit.
func (l *FileLoader) Reset() {
	l.mu.Lock()
	l.cache = map[string]Unit{}
	l.mu.Unlock()
}

func templateExt(ext string) bool {
	switch ext {
	case "html", "gohtml", "tmpl":
		return true
	}
	return false
}

// templateUnit executes a parsed html/template. The parsed template is
// never executed itself, only clones bound to a page, so it stays
// cloneable.
type templateUnit struct {
	tpl *template.Template
}

func (u *templateUnit) Execute(ctx context.Context, w io.Writer, p *Page, args Args) error {
	tpl, err := u.tpl.Clone()
	if err != nil {
		return err
	}
	return tpl.Funcs(p.funcMap(ctx)).Execute(w, args)
}

type markdownUnit string

func (u markdownUnit) Execute(_ context.Context, w io.Writer, _ *Page, _ Args) error {
	_, err := io.WriteString(w, string(u))
	return err
}

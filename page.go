package hxview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"
	"go.opentelemetry.io/otel/attribute"

	"github.com/pthm/hxview/lib/tag"
)

// Attr is one HTML attribute of a link, meta or script tag.
type Attr = tag.Attr

// A builds an Attr.
func A(key, value string) Attr {
	return tag.A(key, value)
}

// ErrRenderInProgress is returned when a unit asks its own page to render.
var ErrRenderInProgress = errors.New("hxview: page is already rendering")

type pageConfig struct {
	viewPath   string
	layoutPath string
	args       Args
	module     string
	webRoot    string
	exts       []string
	locator    Locator
	loader     Loader
	messages   *Messages
}

// Page renders one view, optionally inside a layout, and collects the
// metadata the view and layout declare along the way: stylesheet and script
// sources, <link>, <meta> and <script> tags.
//
// A Page is created by View.Render and lives for a single render. Its
// output is computed at most once; calling Render again returns the same
// result. A Page is not safe for concurrent use.
type Page struct {
	cfg pageConfig

	css []string
	js  []string

	links   [][]Attr
	metas   [][]Attr
	scripts [][]Attr

	rendering bool
	rendered  bool
	content   string
	html      string
	err       error
}

func newPage(cfg pageConfig) *Page {
	if cfg.args == nil {
		cfg.args = Args{}
	}
	return &Page{cfg: cfg}
}

// Render executes the view and, when set, the layout around it.
func (p *Page) Render(ctx context.Context) (string, error) {
	if p.rendered {
		return p.html, p.err
	}
	if p.rendering {
		return "", ErrRenderInProgress
	}
	p.rendering = true
	defer func() { p.rendering = false }()

	ctx, span := startSpan(ctx, "hxview.Page.Render",
		attribute.String("hxview.view", p.cfg.viewPath),
		attribute.String("hxview.layout", p.cfg.layoutPath),
	)
	p.html, p.err = p.render(ctx)
	p.rendered = true
	endSpan(span, p.err)

	return p.html, p.err
}

func (p *Page) render(ctx context.Context) (string, error) {
	content, err := p.execute(ctx, p.cfg.viewPath, p.cfg.args)
	if err != nil {
		return "", err
	}
	p.content = content

	if p.cfg.layoutPath == "" {
		return content, nil
	}
	return p.execute(ctx, p.cfg.layoutPath, p.cfg.args)
}

func (p *Page) execute(ctx context.Context, path string, args Args) (string, error) {
	var buf bytes.Buffer
	if err := p.run(ctx, &buf, path, args); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (p *Page) run(ctx context.Context, w io.Writer, path string, args Args) error {
	u, err := p.cfg.loader.Load(ctx, path)
	if errors.Is(err, ErrUnitNotFound) {
		return fmt.Errorf("hxview: loading %q: %w", path, err)
	}
	if err != nil {
		return err
	}
	if err := u.Execute(ctx, w, p, args); err != nil {
		return fmt.Errorf("hxview: executing %q: %w", path, err)
	}
	return nil
}

// InsertContent returns the rendered view. Layouts call it where the page
// body goes; before the view has run it returns "".
func (p *Page) InsertContent() string {
	return p.content
}

// WebRoot returns the configured URL prefix of the application.
func (p *Page) WebRoot() string {
	return p.cfg.webRoot
}

// Messages returns the flash queue, or nil when the page has no session.
func (p *Page) Messages() *Messages {
	return p.cfg.messages
}

// Include runs the view source name at this point of the output, with the
// page arguments overlaid by args. The page arguments are not changed.
func (p *Page) Include(ctx context.Context, w io.Writer, name string, args Args) error {
	return p.include(ctx, w, KindView, name, args)
}

// IncludeLayout is Include for layout sources.
func (p *Page) IncludeLayout(ctx context.Context, w io.Writer, name string, args Args) error {
	return p.include(ctx, w, KindLayout, name, args)
}

func (p *Page) include(ctx context.Context, w io.Writer, kind Kind, name string, args Args) (err error) {
	ctx, span := startSpan(ctx, "hxview.Page.Include",
		attribute.String("hxview.kind", kind.String()),
		attribute.String("hxview.name", name),
	)
	defer func() { endSpan(span, err) }()

	path, ok := p.cfg.locator.Find(name, kind, p.cfg.exts, false)
	if !ok {
		return newNotFoundError(kind, name, p.cfg.locator.LastSearchedPaths())
	}
	return p.run(ctx, w, path, p.cfg.args.Merge(args))
}

// IncludeComponent returns Include as a templ component:
//
//	@p.IncludeComponent("partials/nav", hxview.Args{"active": "home"})
func (p *Page) IncludeComponent(name string, args Args) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return p.Include(ctx, w, name, args)
	})
}

// IncludeLayoutComponent returns IncludeLayout as a templ component.
func (p *Page) IncludeLayoutComponent(name string, args Args) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return p.IncludeLayout(ctx, w, name, args)
	})
}

// AddCSS appends stylesheet sources.
func (p *Page) AddCSS(sources ...string) {
	p.css = append(p.css, sources...)
}

// PrependCSS puts stylesheet sources before the ones already added,
// keeping their own order.
func (p *Page) PrependCSS(sources ...string) {
	p.css = append(append([]string(nil), sources...), p.css...)
}

// AddJS appends script sources.
func (p *Page) AddJS(sources ...string) {
	p.js = append(p.js, sources...)
}

// PrependJS puts script sources before the ones already added.
func (p *Page) PrependJS(sources ...string) {
	p.js = append(append([]string(nil), sources...), p.js...)
}

// CSS returns the stylesheet sources in output order.
func (p *Page) CSS() []string {
	return append([]string(nil), p.css...)
}

// JS returns the script sources in output order.
func (p *Page) JS() []string {
	return append([]string(nil), p.js...)
}

// AddLink adds a <link> tag.
func (p *Page) AddLink(href, rel string, attrs ...Attr) {
	p.links = append(p.links, withAttrs([]Attr{tag.A("href", href), tag.A("rel", rel)}, attrs))
}

// AddMetaName adds a <meta name=... content=...> tag.
func (p *Page) AddMetaName(name, content string, attrs ...Attr) {
	p.metas = append(p.metas, withAttrs([]Attr{tag.A("name", name), tag.A("content", content)}, attrs))
}

// AddMetaProperty adds a <meta property=... content=...> tag, as used by
// Open Graph.
func (p *Page) AddMetaProperty(property, content string, attrs ...Attr) {
	p.metas = append(p.metas, withAttrs([]Attr{tag.A("property", property), tag.A("content", content)}, attrs))
}

// AddExternalScript adds a <script src=...> tag.
func (p *Page) AddExternalScript(src string, attrs ...Attr) {
	p.scripts = append(p.scripts, withAttrs([]Attr{tag.A("src", src)}, attrs))
}

// withAttrs appends extra to base. An extra attribute naming a key already
// present replaces its value in place.
func withAttrs(base, extra []Attr) []Attr {
	out := base
outer:
	for _, a := range extra {
		for i := range out {
			if out[i].Key == a.Key {
				out[i].Value = a.Value
				continue outer
			}
		}
		out = append(out, a)
	}
	return out
}

// bundle is the reference an external compiler resolves into one file
// built from every source of the page.
func (p *Page) bundle(kind string, sources []string) string {
	return "assets/" + kind + "/" + p.cfg.module + ":" + strings.Join(sources, ",")
}

// RenderLinkTags renders the <link> tags, one per line. When the page has
// stylesheet sources, a stylesheet link to their bundle comes last.
func (p *Page) RenderLinkTags() string {
	links := p.links
	if len(p.css) > 0 {
		links = append(links[:len(links):len(links)], []Attr{
			tag.A("href", p.bundle("css", p.css)),
			tag.A("rel", "stylesheet"),
		})
	}
	return renderTags(links, tag.Void, "link")
}

// RenderMetaTags renders the <meta> tags, one per line.
func (p *Page) RenderMetaTags() string {
	return renderTags(p.metas, tag.Void, "meta")
}

// RenderScriptTags renders the <script> tags, one per line. When the page
// has script sources, a script referencing their bundle comes last.
func (p *Page) RenderScriptTags() string {
	scripts := p.scripts
	if len(p.js) > 0 {
		scripts = append(scripts[:len(scripts):len(scripts)], []Attr{
			tag.A("src", p.bundle("js", p.js)),
		})
	}
	return renderTags(scripts, tag.Closed, "script")
}

func renderTags(tags [][]Attr, build func(string, []Attr) string, name string) string {
	lines := make([]string, 0, len(tags))
	for _, attrs := range tags {
		lines = append(lines, build(name, attrs))
	}
	return strings.Join(lines, "\n") + "\n"
}

// funcMap binds the template functions to p. It is also called on a nil
// page to get parse-time placeholders; the closures only touch p when run.
func (p *Page) funcMap(ctx context.Context) template.FuncMap {
	return template.FuncMap{
		"include": func(name string, args ...Args) (template.HTML, error) {
			var buf bytes.Buffer
			err := p.Include(ctx, &buf, name, Args{}.Merge(args...))
			return template.HTML(buf.String()), err // #nosec G203
		},
		"includeLayout": func(name string, args ...Args) (template.HTML, error) {
			var buf bytes.Buffer
			err := p.IncludeLayout(ctx, &buf, name, Args{}.Merge(args...))
			return template.HTML(buf.String()), err // #nosec G203
		},
		"insertContent": func() template.HTML {
			return template.HTML(p.InsertContent()) // #nosec G203
		},
		"renderLinkTags": func() template.HTML {
			return template.HTML(p.RenderLinkTags()) // #nosec G203
		},
		"renderMetaTags": func() template.HTML {
			return template.HTML(p.RenderMetaTags()) // #nosec G203
		},
		"renderScriptTags": func() template.HTML {
			return template.HTML(p.RenderScriptTags()) // #nosec G203
		},
		"webRoot": func() string {
			return p.WebRoot()
		},
		"addCss": func(sources ...string) string {
			p.AddCSS(sources...)
			return ""
		},
		"prependCss": func(sources ...string) string {
			p.PrependCSS(sources...)
			return ""
		},
		"addJs": func(sources ...string) string {
			p.AddJS(sources...)
			return ""
		},
		"prependJs": func(sources ...string) string {
			p.PrependJS(sources...)
			return ""
		},
		"addLink": func(href, rel string, attrs ...Attr) string {
			p.AddLink(href, rel, attrs...)
			return ""
		},
		"addMetaName": func(name, content string, attrs ...Attr) string {
			p.AddMetaName(name, content, attrs...)
			return ""
		},
		"addMetaProperty": func(property, content string, attrs ...Attr) string {
			p.AddMetaProperty(property, content, attrs...)
			return ""
		},
		"addExternalScript": func(src string, attrs ...Attr) string {
			p.AddExternalScript(src, attrs...)
			return ""
		},
		"flashes": func() ([]Flash, error) {
			if p.Messages() == nil {
				return nil, nil
			}
			return p.Messages().RetrieveAll(ctx)
		},
		"renderFlashes": func() (template.HTML, error) {
			if p.Messages() == nil {
				return "", nil
			}
			flashes, err := p.Messages().RetrieveAll(ctx)
			return template.HTML(RenderFlashes(flashes)), err // #nosec G203
		},
		"attr": tag.A,
		"args": makeArgs,
	}
}

var placeholderFuncs = (*Page)(nil).funcMap(context.Background())

// makeArgs builds Args from alternating keys and values:
//
//	{{ include "partials/item" (args "item" . "compact" true) }}
func makeArgs(kv ...any) (Args, error) {
	if len(kv)%2 != 0 {
		return nil, errors.New("args: odd number of arguments")
	}
	out := make(Args, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("args: key %v is %T, not string", kv[i], kv[i])
		}
		out[k] = kv[i+1]
	}
	return out, nil
}

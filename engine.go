package hxview

import (
	"io/fs"
	"net/http"

	"github.com/pthm/hxview/lib/session"
)

// DefaultExtensions are the view and layout extensions probed, in order.
var DefaultExtensions = []string{"html", "gohtml", "tmpl", "templ", "md"}

// Engine holds what every render of an application shares: where sources
// are found, how they are loaded, and the settings threaded into each page.
// An Engine is safe for concurrent use; the Views it creates are not.
type Engine struct {
	locator     Locator
	loader      Loader
	module      string
	webRoot     string
	debug       bool
	exts        []string
	errorLayout string
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	module      string
	webRoot     string
	debug       bool
	exts        []string
	loader      Loader
	registries  []*Registry
	errorLayout string
}

// WithModule sets the module name used in asset bundle references.
func WithModule(name string) Option {
	return func(o *engineOptions) { o.module = name }
}

// WithWebRoot sets the URL prefix returned by Page.WebRoot.
func WithWebRoot(root string) Option {
	return func(o *engineOptions) { o.webRoot = root }
}

// WithDebug selects the debug variants of HTTP status views.
func WithDebug(debug bool) Option {
	return func(o *engineOptions) { o.debug = debug }
}

// WithExtensions replaces DefaultExtensions.
func WithExtensions(exts ...string) Option {
	return func(o *engineOptions) { o.exts = exts }
}

// WithLoader replaces the file loader. Registries added with WithRegistry
// are still consulted first.
func WithLoader(l Loader) Option {
	return func(o *engineOptions) { o.loader = l }
}

// WithRegistry adds compiled templ units. Registries are consulted before
// the file loader, in the order added.
func WithRegistry(reg *Registry) Option {
	return func(o *engineOptions) { o.registries = append(o.registries, reg) }
}

// WithErrorLayout sets the layout HandlerFunc wraps error pages in.
func WithErrorLayout(name string) Option {
	return func(o *engineOptions) { o.errorLayout = name }
}

// NewEngine creates an engine resolving sources through loc.
//
// Unless WithLoader is given, units are read through a FileLoader over loc,
// which must then implement fs.FS (*locator.Locator does).
func NewEngine(loc Locator, opts ...Option) *Engine {
	o := engineOptions{exts: DefaultExtensions}
	for _, opt := range opts {
		opt(&o)
	}

	base := o.loader
	if base == nil {
		if fsys, ok := loc.(fs.FS); ok {
			base = NewFileLoader(fsys)
		}
	}
	var chain Loaders
	for _, reg := range o.registries {
		chain = append(chain, reg)
	}
	if base != nil {
		chain = append(chain, base)
	}

	return &Engine{
		locator:     loc,
		loader:      chain,
		module:      o.module,
		webRoot:     o.webRoot,
		debug:       o.debug,
		exts:        o.exts,
		errorLayout: o.errorLayout,
	}
}

// Locator returns the engine's locator.
func (e *Engine) Locator() Locator {
	return e.locator
}

// Debug reports whether debug status views are used.
func (e *Engine) Debug() bool {
	return e.debug
}

// Invalidate drops cached units for path from every caching loader.
func (e *Engine) Invalidate(path string) {
	walkLoaders(e.loader, func(l Loader) {
		if c, ok := l.(interface{ Invalidate(string) }); ok {
			c.Invalidate(path)
		}
	})
}

// Reset drops every cached unit.
func (e *Engine) Reset() {
	walkLoaders(e.loader, func(l Loader) {
		if c, ok := l.(interface{ Reset() }); ok {
			c.Reset()
		}
	})
}

func walkLoaders(l Loader, fn func(Loader)) {
	if ls, ok := l.(Loaders); ok {
		for _, inner := range ls {
			walkLoaders(inner, fn)
		}
		return
	}
	fn(l)
}

// NewView creates a view. messages may be nil when there is no session.
func (e *Engine) NewView(messages *Messages) *View {
	return &View{engine: e, messages: messages, args: Args{}}
}

// ViewFor creates a view for r, with flash messages bound to the session
// that session.Store.Middleware attached to the request, if any.
func (e *Engine) ViewFor(r *http.Request) *View {
	var messages *Messages
	if s, ok := session.FromContext(r.Context()); ok {
		messages = NewMessages(s)
	}
	return e.NewView(messages)
}

// HandlerFunc adapts fn to http.Handler. When fn fails, the matching HTTP
// status view is rendered with the error bound as "error"; see StatusCode.
//
//	mux.Handle("GET /", engine.HandlerFunc(func(w http.ResponseWriter, r *http.Request, v *hxview.View) error {
//	    return v.SetSource("home").SetLayout("main").ServeResponse(w, r)
//	}))
func (e *Engine) HandlerFunc(fn func(w http.ResponseWriter, r *http.Request, v *View) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r, e.ViewFor(r))
		if err == nil {
			return
		}
		e.ServeError(w, r, err)
	})
}

// ServeError answers r with the status view matching err. Codes without a
// view of their own get the default status view; if that cannot be
// rendered either, the status text is sent as plain text.
func (e *Engine) ServeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	code := StatusCode(err)
	if code >= http.StatusInternalServerError {
		logger(ctx).Error("request failed", "path", r.URL.Path, "status", code, "error", err)
	} else {
		logger(ctx).Debug("request rejected", "path", r.URL.Path, "status", code, "error", err)
	}

	args := Args{"error": err.Error()}
	rerr := e.errorView(r).RenderHTTPStatus(ctx, w, code, args)
	if IsNotFound(rerr) {
		rerr = e.errorView(r).renderStatus(ctx, w, defaultStatusSource(e.debug), code, args)
	}
	if rerr != nil {
		logger(ctx).Error("failed to render status view", "status", code, "error", rerr)
		http.Error(w, http.StatusText(code), code)
	}
}

func (e *Engine) errorView(r *http.Request) *View {
	v := e.ViewFor(r)
	if e.errorLayout != "" && !(IsHTMX(r) && !IsBoosted(r)) {
		v.SetLayout(e.errorLayout)
	}
	return v
}

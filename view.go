package hxview

import (
	"context"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
)

// View collects what to render for one request: a source, an optional
// explicit view and layout, and arguments.
//
// The source is a convention name. Setting it selects the view of the same
// name and makes Render register the stylesheet and script of the same name
// when they exist:
//
//	v := engine.ViewFor(r).
//	    SetSource("users/show").
//	    SetLayout("main").
//	    AddArguments(hxview.Args{"user": u})
//	html, err := v.Render(ctx)
//
// renders views/users/show.*, inside layouts/main.*, with
// assets/css/users/show.css and assets/js/users/show.js queued when present.
type View struct {
	engine   *Engine
	messages *Messages

	source   string
	view     string
	layout   string
	args     Args
	fragment bool

	page *Page
}

// SetSource sets the source name and the view to the same value, replacing
// any view set before.
func (v *View) SetSource(name string) *View {
	v.source = name
	v.view = name
	return v
}

// SetView sets the view to render without changing the source.
func (v *View) SetView(name string) *View {
	v.view = name
	return v
}

// SetLayout sets the layout the view is rendered into. "" means none.
func (v *View) SetLayout(name string) *View {
	v.layout = name
	return v
}

// SetFragment makes Render skip the layout.
func (v *View) SetFragment(fragment bool) *View {
	v.fragment = fragment
	return v
}

// AddArguments merges args into the view arguments. Later calls win on
// key collisions.
func (v *View) AddArguments(args Args) *View {
	for k, val := range args {
		v.args[k] = val
	}
	return v
}

// Arguments returns a copy of the view arguments.
func (v *View) Arguments() Args {
	return Args{}.Merge(v.args)
}

// Messages returns the flash queue bound to the view, or nil.
func (v *View) Messages() *Messages {
	return v.messages
}

// Page returns the page built by the last Render, or nil.
func (v *View) Page() *Page {
	return v.page
}

// Render resolves the view and layout and renders them.
//
// A missing view, or a missing layout when one is set, fails with a
// *NotFoundError listing the searched paths. Stylesheets and scripts
// named after the source are optional.
func (v *View) Render(ctx context.Context) (html string, err error) {
	e := v.engine
	ctx, span := startSpan(ctx, "hxview.View.Render",
		attribute.String("hxview.source", v.source),
		attribute.String("hxview.view", v.view),
		attribute.String("hxview.layout", v.layout),
	)
	defer func() { endSpan(span, err) }()

	if v.view == "" {
		return "", ErrNoView
	}

	viewPath, ok := e.locator.Find(v.view, KindView, e.exts, false)
	if !ok {
		return "", newNotFoundError(KindView, v.view, e.locator.LastSearchedPaths())
	}

	var layoutPath string
	if v.layout != "" && !v.fragment {
		layoutPath, ok = e.locator.Find(v.layout, KindLayout, e.exts, false)
		if !ok {
			return "", newNotFoundError(KindLayout, v.layout, e.locator.LastSearchedPaths())
		}
	}

	v.page = newPage(pageConfig{
		viewPath:   viewPath,
		layoutPath: layoutPath,
		args:       v.Arguments(),
		module:     e.module,
		webRoot:    e.webRoot,
		exts:       e.exts,
		locator:    e.locator,
		loader:     e.loader,
		messages:   v.messages,
	})

	if v.source != "" {
		if css, ok := e.locator.Find(v.source, KindCSS, cssExts, true); ok {
			v.page.AddCSS(css)
		}
		if js, ok := e.locator.Find(v.source, KindJS, jsExts, true); ok {
			v.page.AddJS(js)
		}
	}

	html, err = v.page.Render(ctx)
	if err != nil {
		logger(ctx).Error("render failed", "view", v.view, "layout", v.layout, "error", err)
		return "", err
	}
	logger(ctx).Debug("rendered view", "view", viewPath, "layout", layoutPath, "bytes", len(html))
	return html, nil
}

// RenderResponse renders the view into an HTML response.
func (v *View) RenderResponse(ctx context.Context) (*Response, error) {
	html, err := v.Render(ctx)
	if err != nil {
		return nil, err
	}
	return NewResponse(html), nil
}

// HTTPStatusSource returns the source name of the status view for code.
func HTTPStatusSource(code int, debug bool) string {
	return statusSource(strconv.Itoa(code), debug)
}

// defaultStatusSource names the status view used for codes without a view
// of their own.
func defaultStatusSource(debug bool) string {
	return statusSource("default", debug)
}

func statusSource(name string, debug bool) string {
	if debug {
		return "::http-status/" + name + "-debug"
	}
	return "::http-status/" + name
}

// RenderHTTPStatus renders the status view for code with args and sends it
// with that status. The layout set on v, if any, is kept. Handlers return
// right after calling it:
//
//	if user == nil {
//	    return v.RenderHTTPStatus(ctx, w, http.StatusNotFound, hxview.Args{"message": "no such user"})
//	}
func (v *View) RenderHTTPStatus(ctx context.Context, w http.ResponseWriter, code int, args Args) error {
	return v.renderStatus(ctx, w, HTTPStatusSource(code, v.engine.debug), code, args)
}

func (v *View) renderStatus(ctx context.Context, w http.ResponseWriter, source string, code int, args Args) error {
	v.SetSource(source)
	v.AddArguments(Args{"code": code, "status": http.StatusText(code)})
	v.AddArguments(args)

	resp, err := v.RenderResponse(ctx)
	if err != nil {
		return err
	}
	return resp.WithStatus(code).Send(w)
}

// ServeResponse renders the view and sends it. HTMX requests that are not
// boosted get the view alone, without its layout.
func (v *View) ServeResponse(w http.ResponseWriter, r *http.Request) error {
	if IsHTMX(r) && !IsBoosted(r) {
		v.SetFragment(true)
	}
	resp, err := v.RenderResponse(r.Context())
	if err != nil {
		return err
	}
	return resp.Send(w)
}

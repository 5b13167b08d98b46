// Package hxviewecho provides Echo framework integration for hxview.
//
// Mount installs the engine as the Echo renderer and error handler:
//
//	e := echo.New()
//	hxviewecho.Mount(e, engine, hxviewecho.WithLayout("main"))
//
//	e.GET("/users/:id", func(c echo.Context) error {
//	    return c.Render(http.StatusOK, "users/show", hxview.Args{"id": c.Param("id")})
//	})
//
// Handlers that need more control build the view themselves:
//
//	v := hxviewecho.View(c).SetSource("users/show").SetLayout("admin")
//	return v.ServeResponse(c.Response(), c.Request())
package hxviewecho

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/hxview"
	"github.com/pthm/hxview/lib/session"
)

const engineKey = "hxview.engine"

// Option configures Mount and MountGroup.
type Option func(*options)

type options struct {
	store  *session.Store
	layout string
}

// WithSession loads and saves the session cookie around every request, so
// views get flash messages.
func WithSession(store *session.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithLayout sets the layout c.Render wraps views in.
func WithLayout(name string) Option {
	return func(o *options) {
		o.layout = name
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Mount installs engine on an Echo instance: its Renderer, its
// HTTPErrorHandler and, with WithSession, the session middleware.
func Mount(e *echo.Echo, engine *hxview.Engine, opts ...Option) {
	o := newOptions(opts)
	e.Renderer = &Renderer{Engine: engine, Layout: o.layout}
	e.HTTPErrorHandler = ErrorHandler(engine)
	e.Use(middleware(engine, o))
}

// MountGroup attaches engine to the requests of one group only. Renderer
// and error handler stay those of the Echo instance.
func MountGroup(g *echo.Group, engine *hxview.Engine, opts ...Option) {
	g.Use(middleware(engine, newOptions(opts)))
}

func middleware(engine *hxview.Engine, o *options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		h := func(c echo.Context) error {
			c.Set(engineKey, engine)
			return next(c)
		}
		if o.store == nil {
			return h
		}
		return echo.WrapMiddleware(o.store.Middleware)(h)
	}
}

// View returns a view for the request, bound to its session when
// WithSession was used. It panics if the request did not pass through
// Mount or MountGroup.
func View(c echo.Context) *hxview.View {
	engine, ok := c.Get(engineKey).(*hxview.Engine)
	if !ok {
		panic("hxviewecho: no engine mounted")
	}
	return engine.ViewFor(c.Request())
}

// Renderer implements echo.Renderer. The name passed to c.Render is the
// view source; data may be hxview.Args, a map[string]any or nil.
type Renderer struct {
	Engine *hxview.Engine
	Layout string
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	var args hxview.Args
	switch d := data.(type) {
	case nil:
	case hxview.Args:
		args = d
	case map[string]any:
		args = d
	default:
		return fmt.Errorf("hxviewecho: unsupported render data %T", data)
	}

	req := c.Request()
	v := r.Engine.ViewFor(req).SetSource(name).SetLayout(r.Layout).AddArguments(args)
	if hxview.IsHTMX(req) && !hxview.IsBoosted(req) {
		v.SetFragment(true)
	}
	html, err := v.Render(req.Context())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, html)
	return err
}

// ErrorHandler renders errors with the engine's HTTP status views. Echo's
// own errors keep their status code.
func ErrorHandler(engine *hxview.Engine) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			err = hxview.NewHTTPError(he.Code, fmt.Errorf("%v", he.Message))
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(hxview.StatusCode(err))
			return
		}
		engine.ServeError(c.Response(), c.Request(), err)
	}
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return hxviewecho.Render(c, hxview.ToastContainer(page))
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}

package hxview

import (
	"context"
	"errors"
	"io"

	"github.com/a-h/templ"
)

// Unit is an executable view or layout. It writes its output to w and may
// call back into the page to include other units, register assets or read
// the view content from inside a layout.
//
// Units get the merged arguments for their call; they must not keep them.
type Unit interface {
	Execute(ctx context.Context, w io.Writer, p *Page, args Args) error
}

// UnitFunc adapts a function to Unit.
type UnitFunc func(ctx context.Context, w io.Writer, p *Page, args Args) error

// Execute implements Unit.
func (f UnitFunc) Execute(ctx context.Context, w io.Writer, p *Page, args Args) error {
	return f(ctx, w, p, args)
}

// TemplFunc adapts a templ template taking the page and its arguments:
//
//	templ Home(p *hxview.Page, args hxview.Args) {
//	    <h1>{ args["title"].(string) }</h1>
//	    @p.IncludeComponent("partials/list", nil)
//	}
type TemplFunc func(p *Page, args Args) templ.Component

// Execute implements Unit.
func (f TemplFunc) Execute(ctx context.Context, w io.Writer, p *Page, args Args) error {
	return f(p, args).Render(ctx, w)
}

// Loader turns a path returned by the Locator into a Unit. Loaders that do
// not handle a path return ErrUnitNotFound.
type Loader interface {
	Load(ctx context.Context, path string) (Unit, error)
}

// Loaders tries each loader in order.
type Loaders []Loader

// Load implements Loader.
func (ls Loaders) Load(ctx context.Context, path string) (Unit, error) {
	for _, l := range ls {
		u, err := l.Load(ctx, path)
		if errors.Is(err, ErrUnitNotFound) {
			continue
		}
		return u, err
	}
	return nil, ErrUnitNotFound
}

// Package hxview renders server-side views for HTMX applications: a view
// wrapped in an optional layout, with stylesheets, scripts and meta tags
// collected while rendering and flash messages carried across requests.
//
// # Core Concepts
//
// An Engine owns a Locator and a Loader. The locator searches an ordered
// list of roots for named resources, each root laid out by kind:
//
//	views/       pages and partials
//	layouts/     wrappers that place the view with insertContent
//	assets/css/  stylesheets
//	assets/js/   scripts
//
// Names are plain ("users/show"), root qualified ("vendor:users/show"), or
// built-in ("::http-status/404"). Plain names are searched in root order,
// so earlier roots override later ones.
//
// A View is the per-request handle. It names the source, layout and
// arguments and renders them through a Page:
//
//	v := engine.NewView(messages).
//	    SetSource("users/show").
//	    SetLayout("main").
//	    AddArguments(hxview.Args{"user": u})
//	html, err := v.Render(ctx)
//
// SetSource also queues the stylesheet and script sharing the view's name,
// when the roots hold them.
//
// # Units
//
// Resolved files are loaded as units. FileLoader handles html/template
// files (.html, .gohtml, .tmpl) and Markdown (.md). Compiled templ
// components and plain Go functions are registered under a path:
//
//	reg := hxview.NewRegistry()
//	reg.AddTempl("app/views/dashboard.templ", func(p *hxview.Page, args hxview.Args) templ.Component {
//	    return views.Dashboard(p, args)
//	})
//	engine := hxview.NewEngine(loc, hxview.WithRegistry(reg))
//
// Templates receive the arguments as dot and reach the Page through
// functions: include, includeLayout, insertContent, addCss, addJs,
// addLink, addMetaName, renderLinkTags, renderScriptTags, renderMetaTags,
// flashes and renderFlashes among others.
//
// # Includes
//
// include renders another view inline with the page's arguments merged
// with its own. Overrides stay local to the include:
//
//	{{ include "partials/item" (args "item" .) }}
//
// # Flash Messages
//
// Messages queues one-time notifications in the session. They survive a
// redirect and are drained by the next page that renders them:
//
//	if m := engine.ViewFor(r).Messages(); m != nil {
//	    m.Success(ctx, "Saved")
//	}
//
// Sessions live in a signed or encrypted cookie, see lib/session.
//
// # Errors
//
// Engine.HandlerFunc turns handler errors into HTTP status views. Not found
// errors render 404, *HTTPError its own code, and anything else 500. Codes
// without a view of their own use "::http-status/default". In debug mode
// the "-debug" variant of the status view is used.
package hxview

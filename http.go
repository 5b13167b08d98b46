package hxview

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
)

// RenderComponent writes a templ component to the HTTP response.
//
// Use it for markup that does not go through a View, such as a toast
// container swapped out-of-band:
//
//	hxview.RenderComponent(w, r, hxview.ToastContainer(page))
func RenderComponent(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// IsHTMX returns true if the request originated from HTMX.
//
// HTMX sends HX-Request: true on all requests. ServeResponse uses it to
// render the view without its layout.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// IsBoosted returns true if the request is a boosted navigation (hx-boost).
//
// Boosted requests swap the whole body, so they get the full layout.
func IsBoosted(r *http.Request) bool {
	return r.Header.Get("HX-Boosted") == "true"
}

// CurrentURL returns the URL the browser is on, from HX-Current-URL.
// Returns "" for non-HTMX requests.
func CurrentURL(r *http.Request) string {
	return r.Header.Get("HX-Current-URL")
}

// TargetID returns the id of the element that receives the response.
func TargetID(r *http.Request) string {
	return r.Header.Get("HX-Target")
}

// HTTPError is an error with the status code it should be answered with.
type HTTPError struct {
	Code int
	Err  error
}

// NewHTTPError wraps err with a status code.
func NewHTTPError(code int, err error) *HTTPError {
	return &HTTPError{Code: code, Err: err}
}

func (e *HTTPError) Error() string {
	if e.Err == nil {
		return http.StatusText(e.Code)
	}
	return fmt.Sprintf("%d %s: %v", e.Code, http.StatusText(e.Code), e.Err)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// StatusCode maps err to the status of its error page: the code of an
// *HTTPError, 404 for a missing resource, 500 otherwise.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	if IsNotFound(err) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

package hxview

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strconv"
)

// Response is a rendered page on its way to the client.
//
// Response is a value-semantics builder: each With* method returns a copy,
// so a base response can be shared and specialised.
//
//	resp, err := view.RenderResponse(ctx)
//	if err != nil {
//	    return err
//	}
//	return resp.WithStatus(http.StatusCreated).
//	    WithHeader("Cache-Control", "no-store").
//	    Send(w)
type Response struct {
	body    string
	status  int
	headers map[string]string
}

// NewResponse wraps body as an HTML response with Content-Type and
// Content-Length set.
func NewResponse(body string) *Response {
	return &Response{
		body: body,
		headers: map[string]string{
			"Content-Type":   "text/html; charset=utf-8",
			"Content-Length": strconv.Itoa(len(body)),
		},
	}
}

func (r *Response) clone() *Response {
	c := *r
	c.headers = make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		c.headers[k] = v
	}
	return &c
}

// WithHeader sets a response header.
func (r *Response) WithHeader(key, value string) *Response {
	c := r.clone()
	c.headers[http.CanonicalHeaderKey(key)] = value
	return c
}

// WithStatus sets the HTTP status code. The default is 200.
func (r *Response) WithStatus(code int) *Response {
	c := r.clone()
	c.status = code
	return c
}

// WithTrigger emits an event through the HX-Trigger header. Listeners
// receive data as the event detail:
//
//	resp.WithTrigger("item:saved", map[string]any{"id": 7})
func (r *Response) WithTrigger(event string, data map[string]any) *Response {
	return r.WithHeader("HX-Trigger", triggerHeader(event, data))
}

// WithRedirect asks HTMX to navigate to url after the swap.
func (r *Response) WithRedirect(url string) *Response {
	return r.WithHeader("HX-Redirect", url)
}

// Body returns the payload.
func (r *Response) Body() string {
	return r.body
}

// Status returns the status code, 200 when unset.
func (r *Response) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Header returns the value set for key.
func (r *Response) Header(key string) string {
	return r.headers[http.CanonicalHeaderKey(key)]
}

// Send writes headers, status and body to w.
func (r *Response) Send(w http.ResponseWriter) error {
	keys := make([]string, 0, len(r.headers))
	for k := range r.headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.Header().Set(k, r.headers[k])
	}
	w.WriteHeader(r.Status())
	_, err := io.WriteString(w, r.body)
	return err
}

// triggerHeader formats an HX-Trigger value: the bare event name, or a JSON
// object mapping it to its data.
func triggerHeader(event string, data map[string]any) string {
	if data == nil {
		return event
	}
	b, err := json.Marshal(map[string]any{event: data})
	if err != nil {
		return event
	}
	return string(b)
}

package hxview

import (
	"context"
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// TestResult holds the outcome of a render or request for testing.
//
// Provides convenience methods for asserting on HTML content, headers,
// status codes, events, flashes, redirects and queued assets.
type TestResult struct {
	HTML            string
	StatusCode      int
	Headers         http.Header
	TriggeredEvents []string
	Flashes         []Flash
	RedirectURL     string

	// CSS and JS are the asset sources the page queued. Only TestRender
	// fills them.
	CSS []string
	JS  []string
}

// TestRender renders a view and returns testable output.
//
// Use this for unit tests of views and layouts; no HTTP is involved:
//
//	v := engine.NewView(nil).SetSource("users/show").AddArguments(args)
//	result, err := hxview.TestRender(v)
//	if !result.HTMLContains("Alice") {
//	    t.Fatal("missing user name")
//	}
func TestRender(v *View) (*TestResult, error) {
	return TestRenderWithContext(context.Background(), v)
}

// TestRenderWithContext renders a view with a custom context.
func TestRenderWithContext(ctx context.Context, v *View) (*TestResult, error) {
	out, err := v.Render(ctx)
	if err != nil {
		return nil, err
	}
	result := &TestResult{
		HTML:       out,
		StatusCode: http.StatusOK,
		Headers:    make(http.Header),
		Flashes:    parseFlashesFromHTML(out),
	}
	if p := v.Page(); p != nil {
		result.CSS = p.CSS()
		result.JS = p.JS()
	}
	return result, nil
}

// TestGet sends a plain browser GET to h.
//
//	result, err := hxview.TestGet(engine.HandlerFunc(showUser), "/users/1")
func TestGet(h http.Handler, target string) (*TestResult, error) {
	return NewTestRequest(http.MethodGet, target).Execute(h)
}

// TestPost sends an HTMX form POST to h.
//
//	result, err := hxview.TestPost(h, "/users", map[string]string{
//	    "name": "Alice",
//	})
func TestPost(h http.Handler, target string, formData map[string]string) (*TestResult, error) {
	return NewTestRequest(http.MethodPost, target).
		WithFormValues(formData).
		WithHeader("HX-Request", "true").
		Execute(h)
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HTMLContainsAny checks if the HTML contains any of the given substrings.
func (r *TestResult) HTMLContainsAny(substrs ...string) bool {
	for _, s := range substrs {
		if strings.Contains(r.HTML, s) {
			return true
		}
	}
	return false
}

// HasEvent checks if an event was triggered.
func (r *TestResult) HasEvent(event string) bool {
	for _, e := range r.TriggeredEvents {
		if e == event {
			return true
		}
	}
	return false
}

// HasFlash checks if a toast with the given type and content was rendered.
func (r *TestResult) HasFlash(typ FlashType, content string) bool {
	for _, f := range r.Flashes {
		if f.Type == typ && f.Content == content {
			return true
		}
	}
	return false
}

// HasFlashType checks if any toast of the given type was rendered.
func (r *TestResult) HasFlashType(typ FlashType) bool {
	for _, f := range r.Flashes {
		if f.Type == typ {
			return true
		}
	}
	return false
}

// WasRedirected checks if the response asked HTMX to redirect.
func (r *TestResult) WasRedirected() bool {
	return r.RedirectURL != ""
}

// RedirectedTo checks if the response redirected to a specific URL.
func (r *TestResult) RedirectedTo(url string) bool {
	return r.RedirectURL == url
}

// IsOK checks if the status code is 200.
func (r *TestResult) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

// HasStatus checks if the status code matches.
func (r *TestResult) HasStatus(code int) bool {
	return r.StatusCode == code
}

// HasHeader checks if a header is set with the given value.
func (r *TestResult) HasHeader(key, value string) bool {
	return r.Headers.Get(key) == value
}

// GetHeader returns the value of a header.
func (r *TestResult) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// parseTriggerHeader returns the event names of an HX-Trigger value: a
// JSON object keyed by event, or a comma-separated list of names.
func parseTriggerHeader(trigger string) []string {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return nil
	}

	if strings.HasPrefix(trigger, "{") {
		var events map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trigger), &events); err != nil {
			return nil
		}
		names := make([]string, 0, len(events))
		for name := range events {
			names = append(names, name)
		}
		sort.Strings(names)
		return names
	}

	parts := strings.Split(trigger, ",")
	events := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			events = append(events, p)
		}
	}
	return events
}

var toastPattern = regexp.MustCompile(
	`<div class="toast toast-([^"]*)"[^>]*>(?:<i [^>]*></i>)?(.*?)(?:<small>(.*?)</small>)?</div>`,
)

// parseFlashesFromHTML extracts the toasts written by RenderFlashes.
func parseFlashesFromHTML(out string) []Flash {
	var flashes []Flash
	for _, m := range toastPattern.FindAllStringSubmatch(out, -1) {
		flashes = append(flashes, Flash{
			Type:    FlashType(html.UnescapeString(m[1])),
			Content: html.UnescapeString(m[2]),
			Extra:   html.UnescapeString(m[3]),
		})
	}
	return flashes
}

// TestRequestBuilder provides a fluent interface for building test requests.
//
//	result, err := hxview.NewTestRequest("POST", "/users").
//	    WithFormData("name", "value").
//	    WithHeader("HX-Request", "true").
//	    WithContext(ctx).
//	    Execute(handler)
type TestRequestBuilder struct {
	method   string
	url      string
	formData map[string]string
	headers  map[string]string
	cookies  []*http.Cookie
	ctx      context.Context
}

// NewTestRequest creates a new test request builder.
func NewTestRequest(method, url string) *TestRequestBuilder {
	return &TestRequestBuilder{
		method:   method,
		url:      url,
		formData: make(map[string]string),
		headers:  make(map[string]string),
		ctx:      context.Background(),
	}
}

// WithFormData adds form data to the request.
func (b *TestRequestBuilder) WithFormData(key, value string) *TestRequestBuilder {
	b.formData[key] = value
	return b
}

// WithFormValues adds multiple form values to the request.
func (b *TestRequestBuilder) WithFormValues(data map[string]string) *TestRequestBuilder {
	for k, v := range data {
		b.formData[k] = v
	}
	return b
}

// WithHeader adds a header to the request.
func (b *TestRequestBuilder) WithHeader(key, value string) *TestRequestBuilder {
	b.headers[key] = value
	return b
}

// WithCookies adds cookies, typically those of an earlier result, so a
// session carries over between requests.
func (b *TestRequestBuilder) WithCookies(cookies ...*http.Cookie) *TestRequestBuilder {
	b.cookies = append(b.cookies, cookies...)
	return b
}

// WithContext sets the context for the request.
func (b *TestRequestBuilder) WithContext(ctx context.Context) *TestRequestBuilder {
	b.ctx = ctx
	return b
}

// Execute sends the request to h.
func (b *TestRequestBuilder) Execute(h http.Handler) (*TestResult, error) {
	form := url.Values{}
	for k, v := range b.formData {
		form.Set(k, v)
	}

	req := httptest.NewRequest(b.method, b.url, strings.NewReader(form.Encode()))
	req = req.WithContext(b.ctx)
	if len(b.formData) > 0 {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	result := &TestResult{
		HTML:        rec.Body.String(),
		StatusCode:  rec.Code,
		Headers:     rec.Header(),
		RedirectURL: rec.Header().Get("HX-Redirect"),
	}
	if trigger := rec.Header().Get("HX-Trigger"); trigger != "" {
		result.TriggeredEvents = parseTriggerHeader(trigger)
	}
	result.Flashes = parseFlashesFromHTML(result.HTML)

	return result, nil
}

// Cookies returns the cookies the response set.
func (r *TestResult) Cookies() []*http.Cookie {
	return (&http.Response{Header: r.Headers}).Cookies()
}

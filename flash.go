package hxview

import (
	"context"
	"fmt"
	"html"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"
	"github.com/vmihailenco/msgpack/v5"
)

// FlashType is the severity of a flash message.
type FlashType string

// Flash types for toast notifications.
const (
	FlashSuccess FlashType = "success"
	FlashInfo    FlashType = "info"
	FlashWarning FlashType = "warning"
	FlashError   FlashType = "error"
)

// flashKey is the session key holding the pending messages.
const flashKey = "hxview-flash"

// Flash represents a one-time notification message.
//
// Flashes are queued during one request (typically before a redirect) and
// displayed by the next page that renders them.
type Flash struct {
	Content string         `msgpack:"content"`
	Type    FlashType      `msgpack:"type"`
	Extra   string         `msgpack:"extra,omitempty"`
	Icon    string         `msgpack:"icon,omitempty"`
	Options map[string]any `msgpack:"options,omitempty"`
}

// Session is the key-value store flash messages live in. Get returns the
// list appended under key; lib/session provides a cookie-backed
// implementation.
type Session interface {
	Get(key string) (any, bool)
	Append(key string, value any) error
	Remove(key string) error
}

// FlashOption sets an optional field of a Flash.
type FlashOption func(*Flash)

// WithExtra attaches secondary text to a flash.
func WithExtra(extra string) FlashOption {
	return func(f *Flash) {
		f.Extra = extra
	}
}

// WithIcon attaches an icon name to a flash.
func WithIcon(icon string) FlashOption {
	return func(f *Flash) {
		f.Icon = icon
	}
}

// WithOptions attaches arbitrary presentation options to a flash. They are
// rendered as data- attributes by RenderFlashes.
func WithOptions(options map[string]any) FlashOption {
	return func(f *Flash) {
		f.Options = options
	}
}

// Messages is a write-many, read-once queue of flashes kept in a Session.
// It owns no data itself.
type Messages struct {
	session Session
}

// NewMessages returns a queue over s.
func NewMessages(s Session) *Messages {
	return &Messages{session: s}
}

// Add queues one message. On a nil queue, as handed out for requests
// without a session, it returns ErrNoSession.
func (m *Messages) Add(ctx context.Context, content string, typ FlashType, opts ...FlashOption) error {
	if m == nil {
		return ErrNoSession
	}
	f := Flash{Content: content, Type: typ}
	for _, opt := range opts {
		opt(&f)
	}

	packed, err := msgpack.Marshal(f)
	if err != nil {
		return fmt.Errorf("hxview: encoding flash: %w", err)
	}
	if err := m.session.Append(flashKey, packed); err != nil {
		return fmt.Errorf("hxview: storing flash: %w", err)
	}
	logger(ctx).Debug("flash queued", "type", typ)
	return nil
}

// Success queues a success message.
func (m *Messages) Success(ctx context.Context, content string, opts ...FlashOption) error {
	return m.Add(ctx, content, FlashSuccess, opts...)
}

// Info queues an informational message.
func (m *Messages) Info(ctx context.Context, content string, opts ...FlashOption) error {
	return m.Add(ctx, content, FlashInfo, opts...)
}

// Warning queues a warning.
func (m *Messages) Warning(ctx context.Context, content string, opts ...FlashOption) error {
	return m.Add(ctx, content, FlashWarning, opts...)
}

// Error queues an error message.
func (m *Messages) Error(ctx context.Context, content string, opts ...FlashOption) error {
	return m.Add(ctx, content, FlashError, opts...)
}

// RetrieveAll returns every queued message in the order it was added and
// removes them from the session, so each message is shown exactly once.
// An empty queue yields an empty slice; a nil queue ErrNoSession.
func (m *Messages) RetrieveAll(ctx context.Context) ([]Flash, error) {
	if m == nil {
		return nil, ErrNoSession
	}
	raw, ok := m.session.Get(flashKey)
	if !ok {
		return []Flash{}, nil
	}
	if err := m.session.Remove(flashKey); err != nil {
		return nil, fmt.Errorf("hxview: clearing flashes: %w", err)
	}

	var entries []any
	switch v := raw.(type) {
	case []any:
		entries = v
	case [][]byte:
		for _, b := range v {
			entries = append(entries, b)
		}
	default:
		entries = []any{v}
	}

	flashes := make([]Flash, 0, len(entries))
	for _, e := range entries {
		f, err := decodeFlash(e)
		if err != nil {
			logger(ctx).Warn("dropping unreadable flash", "error", err)
			continue
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}

func decodeFlash(v any) (Flash, error) {
	var f Flash
	switch e := v.(type) {
	case Flash:
		return e, nil
	case []byte:
		err := msgpack.Unmarshal(e, &f)
		return f, err
	case string:
		err := msgpack.Unmarshal([]byte(e), &f)
		return f, err
	}
	return f, fmt.Errorf("unexpected flash entry %T", v)
}

// RenderFlashes renders flashes as toast markup.
//
// Every option becomes a data- attribute on the toast (sorted by key), so
// `WithOptions(map[string]any{"auto-dismiss": 5000})` overrides the default
// dismissal delay read by the client script.
func RenderFlashes(flashes []Flash) string {
	if len(flashes) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<div class="toasts">`)

	for _, f := range flashes {
		sb.WriteString(`<div class="toast toast-`)
		sb.WriteString(html.EscapeString(string(f.Type)))
		sb.WriteString(`" role="alert"`)
		if _, ok := f.Options["auto-dismiss"]; !ok {
			sb.WriteString(` data-auto-dismiss="3000"`)
		}
		keys := make([]string, 0, len(f.Options))
		for k := range f.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, ` data-%s="%s"`, html.EscapeString(k), html.EscapeString(fmt.Sprint(f.Options[k])))
		}
		sb.WriteString(`>`)
		if f.Icon != "" {
			sb.WriteString(`<i class="icon icon-`)
			sb.WriteString(html.EscapeString(f.Icon))
			sb.WriteString(`"></i>`)
		}
		sb.WriteString(html.EscapeString(f.Content))
		if f.Extra != "" {
			sb.WriteString(`<small>`)
			sb.WriteString(html.EscapeString(f.Extra))
			sb.WriteString(`</small>`)
		}
		sb.WriteString(`</div>`)
	}

	sb.WriteString(`</div>`)
	return sb.String()
}

// ToastContainer returns a templ component for the toast container.
//
// templ layouts add it near the end of <body>:
//
//	@hxview.ToastContainer(page)
//
// It drains the page's flash queue. Nothing is written when the page has no
// session or no pending messages.
func ToastContainer(p *Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := p.Messages()
		if m == nil {
			return nil
		}
		flashes, err := m.RetrieveAll(ctx)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, RenderFlashes(flashes))
		return err
	})
}

package session

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pthm/hxview/lib/encoding"
)

// DefaultCookieName is used when no cookie name is configured.
const DefaultCookieName = "hxview_session"

// Option configures a Store.
type Option func(*options)

type options struct {
	name     string
	path     string
	maxAge   time.Duration
	secure   bool
	encrypt  bool
	sameSite http.SameSite
	logger   *slog.Logger
}

// WithCookieName sets the cookie name. Defaults to DefaultCookieName.
func WithCookieName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithPath sets the cookie path. Defaults to "/".
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithMaxAge sets the cookie lifetime. Zero makes it a browser-session cookie.
func WithMaxAge(d time.Duration) Option {
	return func(o *options) {
		o.maxAge = d
	}
}

// WithSecure marks the cookie Secure.
func WithSecure(secure bool) Option {
	return func(o *options) {
		o.secure = secure
	}
}

// WithEncryption stores the session encrypted instead of signed.
func WithEncryption(encrypt bool) Option {
	return func(o *options) {
		o.encrypt = encrypt
	}
}

// WithLogger sets the logger used to report unreadable cookies.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Store loads and saves sessions from a cookie.
type Store struct {
	enc  *encoding.Encoder
	opts options
}

// NewStore creates a store keyed with key.
func NewStore(key []byte, opts ...Option) (*Store, error) {
	enc, err := encoding.NewEncoder(key)
	if err != nil {
		return nil, fmt.Errorf("session: creating encoder: %w", err)
	}
	o := options{
		name:     DefaultCookieName,
		path:     "/",
		sameSite: http.SameSiteLaxMode,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{enc: enc, opts: o}, nil
}

type payload struct {
	Values map[string][]any `msgpack:"v"`
}

// Load reads the session from r. A request without a cookie yields an empty
// session. A cookie that fails verification yields an empty session and the
// error, so callers may choose to continue.
func (st *Store) Load(r *http.Request) (*Session, error) {
	c, err := r.Cookie(st.opts.name)
	if errors.Is(err, http.ErrNoCookie) {
		return New(), nil
	}
	if err != nil {
		return New(), err
	}

	var p payload
	if err := st.enc.Decode(c.Value, st.opts.encrypt, &p); err != nil {
		return New(), fmt.Errorf("session: decoding cookie: %w", err)
	}
	s := New()
	for k, v := range p.Values {
		s.values[k] = v
	}
	return s, nil
}

// Save writes s to w as a cookie. An empty session clears the cookie.
func (st *Store) Save(w http.ResponseWriter, s *Session) error {
	c := &http.Cookie{
		Name:     st.opts.name,
		Path:     st.opts.path,
		HttpOnly: true,
		Secure:   st.opts.secure,
		SameSite: st.opts.sameSite,
	}

	if s.Len() == 0 {
		c.MaxAge = -1
		http.SetCookie(w, c)
		s.markSaved()
		return nil
	}

	value, err := st.enc.Encode(payload{Values: s.snapshot()}, st.opts.encrypt)
	if err != nil {
		return fmt.Errorf("session: encoding cookie: %w", err)
	}
	c.Value = value
	if st.opts.maxAge > 0 {
		c.MaxAge = int(st.opts.maxAge / time.Second)
	}
	http.SetCookie(w, c)
	s.markSaved()
	return nil
}

// Middleware loads the session for each request, attaches it to the request
// context and writes it back when modified, just before the response headers
// are sent.
func (st *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := st.Load(r)
		if err != nil {
			st.opts.logger.Warn("discarding unreadable session cookie", "error", err)
		}

		sw := &saveWriter{ResponseWriter: w, store: st, session: s}
		next.ServeHTTP(sw, r.WithContext(NewContext(r.Context(), s)))
		sw.save()
	})
}

// IsDecryptionError checks if err came from a tampered or foreign cookie.
func IsDecryptionError(err error) bool {
	return errors.Is(err, encoding.ErrDecryptFailed) ||
		errors.Is(err, encoding.ErrSignatureInvalid) ||
		errors.Is(err, encoding.ErrInvalidFormat)
}

// saveWriter persists the session the first time the handler writes.
type saveWriter struct {
	http.ResponseWriter
	store   *Store
	session *Session
	saved   bool
}

func (w *saveWriter) save() {
	if w.saved {
		return
	}
	w.saved = true
	if !w.session.Modified() {
		return
	}
	if err := w.store.Save(w.ResponseWriter, w.session); err != nil {
		w.store.opts.logger.Error("saving session", "error", err)
	}
}

func (w *saveWriter) WriteHeader(code int) {
	w.save()
	w.ResponseWriter.WriteHeader(code)
}

func (w *saveWriter) Write(b []byte) (int, error) {
	w.save()
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *saveWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

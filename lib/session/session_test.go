package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionAppendGetRemove(t *testing.T) {
	s := New()

	if _, ok := s.Get("k"); ok {
		t.Fatal("Get() on empty session should report missing")
	}
	if s.Modified() {
		t.Error("new session should not be modified")
	}

	s.Append("k", "a")
	s.Append("k", "b")

	v, ok := s.Get("k")
	if !ok {
		t.Fatal("Get() should find appended key")
	}
	list := v.([]any)
	if len(list) != 2 || list[0] != "a" || list[1] != "b" {
		t.Errorf("Get() = %v, want [a b]", list)
	}
	if !s.Modified() {
		t.Error("Append should mark the session modified")
	}

	// returned list is a copy
	list[0] = "changed"
	v, _ = s.Get("k")
	if v.([]any)[0] != "a" {
		t.Error("Get() should return a copy")
	}

	if err := s.Remove("k"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok := s.Get("k"); ok {
		t.Error("Get() after Remove should report missing")
	}
	if err := s.Remove("k"); err != nil {
		t.Errorf("Remove() of missing key error = %v", err)
	}
}

func TestContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("FromContext on bare context should fail")
	}
	s := New()
	got, ok := FromContext(NewContext(context.Background(), s))
	if !ok || got != s {
		t.Error("FromContext should return the attached session")
	}
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append(opts, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	st, err := NewStore([]byte("session-test-key"), opts...)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return st
}

func TestStoreRoundTrip(t *testing.T) {
	for _, encrypt := range []bool{false, true} {
		st := newTestStore(t, WithEncryption(encrypt), WithCookieName("sid"))

		s := New()
		s.Append("flash", []byte("hello"))
		s.Append("flash", []byte("world"))

		rec := httptest.NewRecorder()
		if err := st.Save(rec, s); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if s.Modified() {
			t.Error("Save should clear the modified flag")
		}

		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != "sid" {
			t.Fatalf("cookies = %v, want one named sid", cookies)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookies[0])
		loaded, err := st.Load(req)
		if err != nil {
			t.Fatalf("Load(encrypt=%v) error = %v", encrypt, err)
		}

		v, ok := loaded.Get("flash")
		if !ok {
			t.Fatal("loaded session missing key")
		}
		list := v.([]any)
		if len(list) != 2 || string(list[0].([]byte)) != "hello" || string(list[1].([]byte)) != "world" {
			t.Errorf("loaded values = %v", list)
		}
	}
}

func TestStoreLoadTampered(t *testing.T) {
	st := newTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "bogus"})

	s, err := st.Load(req)
	if !IsDecryptionError(err) {
		t.Errorf("Load() error = %v, want decryption error", err)
	}
	if s == nil || s.Len() != 0 {
		t.Error("Load() should return an empty session on error")
	}
}

func TestStoreSaveEmptyClearsCookie(t *testing.T) {
	st := newTestStore(t)

	rec := httptest.NewRecorder()
	if err := st.Save(rec, New()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("cookies = %v, want one expired cookie", cookies)
	}
}

func TestMiddleware(t *testing.T) {
	st := newTestStore(t)

	h := st.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := FromContext(r.Context())
		if !ok {
			t.Fatal("handler has no session")
		}
		s.Append("flash", []byte("saved"))
		w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "" {
		t.Fatalf("cookies = %v, want a session cookie", cookies)
	}

	// second request reads and drains it
	var seen int
	h = st.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := FromContext(r.Context())
		if v, ok := s.Get("flash"); ok {
			seen = len(v.([]any))
		}
		s.Remove("flash")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != 1 {
		t.Errorf("second request saw %d values, want 1", seen)
	}
	cookies = rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("cookies = %v, want the session cookie cleared", cookies)
	}
}

func TestMiddlewareUnmodifiedWritesNoCookie(t *testing.T) {
	st := newTestStore(t)
	h := st.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(rec.Result().Cookies()) != 0 {
		t.Error("unmodified session should not set a cookie")
	}
}

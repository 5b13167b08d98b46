package locator

import (
	"errors"
	"io/fs"
	"slices"
	"testing"
	"testing/fstest"
)

func testLocator(t *testing.T) *Locator {
	t.Helper()

	app := fstest.MapFS{
		"views/home.html":       {Data: []byte("app home")},
		"views/shared.html":     {Data: []byte("app shared")},
		"layouts/main.html":     {Data: []byte("app layout")},
		"assets/css/home.scss":  {Data: []byte("body{}")},
		"assets/js/home.js":     {Data: []byte("1")},
		"views/partials/x.html": {Data: []byte("x")},
		"views/dir.html/a.txt":  {Data: []byte("a")},
	}
	vendor := fstest.MapFS{
		"views/shared.html":     {Data: []byte("vendor shared")},
		"views/vendoronly.html": {Data: []byte("vendor only")},
		"views/home.tmpl":       {Data: []byte("vendor tmpl")},
	}
	builtin := fstest.MapFS{
		"views/http-status/404.html": {Data: []byte("not found")},
	}

	l, err := New(
		Root{Name: "app", FS: app},
		Root{Name: "vendor", FS: vendor},
		Root{FS: builtin},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

func TestFind(t *testing.T) {
	l := testLocator(t)

	tests := []struct {
		name     string
		resource string
		kind     Kind
		exts     []string
		relative bool
		want     string
		wantOK   bool
	}{
		{"first root wins", "shared", KindView, []string{"html"}, false, "app/views/shared.html", true},
		{"falls through to later root", "vendoronly", KindView, []string{"html"}, false, "vendor/views/vendoronly.html", true},
		{"root order beats extension order", "home", KindView, []string{"tmpl", "html"}, false, "app/views/home.html", true},
		{"namespaced", "vendor:shared", KindView, []string{"html"}, false, "vendor/views/shared.html", true},
		{"builtin", "::http-status/404", KindView, []string{"html"}, false, "_builtin/views/http-status/404.html", true},
		{"nested name", "partials/x", KindView, []string{"html"}, false, "app/views/partials/x.html", true},
		{"layout kind", "main", KindLayout, []string{"html"}, false, "app/layouts/main.html", true},
		{"second extension", "home", KindCSS, []string{"css", "scss"}, false, "app/assets/css/home.scss", true},
		{"leading dot extension", "home", KindJS, []string{".js"}, false, "app/assets/js/home.js", true},
		{"relative name", "home", KindCSS, []string{"css", "scss"}, true, "app:home", true},
		{"relative builtin", "::http-status/404", KindView, []string{"html"}, true, "::http-status/404", true},
		{"missing", "nope", KindView, []string{"html"}, false, "", false},
		{"unknown namespace", "other:home", KindView, []string{"html"}, false, "", false},
		{"escaping name", "../layouts/main", KindView, []string{"html"}, false, "", false},
		{"directory is not a match", "dir", KindView, []string{"html"}, false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := l.Find(tt.resource, tt.kind, tt.exts, tt.relative)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Find(%q) = %q, %v, want %q, %v", tt.resource, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLastSearchedPaths(t *testing.T) {
	l := testLocator(t)

	if _, ok := l.Find("does-not-exist", KindView, []string{"html", "tmpl"}, false); ok {
		t.Fatal("Find() found a missing resource")
	}

	want := []string{
		"app/views/does-not-exist.html",
		"app/views/does-not-exist.tmpl",
		"vendor/views/does-not-exist.html",
		"vendor/views/does-not-exist.tmpl",
		"_builtin/views/does-not-exist.html",
		"_builtin/views/does-not-exist.tmpl",
	}
	if got := l.LastSearchedPaths(); !slices.Equal(got, want) {
		t.Errorf("LastSearchedPaths() = %v, want %v", got, want)
	}

	// only the most recent call is reported
	l.Find("shared", KindView, []string{"html"}, false)
	if got := l.LastSearchedPaths(); !slices.Equal(got, []string{"app/views/shared.html"}) {
		t.Errorf("LastSearchedPaths() after hit = %v", got)
	}
}

func TestLastSearchedPathsUnknownRoot(t *testing.T) {
	l := testLocator(t)

	if _, ok := l.Find("nosuch:home", KindView, []string{"html", "tmpl"}, false); ok {
		t.Fatal("Find() resolved a name in an unknown root")
	}
	want := []string{"nosuch/views/home.html", "nosuch/views/home.tmpl"}
	if got := l.LastSearchedPaths(); !slices.Equal(got, want) {
		t.Errorf("LastSearchedPaths() = %v, want %v", got, want)
	}
}

func TestOpen(t *testing.T) {
	l := testLocator(t)

	p, ok := l.Find("shared", KindView, []string{"html"}, false)
	if !ok {
		t.Fatal("Find() did not find shared")
	}
	data, err := fs.ReadFile(l, p)
	if err != nil {
		t.Fatalf("ReadFile(%q) error = %v", p, err)
	}
	if string(data) != "app shared" {
		t.Errorf("ReadFile(%q) = %q, want %q", p, data, "app shared")
	}

	for _, name := range []string{"missing/views/x.html", "app", "/abs"} {
		if _, err := l.Open(name); err == nil {
			t.Errorf("Open(%q) should fail", name)
		}
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(); !errors.Is(err, ErrNoRoots) {
		t.Errorf("New() error = %v, want ErrNoRoots", err)
	}

	fsys := fstest.MapFS{}
	if _, err := New(Root{Name: "a", FS: fsys}, Root{Name: "a", FS: fsys}); !errors.Is(err, ErrDuplicateRoot) {
		t.Errorf("New(dup) error = %v, want ErrDuplicateRoot", err)
	}
	if _, err := New(Root{Name: "a"}); err == nil {
		t.Error("New(nil FS) should fail")
	}
}

func TestPathFor(t *testing.T) {
	l, err := New(
		Root{Name: "app", FS: fstest.MapFS{}, Dir: "/srv/app"},
		Root{Name: "mem", FS: fstest.MapFS{}},
	)
	if err != nil {
		t.Fatal(err)
	}

	got, ok := l.PathFor("/srv/app/views/home.html")
	if !ok || got != "app/views/home.html" {
		t.Errorf("PathFor() = %q, %v, want %q, true", got, ok, "app/views/home.html")
	}
	if _, ok := l.PathFor("/elsewhere/views/home.html"); ok {
		t.Error("PathFor() matched a file outside every root")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindView, KindLayout, KindCSS, KindJS} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v, want %v", k.String(), got, err, k)
		}
	}
	if _, err := ParseKind("image"); err == nil {
		t.Error("ParseKind(image) should fail")
	}
}

package main

import (
	"embed"
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/pthm/hxview"
	"github.com/pthm/hxview/lib/locator"
	"github.com/pthm/hxview/lib/session"
)

//go:embed app
var appFiles embed.FS

var errNoTodo = hxview.NewHTTPError(http.StatusNotFound, errors.New("no such todo"))

func main() {
	todos := NewStore()

	appFS, err := fs.Sub(appFiles, "app")
	if err != nil {
		log.Fatal(err)
	}
	loc, err := locator.New(locator.Root{Name: "app", FS: appFS}, hxview.BuiltinRoot())
	if err != nil {
		log.Fatal(err)
	}
	engine := hxview.NewEngine(loc,
		hxview.WithModule("example"),
		hxview.WithErrorLayout("main"),
		hxview.WithDebug(os.Getenv("DEBUG") != ""),
	)

	// In production, use a real secret.
	sessions, err := session.NewStore([]byte("example-key-must-be-32-bytes!!"))
	if err != nil {
		log.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", engine.HandlerFunc(func(w http.ResponseWriter, r *http.Request, v *hxview.View) error {
		status := r.URL.Query().Get("status")
		return v.SetSource("index").SetLayout("main").
			AddArguments(hxview.Args{"todos": todos.List(status), "status": status}).
			ServeResponse(w, r)
	}))
	mux.Handle("POST /todos", engine.HandlerFunc(func(w http.ResponseWriter, r *http.Request, v *hxview.View) error {
		title := strings.TrimSpace(r.FormValue("title"))
		if title == "" {
			return hxview.NewHTTPError(http.StatusBadRequest, errors.New("title is required"))
		}
		todos.Add(title)
		if err := v.Messages().Success(r.Context(), "Todo added", hxview.WithExtra(title)); err != nil {
			return err
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil
	}))
	mux.Handle("POST /todos/{id}/toggle", engine.HandlerFunc(func(w http.ResponseWriter, r *http.Request, v *hxview.View) error {
		id := r.PathValue("id")
		if !todos.Toggle(id) {
			return errNoTodo
		}
		t, _ := todos.Get(id)
		return v.SetSource("partials/item").SetFragment(true).
			AddArguments(hxview.Args{"todo": t}).
			ServeResponse(w, r)
	}))
	mux.Handle("DELETE /todos/{id}", engine.HandlerFunc(func(w http.ResponseWriter, r *http.Request, v *hxview.View) error {
		if !todos.Delete(r.PathValue("id")) {
			return errNoTodo
		}
		resp := hxview.NewResponse("").WithTrigger("todo:deleted", map[string]any{"id": r.PathValue("id")})
		return resp.Send(w)
	}))

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	handler := sessions.Middleware(mux)

	addr := ":8080"
	logger.Info("starting server", "url", "http://localhost"+addr)
	err = http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r.WithContext(hxview.LoggingContext(r.Context(), logger)))
	}))
	if err != nil {
		log.Fatal(err)
	}
}

package hxview

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewResponse(t *testing.T) {
	r := NewResponse("héllo")

	if r.Body() != "héllo" {
		t.Errorf("Body() = %q", r.Body())
	}
	if r.Status() != http.StatusOK {
		t.Errorf("Status() = %d, want 200", r.Status())
	}
	if got := r.Header("content-length"); got != "6" {
		t.Errorf("Content-Length = %q, want byte length 6", got)
	}
}

func TestResponseBuilderCopies(t *testing.T) {
	base := NewResponse("x")
	created := base.WithStatus(http.StatusCreated).WithHeader("Cache-Control", "no-store")

	if base.Status() != http.StatusOK {
		t.Errorf("base Status() = %d, want 200", base.Status())
	}
	if base.Header("Cache-Control") != "" {
		t.Error("base got the header of its copy")
	}
	if created.Status() != http.StatusCreated {
		t.Errorf("Status() = %d, want 201", created.Status())
	}
	if created.Header("cache-control") != "no-store" {
		t.Errorf("Cache-Control = %q", created.Header("Cache-Control"))
	}
}

func TestResponseSend(t *testing.T) {
	rec := httptest.NewRecorder()
	err := NewResponse("<p>gone</p>").
		WithStatus(http.StatusNotFound).
		WithRedirect("/home").
		Send(rec)
	if err != nil {
		t.Fatal(err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec.Body.String() != "<p>gone</p>" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/home" {
		t.Errorf("HX-Redirect = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestTriggerHeader(t *testing.T) {
	tests := []struct {
		name   string
		event  string
		data   map[string]any
		expect string
	}{
		{"simple event", "item-updated", nil, "item-updated"},
		{"event with data", "filter:changed", map[string]any{"status": "active"}, `{"filter:changed":{"status":"active"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResponse("").WithTrigger(tt.event, tt.data)
			if got := r.Header("HX-Trigger"); got != tt.expect {
				t.Errorf("HX-Trigger = %q, want %q", got, tt.expect)
			}
		})
	}
}

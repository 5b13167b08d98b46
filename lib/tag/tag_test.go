package tag

import "testing"

func TestTags(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			"link keeps attribute order",
			Void("link", []Attr{A("href", "/a.css"), A("rel", "stylesheet"), A("media", "print")}),
			`<link href="/a.css" rel="stylesheet" media="print">`,
		},
		{
			"script is closed",
			Closed("script", []Attr{A("src", "/app.js")}),
			`<script src="/app.js"></script>`,
		},
		{
			"boolean attribute",
			Closed("script", []Attr{A("src", "/app.js"), A("defer", "")}),
			`<script src="/app.js" defer></script>`,
		},
		{
			"escaping",
			Void("meta", []Attr{A("name", "description"), A("content", `"quoted" <b>`)}),
			`<meta name="description" content="&#34;quoted&#34; &lt;b&gt;">`,
		},
		{
			"empty non-boolean value kept",
			Void("meta", []Attr{A("name", "x"), A("content", "")}),
			`<meta name="x" content="">`,
		},
		{
			"empty key skipped",
			Void("link", []Attr{A("", "x"), A("rel", "icon")}),
			`<link rel="icon">`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

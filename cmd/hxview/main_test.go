package main

import (
	"slices"
	"testing"
)

func TestParseOptions(t *testing.T) {
	opts, rest, err := parseOptions([]string{
		"--config", "site.yaml",
		"--arg", "title=Home",
		"--arg=lang=en",
		"home",
		"--layout=main",
		"--verbose",
	})
	if err != nil {
		t.Fatal(err)
	}

	if opts.config != "site.yaml" {
		t.Errorf("config = %q, want site.yaml", opts.config)
	}
	if opts.layout != "main" {
		t.Errorf("layout = %q, want main", opts.layout)
	}
	if !opts.verbose {
		t.Error("verbose = false")
	}
	if opts.args["title"] != "Home" || opts.args["lang"] != "en" {
		t.Errorf("args = %v", opts.args)
	}
	if !slices.Equal(rest, []string{"home"}) {
		t.Errorf("rest = %v, want [home]", rest)
	}
}

func TestParseOptionsDefaults(t *testing.T) {
	opts, rest, err := parseOptions([]string{"views", "home"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.config != "hxview.yaml" {
		t.Errorf("config = %q, want hxview.yaml", opts.config)
	}
	if len(opts.args) != 0 || len(rest) != 2 {
		t.Errorf("args = %v, rest = %v", opts.args, rest)
	}
}

func TestParseOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing value", []string{"--config"}},
		{"arg without equals", []string{"--arg", "title"}},
		{"unknown option", []string{"--port", "80"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := parseOptions(tt.args); err == nil {
				t.Errorf("parseOptions(%q) error = nil", tt.args)
			}
		})
	}
}

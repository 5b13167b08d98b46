// Package tag serializes HTML elements from ordered attribute lists.
package tag

import (
	"html"
	"strings"
)

// Attr is one HTML attribute. An empty Value on a boolean attribute such as
// "defer" is rendered without "=".
type Attr struct {
	Key   string
	Value string
}

// A builds an Attr.
func A(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

var booleanAttrs = map[string]bool{
	"async":       true,
	"defer":       true,
	"nomodule":    true,
	"crossorigin": true,
	"disabled":    true,
}

// Open renders the start tag <name attrs...>.
func Open(name string, attrs []Attr) string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(name)
	for _, a := range attrs {
		if a.Key == "" {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(html.EscapeString(a.Key))
		if a.Value == "" && booleanAttrs[strings.ToLower(a.Key)] {
			continue
		}
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(a.Value))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	return sb.String()
}

// Void renders an element without content or end tag, such as <link> or
// <meta>.
func Void(name string, attrs []Attr) string {
	return Open(name, attrs)
}

// Closed renders an element with an explicit, empty end tag. Used for
// <script>, which must never be self-closed.
func Closed(name string, attrs []Attr) string {
	return Open(name, attrs) + "</" + name + ">"
}

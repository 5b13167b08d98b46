package hxview

import (
	"embed"
	"io/fs"

	"github.com/pthm/hxview/lib/locator"
)

//go:embed resources
var resources embed.FS

// BuiltinRoot returns the root holding the views shipped with hxview, the
// HTTP status pages addressed as "::http-status/<code>". It is usually the
// last root:
//
//	loc, err := locator.New(
//	    locator.DirRoot("app", "./app"),
//	    hxview.BuiltinRoot(),
//	)
func BuiltinRoot() locator.Root {
	sub, err := fs.Sub(resources, "resources")
	if err != nil {
		panic(err)
	}
	return locator.Root{FS: sub}
}

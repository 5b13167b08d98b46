package hxview

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for view operations.
var (
	ErrNotFound     = errors.New("hxview: resource not found")
	ErrNoView       = errors.New("hxview: no view set")
	ErrNoSession    = errors.New("hxview: no session available")
	ErrUnitNotFound = errors.New("hxview: no unit for path")
)

// NotFoundError reports a logical resource the Locator could not resolve.
//
// Paths lists every location probed during the failed lookup, in search
// order, so the error message tells the developer exactly where a file was
// expected. NotFoundError matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Kind  Kind
	Name  string
	Paths []string
}

func newNotFoundError(kind Kind, name string, paths []string) *NotFoundError {
	return &NotFoundError{
		Kind:  kind,
		Name:  name,
		Paths: append([]string(nil), paths...),
	}
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("hxview: %s source %q not found", e.Kind, e.Name)
	if len(e.Paths) == 0 {
		return msg
	}
	return msg + " (searched: " + strings.Join(e.Paths, ", ") + ")"
}

// Is makes errors.Is(err, ErrNotFound) hold for NotFoundError values.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

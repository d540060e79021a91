package selector

import "fmt"

// ErrNoSelector is returned by Resolve when no explicit selector is given
// and the Env offers neither an installed engine nor a native primitive.
type ErrNoSelector struct {
	Engine string // requested engine name, if any
}

func (e *ErrNoSelector) Error() string {
	if e.Engine != "" {
		return fmt.Sprintf("selector: no usable selector function found (engine %q not registered), please supply one", e.Engine)
	}
	return "selector: no usable selector function found, please supply one"
}

// ErrUnknownEngine is returned by EnvFor for an engine name with no
// registered implementation.
type ErrUnknownEngine struct {
	Name string
}

func (e *ErrUnknownEngine) Error() string {
	return fmt.Sprintf("selector: unknown engine %q", e.Name)
}

// ErrBadQuery is returned when an engine cannot parse a query.
type ErrBadQuery struct {
	Query  string
	Engine string
	Cause  error
}

func (e *ErrBadQuery) Error() string {
	return fmt.Sprintf("selector: %s: bad query %q: %v", e.Engine, e.Query, e.Cause)
}

func (e *ErrBadQuery) Unwrap() error { return e.Cause }

package render

import "fmt"

// ErrTemplateNotFound is returned when a request names a template the store
// does not hold.
type ErrTemplateNotFound struct {
	Name string
}

func (e *ErrTemplateNotFound) Error() string {
	return fmt.Sprintf("render: template not found: %s", e.Name)
}

// ErrNoStore is returned for template operations on a service built
// without a store.
type ErrNoStore struct{}

func (e *ErrNoStore) Error() string { return "render: no template store configured" }

// ErrUnknownFormat is returned for an output format other than html or
// markdown.
type ErrUnknownFormat struct {
	Format string
}

func (e *ErrUnknownFormat) Error() string {
	return fmt.Sprintf("render: unknown output format %q", e.Format)
}

// ErrBadRequest is returned for a request that is missing what it needs.
type ErrBadRequest struct {
	Reason string
}

func (e *ErrBadRequest) Error() string {
	return "render: bad request: " + e.Reason
}

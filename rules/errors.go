package rules

import "fmt"

// ErrInvalidRule is returned by Compile for a rule that cannot be applied.
type ErrInvalidRule struct {
	Index  int
	Query  string
	Reason string
}

func (e *ErrInvalidRule) Error() string {
	return fmt.Sprintf("rules: rule %d (%q): %s", e.Index, e.Query, e.Reason)
}

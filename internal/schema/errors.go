package schema

import (
	"errors"
	"fmt"
)

// ErrContainerType is returned when the descriptor-set container message
// cannot be resolved from the loaded files, so custom options cannot be
// decoded.
var ErrContainerType = errors.New("descriptor set container type not resolvable")

// LoadError reports which stage of loading a descriptor set failed.
type LoadError struct {
	Path  string
	Stage string
	Cause error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load schema: %s: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("load schema %s: %s: %v", e.Path, e.Stage, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

package generator

import (
	"errors"
	"fmt"

	"github.com/Alia5/pbtmpl/internal/codegen/render"
	"github.com/Alia5/pbtmpl/internal/rule"
)

var (
	// ErrTemplateNotFound is reported when a rule's input template does not
	// exist. The rule is skipped.
	ErrTemplateNotFound = render.ErrTemplateNotFound

	ErrUnknownEncoding = errors.New("unknown output encoding")
)

// RuleError is a failure isolated to one rule applied to one entity.
type RuleError struct {
	Rule   rule.Rule
	Entity string
	Cause  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s for %s: %v", e.Rule, e.Entity, e.Cause)
}

func (e *RuleError) Unwrap() error {
	return e.Cause
}

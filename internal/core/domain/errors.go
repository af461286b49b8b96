package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration        = errors.New("invalid configuration")
	ErrInvalidInput         = errors.New("invalid input")
	ErrIndexNotBuilt        = errors.New("vector index not built")
	ErrEmptyIndex           = errors.New("vector index has no vectors")
	ErrNoIndexableDocuments = errors.New("no indexable documents")
	ErrTemporary            = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

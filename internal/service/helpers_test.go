package service

import (
	"errors"

	"github.com/noteduco342/bible-reading-backend/internal/validation"
)

// errAnyValidation matches both request validation failures and service
// errors of kind ErrValidation.
var errAnyValidation = errors.New("any validation error")

func matchesKind(err, kind error) bool {
	if err == nil {
		return false
	}
	if kind == errAnyValidation {
		var verr *validation.Error
		return errors.As(err, &verr) || errors.Is(err, ErrValidation)
	}
	return errors.Is(err, kind)
}

package risk

import (
	"errors"
	"fmt"
)

// ErrInvalidCondition marks a condition field that falls outside its
// enumerated domain or a numeric field that cannot be interpreted.
var ErrInvalidCondition = errors.New("invalid condition")

func invalidValue(field, value string) error {
	return fmt.Errorf("%w: %s has unknown value %q", ErrInvalidCondition, field, value)
}

func invalidNumber(field string, value int) error {
	return fmt.Errorf("%w: %s must be non-negative, got %d", ErrInvalidCondition, field, value)
}

// Package validate inspects request binding failures.
package validate

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// FirstError reports the struct field and rule of the first failed binding
// tag. ok is false when err is not a validation failure, such as a body that
// did not decode.
func FirstError(err error) (field, tag string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", "", false
	}
	return verrs[0].Field(), verrs[0].Tag(), true
}

package serverutils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return NewValidationError(fmt.Sprintf("入力内容を確認してください (%s)", first.Field()))
		}
		return NewValidationError("入力内容を確認してください")
	}
	return nil
}

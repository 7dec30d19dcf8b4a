package services

import (
	"fmt"

	"github.com/avolkovs/accountd/internal/common"
	"github.com/go-playground/validator/v10"
)

// RegisterRequest carries the fields a caller submits to create an account.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email,max=100"`
	Password        string `json:"password" validate:"required,min=6,max=100"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	FirstName       string `json:"firstName" validate:"max=50"`
	LastName        string `json:"lastName" validate:"max=50"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRegisterRequest runs the struct tags and converts validator output
// into a common.ValidationError with one human-readable message per field.
func validateRegisterRequest(req *RegisterRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		ve := common.NewValidationError()
		ve.Add("request", "invalid request")
		return ve
	}

	ve := common.NewValidationError()
	for _, fe := range verrs {
		ve.Add(fe.Field(), fieldMessage(fe))
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param())
	case "eqfield":
		return "Password and confirm password do not match"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

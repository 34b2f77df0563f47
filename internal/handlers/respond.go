package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"rewind-backend/internal/apperr"
	"rewind-backend/internal/models"
)

// respondError writes err as an ErrorResponse with the status of its kind.
func respondError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	c.JSON(appErr.Status(), models.ErrorResponse{
		Error:   string(appErr.Kind),
		Message: appErr.Detail(),
		Code:    appErr.Code,
	})
}

// bindError converts a gin binding failure into a validation error naming
// the first offending field.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required", "notblank":
			return apperr.Validation(lowerFirst(fe.Field()) + " is required")
		default:
			return apperr.Validation(lowerFirst(fe.Field()) + " failed the " + fe.Tag() + " check")
		}
	}
	return apperr.Validation("invalid request body: " + err.Error())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

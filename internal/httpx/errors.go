package httpx

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationMessage flattens validator errors into a single human-readable
// message for the error envelope.
func ValidationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		part := e.Field() + " failed on '" + e.Tag() + "'"
		if e.Param() != "" {
			part += "=" + e.Param()
		}
		parts = append(parts, part)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest reads a JSON body into dst and checks its validate tags.
// Either failure is the caller's fault.
func decodeRequest(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	if err := validate.Struct(dst); err != nil {
		return mapValidationError(err)
	}
	return nil
}

func mapValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}

	e := errs[0]
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s is required", e.Field())
	case "required_without":
		return fmt.Errorf("%s or %s is required", e.Field(), strings.ToLower(e.Param()))
	default:
		return fmt.Errorf("%s is invalid", e.Field())
	}
}

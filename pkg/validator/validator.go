package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrorResponse detalle de un campo que no pasó la validación.
type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func init() {
	// Reportar el nombre JSON del campo en lugar del nombre Go
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// decimal_gte0: shopspring/decimal no negativo
	validate.RegisterValidation("decimal_gte0", func(fl validator.FieldLevel) bool {
		switch d := fl.Field().Interface().(type) {
		case decimal.Decimal:
			return !d.IsNegative()
		case *decimal.Decimal:
			return d != nil && !d.IsNegative()
		}
		return false
	})
	// notblank con espacios recortados
	validate.RegisterValidation("trimmed_required", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Message describe el fallo en texto legible.
func (e *ErrorResponse) Message() string {
	switch e.Tag {
	case "required", "trimmed_required":
		return "es obligatorio"
	case "gt":
		return "debe ser mayor que " + e.Value
	case "gte":
		return "debe ser mayor o igual a " + e.Value
	case "lt":
		return "debe ser menor que " + e.Value
	case "lte":
		return "debe ser menor o igual a " + e.Value
	case "min":
		return "longitud o valor mínimo " + e.Value
	case "max":
		return "excede el máximo de " + e.Value
	case "decimal_gte0":
		return "no puede ser negativo"
	case "email":
		return "no es un email válido"
	case "oneof":
		return "debe ser uno de: " + e.Value
	case "invalid":
		return e.Value
	}
	return "no es válido (" + e.Tag + ")"
}

// ValidateStruct valida data y devuelve un ErrorResponse por campo fallido (nil si todo es válido).
func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: "invalid", Value: err.Error()}}
		}
		for _, err := range verrs {
			errors = append(errors, &ErrorResponse{
				FailedField: err.Field(),
				Tag:         err.Tag(),
				Value:       err.Param(),
			})
		}
	}
	return errors
}

// FirstError primer fallo de ValidateStruct, nil si data es válido.
func FirstError(data interface{}) *ErrorResponse {
	if errs := ValidateStruct(data); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Package validation checks run parameters and configuration.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Either way a failure is an
// INVALID_CONFIG AppError whose "fields" detail lists every offending field.
//
// # Struct Tag Validation
//
//	type Params struct {
//	    Workers int `validate:"gte=1,lte=32"`
//	}
//	err := validation.Validate(params)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.OneOf("algorithm", name, digest.Names())
//	err := v.Err()
package validation

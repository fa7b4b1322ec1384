// Package validation checks configuration structs and produces
// errors.AppError values whose messages name the offending fields.
//
// Struct tag validation:
//
//	type Settings struct {
//	    APIKey string `json:"api_key" validate:"required"`
//	}
//	err := validation.Validate(s) // "api_key is required"
//
// Programmatic validation:
//
//	v := validation.New().Required("base_url", cfg.BaseURL)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation

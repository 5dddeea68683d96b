package main

import (
	"github.com/go-playground/validator/v10"
)

const (
	maxBodyBytes    = 1 << 20 // 1 MiB
	maxFunctionSize = 4096
)

var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	_ = requestValidate.RegisterValidation("maxbytes", validateMaxBytes)
}

// validateMaxBytes bounds a string by its byte length.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= maxFunctionSize
}

// ComputeRequest is the body of POST /compute. Empty or malformed
// functions pass here and are reported by the engine with a code.
type ComputeRequest struct {
	Function string   `json:"function" validate:"maxbytes"`
	Lower    *float64 `json:"lower" validate:"required"`
	Upper    *float64 `json:"upper" validate:"required"`
	Locale   string   `json:"locale,omitempty" validate:"omitempty,oneof=en id"`
}

func (r *ComputeRequest) Validate() error {
	return requestValidate.Struct(r)
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

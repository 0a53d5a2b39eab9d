// Package web defines common components for a web application.
package web

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Stable machine-readable error codes shared across handlers.
const (
	CodeMissingAPIKey     = "missing_api_key"
	CodeInvalidAPIKey     = "invalid_api_key"
	CodeRateLimited       = "rate_limited"
	CodeCryptoError       = "crypto_error"
	CodeDatabaseError     = "database_error"
	CodeNotFound          = "not_found"
	CodeValidationError   = "validation_error"
	CodeInvalidTxnType    = "invalid_transaction_type"
	CodeInvalidCredit     = "invalid_credit"
	CodeInvalidDebit      = "invalid_debit"
	CodeInvalidTransfer   = "invalid_transfer"
	CodeInvalidAmount     = "invalid_amount"
	CodeInsufficientFunds = "insufficient_funds"
)

// ErrorResponse is the body of every error reply. The legacy `error` field
// duplicates the code for clients written against the old response shape.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Legacy  string `json:"error"`
}

// Error builds an ErrorResponse for the given code and message.
func Error(code, message string) ErrorResponse {
	return ErrorResponse{Code: code, Message: message, Legacy: code}
}

// BindingErrorMessage renders the first field error of a binding failure.
func BindingErrorMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + GetErrorMsg(field)
	}

	return err.Error()
}

// GetErrorMsg translates a binding validation error into a readable message.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "min":
		return " field value is below minimum allowed"
	case "max":
		return " field value is above maximum allowed"
	case "url":
		return " field must be a valid URL"
	default:
		return " field is invalid"
	}
}

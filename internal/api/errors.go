package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"skillup-tracker/internal/service"
)

// AppError is the JSON body of every failed request.
type AppError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Status  int         `json:"status"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Common error codes
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeInternalError = "INTERNAL_ERROR"
	CodeBadRequest    = "BAD_REQUEST"
	CodeUnavailable   = "SERVICE_UNAVAILABLE"
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func Validation(message string, details interface{}) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Details: details, Status: http.StatusBadRequest}
}

func NotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource), Status: http.StatusNotFound}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message, Status: http.StatusUnauthorized}
}

func BadRequest(message string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message, Status: http.StatusBadRequest}
}

func Internal(message string) *AppError {
	return &AppError{Code: CodeInternalError, Message: message, Status: http.StatusInternalServerError}
}

func Unavailable(message string) *AppError {
	return &AppError{Code: CodeUnavailable, Message: message, Status: http.StatusServiceUnavailable}
}

// toAppError maps domain and binding errors onto HTTP errors.
func toAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		return Validation("invalid request body", translateFieldErrors(fieldErrs))
	case errors.Is(err, service.ErrActivityNotFound):
		return NotFound("activity")
	case errors.Is(err, service.ErrCategoryNotFound):
		return Validation("invalid category", []FieldError{{Field: "category", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidStatus):
		return Validation("invalid status", []FieldError{{Field: "status", Message: err.Error()}})
	case errors.Is(err, service.ErrTopicRequired), errors.Is(err, service.ErrTopicTooLong):
		return Validation("invalid topic", []FieldError{{Field: "topic", Message: err.Error()}})
	default:
		return nil
	}
}

// respondError writes err as an AppError and aborts the chain. Unknown errors are
// logged and reported as a bare 500 without details.
func respondError(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr == nil {
		loggerFrom(c).Error("request failed", zap.Error(err))
		appErr = Internal("internal server error")
	}
	c.AbortWithStatusJSON(appErr.Status, appErr)
}

// bindJSON decodes the body into req, translating decoding and validation failures.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			respondError(c, err)
			return false
		}
		respondError(c, BadRequest("malformed request body: "+err.Error()))
		return false
	}
	return true
}

func translateFieldErrors(errs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, FieldError{Field: jsonFieldName(fe.Field()), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("field must satisfy %s constraint", fe.Tag())
	}
}

var jsonFieldNames = map[string]string{
	"Topic":       "topic",
	"Description": "description",
	"Category":    "category",
	"Date":        "date",
	"Status":      "status",
}

func jsonFieldName(field string) string {
	if name, ok := jsonFieldNames[field]; ok {
		return name
	}
	return field
}

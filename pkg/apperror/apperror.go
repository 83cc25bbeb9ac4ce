package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Kind string

const (
	ValidationError Kind = "validation"
	BusinessError   Kind = "business"
	NotFoundError   Kind = "not_found"
	ConflictError   Kind = "conflict"
	AuthError       Kind = "auth"
	ForbiddenError  Kind = "forbidden"
	ServerError     Kind = "server"
)

// AppError is an error that knows how it should be reported over HTTP.
// Details are merged into the response body next to "error".
type AppError struct {
	Kind    Kind
	Message string
	Code    int
	Err     error
	Details map[string]any
}

func NewError(kind Kind, msg string, code int, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: msg,
		Code:    code,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) With(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func Validation(msg string) *AppError {
	return NewError(ValidationError, msg, http.StatusBadRequest, nil)
}

func Business(msg string) *AppError {
	return NewError(BusinessError, msg, http.StatusBadRequest, nil)
}

func NotFound(msg string) *AppError {
	return NewError(NotFoundError, msg, http.StatusNotFound, nil)
}

func Conflict(msg string) *AppError {
	return NewError(ConflictError, msg, http.StatusConflict, nil)
}

func Unauthorized(msg string) *AppError {
	return NewError(AuthError, msg, http.StatusUnauthorized, nil)
}

func Forbidden(msg string) *AppError {
	return NewError(ForbiddenError, msg, http.StatusForbidden, nil)
}

func Internal(msg string, err error) *AppError {
	return NewError(ServerError, msg, http.StatusInternalServerError, err)
}

// Wrap keeps an existing AppError as is and turns anything else into a 500
// carrying msg.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return Internal(msg, err)
}

// Respond writes err as JSON and aborts the request.
func Respond(c *gin.Context, log *logrus.Entry, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = Internal(err.Error(), nil)
	}

	if appErr.Code >= http.StatusInternalServerError {
		log.WithField("path", c.FullPath()).Errorf("%v", err)
	} else {
		log.WithField("path", c.FullPath()).Debugf("%v", err)
	}

	body := gin.H{"success": false, "error": appErr.Message}
	if appErr.Code >= http.StatusInternalServerError && appErr.Err != nil {
		body["details"] = appErr.Err.Error()
	}
	for k, v := range appErr.Details {
		body[k] = v
	}
	c.AbortWithStatusJSON(appErr.Code, body)
}

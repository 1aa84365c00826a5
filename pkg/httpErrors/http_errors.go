package httpErrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"
)

var (
	BadRequest          = errors.New("bad request")
	NotFound            = errors.New("not found")
	InternalServerError = errors.New("internal server error")
	RequestTimeout      = errors.New("request timeout")
)

type RestErr interface {
	Status() int
	Error() string
	Causes() interface{}
}

type RestError struct {
	ErrStatus int         `json:"status,omitempty"`
	ErrError  string      `json:"error,omitempty"`
	ErrCauses interface{} `json:"causes,omitempty"`
}

func (e RestError) Error() string {
	return fmt.Sprintf("status: %d - errors: %s - causes: %v", e.ErrStatus, e.ErrError, e.ErrCauses)
}

func (e RestError) Status() int {
	return e.ErrStatus
}

func (e RestError) Causes() interface{} {
	return e.ErrCauses
}

func NewRestError(status int, err string, causes interface{}) RestErr {
	return RestError{
		ErrStatus: status,
		ErrError:  err,
		ErrCauses: causes,
	}
}

func NewBadRequestError(causes interface{}) RestErr {
	return RestError{
		ErrStatus: http.StatusBadRequest,
		ErrError:  BadRequest.Error(),
		ErrCauses: causes,
	}
}

func NewNotFoundError(causes interface{}) RestErr {
	return RestError{
		ErrStatus: http.StatusNotFound,
		ErrError:  NotFound.Error(),
		ErrCauses: causes,
	}
}

func NewInternalServerError(causes interface{}) RestErr {
	return RestError{
		ErrStatus: http.StatusInternalServerError,
		ErrError:  InternalServerError.Error(),
		ErrCauses: causes,
	}
}

// ParseErrors maps domain and infrastructure errors to a RestErr.
func ParseErrors(err error) RestErr {
	var restErr RestErr
	if errors.As(err, &restErr) {
		return restErr
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return NewBadRequestError(validationErrs.Error())
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return NewRestError(httpErr.Code, http.StatusText(httpErr.Code), fmt.Sprint(httpErr.Message))
	}

	switch {
	case errors.Is(err, models.ErrVideoNotFound), errors.Is(err, models.ErrJobNotFound), errors.Is(err, models.ErrNoFrames):
		return NewNotFoundError(err.Error())
	case errors.Is(err, models.ErrJobNotTerminal), errors.Is(err, models.ErrUnsupportedFormat),
		errors.Is(err, models.ErrVideoLimitReached), errors.Is(err, models.ErrMalformedMessage):
		return NewBadRequestError(err.Error())
	case errors.Is(err, models.ErrVideoBusy), errors.Is(err, models.ErrInvalidTransition):
		return NewRestError(http.StatusConflict, http.StatusText(http.StatusConflict), err.Error())
	case errors.Is(err, models.ErrFileTooLarge):
		return NewRestError(http.StatusRequestEntityTooLarge, http.StatusText(http.StatusRequestEntityTooLarge), err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return NewRestError(http.StatusRequestTimeout, RequestTimeout.Error(), err.Error())
	case strings.Contains(strings.ToLower(pkgerrors.Cause(err).Error()), "unmarshal"):
		return NewBadRequestError(err.Error())
	default:
		return NewInternalServerError(err.Error())
	}
}

// ErrorResponse writes err as JSON with the mapped status code.
func ErrorResponse(c echo.Context, err error) error {
	restErr := ParseErrors(err)
	return c.JSON(restErr.Status(), restErr)
}

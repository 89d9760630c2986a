package web

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Context wraps the gin context with the request scoped values the handlers
// need and collects query/param parsing errors.
type Context struct {
	*gin.Context
	Ctx context.Context

	start       time.Time
	queryErrors []FieldError
	paramErrors []FieldError
}

// Respond writes data as JSON with the given status code.
func (c *Context) Respond(data interface{}, status int) error {
	if status == http.StatusNoContent {
		c.Context.Status(status)
		return nil
	}

	c.Context.JSON(status, data)
	return nil
}

// RespondError sends an error response back to the client. Errors not created
// through NewRequestError are logged and reported as a generic 500.
func (c *Context) RespondError(err error) error {
	var webErr *Error
	if errors.As(err, &webErr) {
		if webErr.Status >= http.StatusInternalServerError {
			log.Ctx(c.Ctx).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		}
		c.Context.AbortWithStatusJSON(webErr.Status, ErrorResponse{
			Error:  webErr.Error(),
			Fields: webErr.Fields,
			Status: false,
		})
		return nil
	}

	log.Ctx(c.Ctx).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.Context.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:  http.StatusText(http.StatusInternalServerError),
		Status: false,
	})
	return nil
}

// BindFunc binds the request body (json, form or multipart depending on the
// content type) into dest and checks that the named fields are set. Field
// names may be passed separately or comma separated.
func (c *Context) BindFunc(dest interface{}, required ...string) error {
	if err := c.ShouldBind(dest); err != nil {
		return NewRequestError(errors.Wrap(err, "binding request"), http.StatusBadRequest)
	}

	if fields := RequiredFields(dest, required...); len(fields) > 0 {
		return &Error{
			Err:    errors.New("required fields are missing"),
			Status: http.StatusBadRequest,
			Fields: fields,
		}
	}

	return nil
}

// GetQueryFunc reads an optional query value converted to kind. It returns
// a pointer (*int, *string, *bool) or nil when the key is absent. Conversion
// errors are reported by ValidQuery.
func (c *Context) GetQueryFunc(kind reflect.Kind, key string) interface{} {
	value, ok := c.GetQuery(key)
	if !ok || value == "" {
		return nil
	}

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(value)
		if err != nil {
			c.queryErrors = append(c.queryErrors, FieldError{Field: key, Error: "must be an integer"})
			return nil
		}
		return &v
	case reflect.Bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			c.queryErrors = append(c.queryErrors, FieldError{Field: key, Error: "must be a boolean"})
			return nil
		}
		return &v
	case reflect.String:
		return &value
	default:
		c.queryErrors = append(c.queryErrors, FieldError{Field: key, Error: fmt.Sprintf("unsupported kind %s", kind)})
		return nil
	}
}

// ValidQuery reports the errors collected by GetQueryFunc.
func (c *Context) ValidQuery() error {
	if len(c.queryErrors) == 0 {
		return nil
	}

	return &Error{
		Err:    errors.New("invalid query parameters"),
		Status: http.StatusBadRequest,
		Fields: c.queryErrors,
	}
}

// GetParam reads a path parameter converted to kind. It returns int or
// string; conversion errors are reported by ValidParam.
func (c *Context) GetParam(kind reflect.Kind, key string) interface{} {
	value := strings.TrimSpace(c.Param(key))

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(value)
		if err != nil {
			c.paramErrors = append(c.paramErrors, FieldError{Field: key, Error: "must be an integer"})
			return 0
		}
		return v
	default:
		if value == "" {
			c.paramErrors = append(c.paramErrors, FieldError{Field: key, Error: "required"})
		}
		return value
	}
}

// ValidParam reports the errors collected by GetParam.
func (c *Context) ValidParam() error {
	if len(c.paramErrors) == 0 {
		return nil
	}

	return &Error{
		Err:    errors.New("invalid path parameters"),
		Status: http.StatusBadRequest,
		Fields: c.paramErrors,
	}
}

// Since returns the time elapsed since the request started.
func (c *Context) Since() time.Duration {
	return time.Since(c.start)
}

// RequiredFields returns a FieldError for every named struct field of v that
// holds its zero value. Unknown names are ignored.
func RequiredFields(v interface{}, fields ...string) []FieldError {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var list []FieldError
	for _, group := range fields {
		for _, name := range strings.Split(group, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}

			f := rv.FieldByName(name)
			if !f.IsValid() {
				continue
			}
			if f.IsZero() {
				list = append(list, FieldError{Field: name, Error: "required"})
			}
		}
	}

	return list
}

package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/splax/shiftwatch/internal/apperr"
	"github.com/splax/shiftwatch/internal/repository"
)

const maxBodyBytes = 1 << 20

// writeJSON writes JSON response with status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError sends an error body shaped like apperr.Error.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"code": errorCode(status), "message": msg})
}

func errorCode(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return string(apperr.KindUnauthenticated)
	case http.StatusForbidden:
		return string(apperr.KindForbidden)
	case http.StatusNotFound:
		return string(apperr.KindNotFound)
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	}
	return "internal_error"
}

// writeServiceError maps a service error onto the response. Unknown errors are logged and hidden.
func (r *Router) writeServiceError(w http.ResponseWriter, req *http.Request, err error) {
	if appErr, ok := apperr.As(err); ok {
		if appErr.Kind == apperr.KindUnauthenticated {
			w.Header().Set("WWW-Authenticate", "Bearer")
		}
		writeJSON(w, appErr.Status, appErr)
		return
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusBadRequest, "resource already exists")
	case errors.Is(err, repository.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid argument")
	default:
		r.logger.Error("request failed", "error", err, "path", req.URL.Path, "method", req.Method)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// decodeJSON reads a bounded JSON body into dst and runs struct validation.
func (r *Router) decodeJSON(w http.ResponseWriter, req *http.Request, dst any) error {
	body := http.MaxBytesReader(w, req.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("body", "request body is required")
		}
		return apperr.Validation("body", "invalid JSON body")
	}
	return r.validateStruct(dst)
}

func (r *Router) validateStruct(dst any) error {
	err := r.validate.Struct(dst)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Validation("body", err.Error())
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = describe(fe)
	}
	return apperr.Validations(details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("must be %s %s", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// queryInt64 parses an integer query parameter. Missing optional values return fallback.
func queryInt64(req *http.Request, name string, required bool, fallback int64) (int64, error) {
	raw := strings.TrimSpace(req.URL.Query().Get(name))
	if raw == "" {
		if required {
			return 0, apperr.Validation(name, "query parameter is required")
		}
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validation(name, "must be an integer")
	}
	return v, nil
}

// queryPage reads skip/limit.
func queryPage(req *http.Request) (repository.Page, error) {
	skip, err := queryInt64(req, "skip", false, 0)
	if err != nil {
		return repository.Page{}, err
	}
	limit, err := queryInt64(req, "limit", false, repository.DefaultPageLimit)
	if err != nil {
		return repository.Page{}, err
	}
	if skip < 0 {
		return repository.Page{}, apperr.Validation("skip", "must not be negative")
	}
	return repository.Page{Skip: int(skip), Limit: int(limit)}.Normalized(), nil
}

func queryString(req *http.Request, name string) string {
	return strings.TrimSpace(req.URL.Query().Get(name))
}

package spec

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	ParseError      ErrorCode = "ParseError"
	ReferenceError  ErrorCode = "ReferenceError"
	ConversionError ErrorCode = "ConversionError"
)

// Sentinels matched by errors.Is against a *SpecError of the same code.
var (
	ErrInput      = errors.New("input error")
	ErrParse      = errors.New("parse error")
	ErrReference  = errors.New("reference error")
	ErrConversion = errors.New("conversion error")
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path when known
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

func (e *SpecError) Is(target error) bool {
	switch target {
	case ErrInput:
		return e.Code == InputError
	case ErrParse:
		return e.Code == ParseError
	case ErrReference:
		return e.Code == ReferenceError
	case ErrConversion:
		return e.Code == ConversionError
	}
	return false
}

func newError(code ErrorCode, pointer, format string, args ...any) *SpecError {
	return &SpecError{Code: code, Message: fmt.Sprintf(format, args...), JSONPointer: pointer}
}

// mapLoaderErr turns a kin-openapi loader failure into a SpecError.
func mapLoaderErr(err error, location string) error {
	pointer := extractJSONPointer(err)
	code := ParseError
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "ref") && (strings.Contains(lower, "resolve") || strings.Contains(lower, "not found") || strings.Contains(lower, "unresolved")) {
		code = ReferenceError
	}
	return &SpecError{Code: code, Message: err.Error(), Location: location, JSONPointer: pointer, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	var me openapi3.MultiError
	if errors.As(err, &me) && len(me) > 0 {
		return extractJSONPointer(me[0])
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}

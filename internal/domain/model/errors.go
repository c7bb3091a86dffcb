package model

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/architeacher/household/pkg/logger"
)

var (
	ErrParse             = errors.New("malformed query expression")
	ErrCompile           = errors.New("query compile error")
	ErrQueryBuild        = errors.New("database query build error")
	ErrDatabaseOperation = errors.New("database operation error")
	ErrQueryExecution    = errors.New("database query execution error")
	ErrNoRows            = errors.New("query returned no rows")
	ErrNullParameter     = errors.New("required parameter is missing")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrInternal          = errors.New("internal error")
	ErrNotImplemented    = errors.New("not implemented")
	ErrInvalidStage      = errors.New("query verb called out of stage")

	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTransaction  = errors.New("invalid transaction")
)

var messageKeys = map[error]string{
	ErrParse:               "errors.query.malformed_expression",
	ErrCompile:             "errors.query.compile",
	ErrQueryBuild:          "errors.database.query_build",
	ErrDatabaseOperation:   "errors.database.operation",
	ErrQueryExecution:      "errors.database.query_execution",
	ErrNoRows:              "errors.database.no_rows",
	ErrNullParameter:       "errors.parameter.null",
	ErrInvalidParameter:    "errors.parameter.invalid",
	ErrInternal:            "errors.internal",
	ErrNotImplemented:      "errors.not_implemented",
	ErrInvalidStage:        "errors.internal",
	ErrTransactionNotFound: "errors.transactions.not_found",
	ErrInvalidTransaction:  "errors.transactions.invalid",
}

// Error is the typed failure returned by every query layer operation.
// Kind is one of the sentinels above; Err is the underlying cause.
type Error struct {
	Kind          error
	Method        string
	MessageKey    string
	Field         string
	RequestID     string
	CorrelationID string
	TenantID      string
	Location      string
	Err           error
}

type ErrorOption func(*Error)

func WithField(field string) ErrorOption {
	return func(e *Error) {
		e.Field = field
	}
}

func WithMessageKey(key string) ErrorOption {
	return func(e *Error) {
		e.MessageKey = key
	}
}

// Wrap types cause under kind. A cause that already is an *Error is returned
// as is, with missing request metadata filled from ctx.
func Wrap(ctx context.Context, kind error, method string, cause error, opts ...ErrorOption) error {
	var typed *Error
	if errors.As(cause, &typed) {
		return typed.withContext(ctx)
	}

	return build(ctx, kind, method, cause, 2, opts)
}

// NewError creates an *Error with a plain text cause.
func NewError(ctx context.Context, kind error, method, detail string, opts ...ErrorOption) *Error {
	var cause error
	if detail != "" {
		cause = errors.New(detail)
	}

	return build(ctx, kind, method, cause, 2, opts)
}

func build(ctx context.Context, kind error, method string, cause error, skip int, opts []ErrorOption) *Error {
	if kind == nil {
		kind = ErrInternal
	}

	err := &Error{
		Kind:          kind,
		Method:        method,
		MessageKey:    MessageKey(kind),
		RequestID:     logger.RequestID(ctx),
		CorrelationID: logger.CorrelationID(ctx),
		TenantID:      logger.TenantID(ctx),
		Location:      callerLocation(skip),
		Err:           cause,
	}

	for _, opt := range opts {
		opt(err)
	}

	return err
}

func (e *Error) Error() string {
	var b strings.Builder

	if e.Method != "" {
		b.WriteString(e.Method)
		b.WriteString(": ")
	}

	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}

	if e.Field != "" {
		fmt.Fprintf(&b, " at %s", e.Field)
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)

	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}

	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

func (e *Error) withContext(ctx context.Context) *Error {
	if ctx == nil || (e.RequestID != "" && e.CorrelationID != "" && e.TenantID != "") {
		return e
	}

	clone := *e

	if clone.RequestID == "" {
		clone.RequestID = logger.RequestID(ctx)
	}

	if clone.CorrelationID == "" {
		clone.CorrelationID = logger.CorrelationID(ctx)
	}

	if clone.TenantID == "" {
		clone.TenantID = logger.TenantID(ctx)
	}

	return &clone
}

// MessageKey returns the translation key associated with kind.
func MessageKey(kind error) string {
	if key, ok := messageKeys[kind]; ok {
		return key
	}

	return messageKeys[ErrInternal]
}

// IsInternal reports whether err should surface as a server fault.
func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal) || errors.Is(err, ErrInvalidStage) || errors.Is(err, ErrNotImplemented)
}

func callerLocation(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}

	return fmt.Sprintf("%s/%s:%d", filepath.Base(filepath.Dir(file)), filepath.Base(file), line)
}

type ValidationError struct {
	Field   string
	Message string
	Code    string
}

type ValidationErrors struct {
	Errors []ValidationError
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]ValidationError, 0),
	}
}

func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}

	return v.Errors[0].Message
}

func (v *ValidationErrors) Add(field, message, code string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
		Code:    code,
	})
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

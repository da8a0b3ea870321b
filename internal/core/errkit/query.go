package errkit

import (
	"errors"
	"fmt"
)

// QueryKind enumerates the query-pipeline layer's error kinds.
type QueryKind int

const (
	QueryParseError QueryKind = iota
	QueryPlanningError
	QueryOptimizationError
	QueryInvalidQuery
	QueryExecutionError
	QueryStorageError
	QueryExpressionError
	QueryPlanNodeVisitError
)

var queryKindNames = map[QueryKind]string{
	QueryParseError:         "ParseError",
	QueryPlanningError:      "PlanningError",
	QueryOptimizationError:  "OptimizationError",
	QueryInvalidQuery:       "InvalidQuery",
	QueryExecutionError:     "ExecutionError",
	QueryStorageError:       "StorageError",
	QueryExpressionError:    "ExpressionError",
	QueryPlanNodeVisitError: "PlanNodeVisitError",
}

func (k QueryKind) String() string { return queryKindNames[k] }

// Span is a source-text location surviving from the parser through
// validation, attached to errors for line/column reporting.
type Span struct {
	StartLine, StartCol int
	EndLine, EndCol      int
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.StartLine, s.StartCol, s.EndLine, s.EndCol)
}

// QueryError is the query pipeline's error type.
type QueryError struct {
	Kind    QueryKind
	Message string
	Span    *Span
	Cause   error
}

func NewQueryError(kind QueryKind, message string) *QueryError {
	return &QueryError{Kind: kind, Message: message}
}

func NewQueryErrorAt(kind QueryKind, message string, span Span) *QueryError {
	return &QueryError{Kind: kind, Message: message, Span: &span}
}

func WrapQueryError(kind QueryKind, message string, cause error) *QueryError {
	return &QueryError{Kind: kind, Message: message, Cause: cause}
}

func (e *QueryError) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("query error [%s] at %s: %s", e.Kind, e.Span, e.Message)
	}
	return fmt.Sprintf("query error [%s]: %s", e.Kind, e.Message)
}

func (e *QueryError) Unwrap() error { return e.Cause }

func (e *QueryError) Is(target error) bool {
	var other *QueryError
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

func (e *QueryError) ToPublicError() *PublicError {
	switch e.Kind {
	case QueryParseError:
		return NewPublicError(CodeParseError, e.Message)
	case QueryInvalidQuery:
		return NewPublicError(CodeInvalidStatement, e.Message)
	case QueryPlanningError, QueryOptimizationError, QueryPlanNodeVisitError:
		return NewPublicError(CodeInternalError, "query planning failed")
	case QueryExpressionError:
		return NewPublicError(CodeValidationError, e.Message)
	case QueryStorageError:
		if se, ok := e.Cause.(*StorageError); ok {
			return se.ToPublicError()
		}
		return NewPublicError(CodeInternalError, "storage error")
	default:
		return NewPublicError(CodeExecutionError, e.Message)
	}
}

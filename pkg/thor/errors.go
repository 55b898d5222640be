package thor

import "github.com/nextzen/thor/pkg/util"

// RouteError carries the {http_status, internal_code} pair the core
// raises on unrecoverable failure, wrapping a util.Error the way the
// rest of this module reports failures.
type RouteError struct {
	HTTPStatus   int
	InternalCode int
	cause        error
}

func NewRouteError(httpStatus, internalCode int, cause error) *RouteError {
	return &RouteError{HTTPStatus: httpStatus, InternalCode: internalCode, cause: cause}
}

func (e *RouteError) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return "route error"
}

func (e *RouteError) Unwrap() error { return e.cause }

// ErrNoPath is raised when an engine returns empty after the full
// relaxation ladder, or any failure occurs during map-match assembly.
func ErrNoPath(cause error) *RouteError {
	return NewRouteError(400, 442, util.WrapErrorf(cause, util.ErrBadParamInput, "no path found"))
}

// ErrPrecondition is raised for malformed correlated input or an
// unresolvable shape-walker precondition: fatal, non-retryable, and
// distinct from "no path".
func ErrPrecondition(cause error) *RouteError {
	return NewRouteError(400, 441, util.WrapErrorf(cause, util.ErrBadParamInput, "precondition violation"))
}

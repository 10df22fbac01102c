// Package errors provides custom error types for the wfs-gateway.
//
// Each error type includes a constructor, Error() method, and a type-checking
// helper using errors.As for proper error unwrapping. Filter translation
// errors are not listed here; they are *filter.Error values.
//
// # Error Types Overview
//
//	┌──────────────────────────┬────────┬─────────────────────────────────────┐
//	│ Error Type               │ HTTP   │ Description                         │
//	├──────────────────────────┼────────┼─────────────────────────────────────┤
//	│ ResourceNotFoundError    │ 404    │ Requested layer doesn't exist       │
//	│ InvalidRequestError      │ 400    │ Malformed request parameter         │
//	│ SyncInProgressError      │ 409    │ Catalog sync already running        │
//	│ SourceUnavailableError   │ 503    │ PostGIS missing or unreachable      │
//	└──────────────────────────┴────────┴─────────────────────────────────────┘
//
// # ResourceNotFoundError
//
// Constructors:
//   - NewResourceNotFoundError(kind string) - Generic resource not found
//   - NewLayerNotFoundError(name string) - Layer missing from the catalog
//
// # InvalidRequestError
//
// Carries the offending parameter, reported as the OWS exception locator.
//
// Constructor:
//   - NewInvalidRequestError(parameter, format string, args ...any)
//
// # SyncInProgressError
//
// The catalog service runs one synchronisation at a time.
//
// Constructor:
//   - NewSyncInProgressError()
//
// # SourceUnavailableError
//
// Wraps errors from the PostGIS pool with user-friendly messages.
//
// Constructor:
//   - NewSourceUnavailableError(err error) - nil means no source configured
//
// Error detection:
//   - "password authentication failed" → "invalid credentials"
//   - "connection refused" → "feature source unreachable"
//   - Other errors → Original error message
//
// # Handler Error Mapping
//
//	switch {
//	case errors.IsResourceNotFoundError(err):
//	    c.JSON(http.StatusNotFound, ...)
//	case errors.IsInvalidRequestError(err), filter.IsFilterError(err):
//	    c.JSON(http.StatusBadRequest, ...)
//	case errors.IsSyncInProgressError(err):
//	    c.JSON(http.StatusConflict, ...)
//	case errors.IsSourceUnavailableError(err):
//	    c.JSON(http.StatusServiceUnavailable, ...)
//	default:
//	    c.JSON(http.StatusInternalServerError, ...)
//	}
package errors

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/geowfs/wfs-gateway/api/v1"
	srvErrors "github.com/geowfs/wfs-gateway/pkg/errors"
	"github.com/geowfs/wfs-gateway/pkg/filter"
)

// OWS exception codes.
const (
	CodeInvalidParameterValue  = "InvalidParameterValue"
	CodeMissingParameterValue  = "MissingParameterValue"
	CodeOperationNotSupported  = "OperationNotSupported"
	CodeOperationParsingFailed = "OperationParsingFailed"
	CodeNotFound               = "NotFound"
	CodeSyncInProgress         = "SyncInProgress"
	CodeServiceUnavailable     = "ServiceUnavailable"
	CodeNoApplicableCode       = "NoApplicableCode"
)

// respondError writes err as an exception body. locator names the request
// parameter that carried the filter, and is used for translation errors.
func respondError(c *gin.Context, err error, locator string) {
	status, code, loc := classify(err, locator)
	if status == http.StatusInternalServerError {
		zap.S().Named("handler").Errorw("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, v1.NewException(code, loc, err))
}

func exception(c *gin.Context, status int, code, locator string, err error) {
	c.JSON(status, v1.NewException(code, locator, err))
}

func classify(err error, locator string) (int, string, string) {
	var invalid *srvErrors.InvalidRequestError

	switch {
	case srvErrors.IsResourceNotFoundError(err), errors.Is(err, filter.ErrLayerNotFound):
		return http.StatusNotFound, CodeNotFound, ""
	case errors.As(err, &invalid):
		if invalid.Parameter == "FILTER" || invalid.Parameter == "CQL_FILTER" {
			return http.StatusBadRequest, CodeOperationParsingFailed, invalid.Parameter
		}
		return http.StatusBadRequest, CodeInvalidParameterValue, invalid.Parameter
	case srvErrors.IsSyncInProgressError(err):
		return http.StatusConflict, CodeSyncInProgress, ""
	case srvErrors.IsSourceUnavailableError(err):
		return http.StatusServiceUnavailable, CodeServiceUnavailable, ""
	}

	kind, ok := filter.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, CodeNoApplicableCode, ""
	}

	switch kind {
	case filter.SchemaError:
		return http.StatusInternalServerError, CodeNoApplicableCode, ""
	case filter.InvalidFilter:
		return http.StatusBadRequest, CodeOperationParsingFailed, locator
	default:
		return http.StatusBadRequest, CodeInvalidParameterValue, locator
	}
}

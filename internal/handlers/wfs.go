package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/geowfs/wfs-gateway/internal/output"
	"github.com/geowfs/wfs-gateway/internal/services"
)

// kvp holds query parameters with upper-cased names. OGC parameter
// names are case insensitive.
type kvp map[string]string

func newKVP(c *gin.Context) kvp {
	params := make(kvp)
	for name, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[strings.ToUpper(name)] = values[0]
		}
	}
	return params
}

// first returns the value of the first name that is set.
func (p kvp) first(names ...string) (string, string) {
	for _, name := range names {
		if v, ok := p[name]; ok {
			return name, v
		}
	}
	return names[0], ""
}

func (p kvp) uint(names ...string) (uint64, error) {
	name, v := p.first(names...)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

// WFS serves the KVP GetFeature operation
// (GET /wfs)
func (h *Handler) WFS(c *gin.Context) {
	params := newKVP(c)

	if service, ok := params["SERVICE"]; ok && !strings.EqualFold(service, "WFS") {
		exception(c, http.StatusBadRequest, CodeInvalidParameterValue, "SERVICE", fmt.Errorf("unknown service %q", service))
		return
	}

	request := params["REQUEST"]
	switch {
	case request == "":
		exception(c, http.StatusBadRequest, CodeMissingParameterValue, "REQUEST", errors.New("REQUEST is required"))
		return
	case !strings.EqualFold(request, "GetFeature"):
		exception(c, http.StatusBadRequest, CodeOperationNotSupported, "REQUEST", fmt.Errorf("operation %q is not supported", request))
		return
	}

	h.getFeature(c, params)
}

func (h *Handler) getFeature(c *gin.Context, params kvp) {
	_, typeName := params.first("TYPENAME", "TYPENAMES")
	if strings.TrimSpace(typeName) == "" {
		exception(c, http.StatusBadRequest, CodeMissingParameterValue, "TYPENAME", errors.New("TYPENAME is required"))
		return
	}
	if strings.Contains(typeName, ",") {
		exception(c, http.StatusBadRequest, CodeInvalidParameterValue, "TYPENAME", errors.New("only one feature type per request is supported"))
		return
	}

	maxFeatures, err := params.uint("MAXFEATURES", "COUNT")
	if err != nil {
		exception(c, http.StatusBadRequest, CodeInvalidParameterValue, "MAXFEATURES", err)
		return
	}
	startIndex, err := params.uint("STARTINDEX")
	if err != nil {
		exception(c, http.StatusBadRequest, CodeInvalidParameterValue, "STARTINDEX", err)
		return
	}

	encoder, err := output.ForFormat(params["OUTPUTFORMAT"])
	if err != nil {
		exception(c, http.StatusBadRequest, CodeInvalidParameterValue, "OUTPUTFORMAT", err)
		return
	}

	req := services.GetFeatureParams{
		Layer:       layerName(typeName),
		Filter:      params["FILTER"],
		CQLFilter:   params["CQL_FILTER"],
		BBox:        params["BBOX"],
		FeatureID:   params["FEATUREID"],
		MaxFeatures: maxFeatures,
		StartIndex:  startIndex,
		ResultType:  params["RESULTTYPE"],
	}

	fc, err := h.featureSrv.GetFeature(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, filterLocator(req))
		return
	}

	var buf bytes.Buffer
	if err := encoder.Encode(&buf, fc); err != nil {
		zap.S().Named("wfs_handler").Errorw("failed to encode features", "layer", req.Layer, "error", err)
		exception(c, http.StatusInternalServerError, CodeNoApplicableCode, "", errors.New("failed to encode features"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", req.Layer+"."+encoder.Extension()))
	c.Data(http.StatusOK, encoder.ContentType(), buf.Bytes())
}

// layerName drops a namespace prefix such as "topp:".
func layerName(typeName string) string {
	typeName = strings.TrimSpace(typeName)
	if i := strings.LastIndex(typeName, ":"); i >= 0 {
		return typeName[i+1:]
	}
	return typeName
}

func filterLocator(p services.GetFeatureParams) string {
	switch {
	case p.Filter != "":
		return "FILTER"
	case p.CQLFilter != "":
		return "CQL_FILTER"
	case p.BBox != "":
		return "BBOX"
	case p.FeatureID != "":
		return "FEATUREID"
	default:
		return ""
	}
}

// Register mounts the REST endpoints on router.
func (h *Handler) Register(router *gin.RouterGroup) {
	router.GET("/health", h.Health)
	router.GET("/layers", h.ListLayers)
	router.GET("/layers/sync", h.GetSyncStatus)
	router.POST("/layers/sync", h.StartSync)
	router.GET("/layers/:name", h.GetLayer)
	router.POST("/layers/:name/filter", h.CompileFilter)
}

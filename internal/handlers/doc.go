// Package handlers implements the HTTP layer of the gateway.
//
// Handlers delegate to the services layer and only deal with parameter
// parsing, response encoding and error mapping.
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - KVP parameter parsing                                        │
//	│  - Error mapping to OWS exceptions                              │
//	│  - Model-to-API conversion                                      │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Services Layer                             │
//	│  CatalogService │ FeatureService                                │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Endpoints
//
// WFS (wfs.go), mounted at the server root:
//
//	┌────────┬──────────────────────────────┬────────────────────────────────┐
//	│ Method │ Endpoint                     │ Description                    │
//	├────────┼──────────────────────────────┼────────────────────────────────┤
//	│ GET    │ /wfs?REQUEST=GetFeature&...  │ Features of one layer          │
//	└────────┴──────────────────────────────┴────────────────────────────────┘
//
// REST (layers.go, sync.go, health.go), mounted under /api/v1:
//
//	┌────────┬──────────────────────┬──────────────────────────────────────┐
//	│ Method │ Endpoint             │ Description                          │
//	├────────┼──────────────────────┼──────────────────────────────────────┤
//	│ GET    │ /layers              │ List catalog layers                  │
//	│ GET    │ /layers/:name        │ Layer with its columns               │
//	│ POST   │ /layers/:name/filter │ Compile a Filter XML body to SQL     │
//	│ GET    │ /layers/sync         │ Catalog sync status                  │
//	│ POST   │ /layers/sync         │ Start a catalog sync (202)           │
//	│ GET    │ /health              │ Dependency checks                    │
//	└────────┴──────────────────────┴──────────────────────────────────────┘
//
// # GetFeature parameters
//
// Names are case insensitive. FILTER, CQL_FILTER, BBOX and FEATUREID are
// mutually exclusive.
//
//	TYPENAME | TYPENAMES    layer name, namespace prefix ignored
//	FILTER                  Filter Encoding XML
//	CQL_FILTER              CQL text filter
//	BBOX                    minx,miny,maxx,maxy[,crs]
//	FEATUREID               comma separated layer.id values
//	MAXFEATURES | COUNT     page size, capped by the server
//	STARTINDEX              page offset
//	RESULTTYPE              results (default) or hits
//	OUTPUTFORMAT            application/json (default) or xlsx
//
// # Errors
//
// Every error body is an OWS style exception:
//
//	{"error": "InvalidBbox: expected 4 coordinates", "code": "InvalidParameterValue", "locator": "BBOX"}
//
//	┌──────────────────────────────────┬────────┬────────────────────────┐
//	│ Error                            │ Status │ Code                   │
//	├──────────────────────────────────┼────────┼────────────────────────┤
//	│ filter.InvalidFilter             │ 400    │ OperationParsingFailed │
//	│ other filter kinds               │ 400    │ InvalidParameterValue  │
//	│ filter.SchemaError               │ 500    │ NoApplicableCode       │
//	│ InvalidRequestError              │ 400    │ InvalidParameterValue  │
//	│ ResourceNotFoundError            │ 404    │ NotFound               │
//	│ SyncInProgressError              │ 409    │ SyncInProgress         │
//	│ SourceUnavailableError           │ 503    │ ServiceUnavailable     │
//	│ anything else                    │ 500    │ NoApplicableCode       │
//	└──────────────────────────────────┴────────┴────────────────────────┘
//
// InvalidRequestError on FILTER or CQL_FILTER maps to OperationParsingFailed.
package handlers

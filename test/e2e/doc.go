// Package main runs end-to-end specs against a running gateway.
//
// The gateway must serve the PostGIS database given with -postgis-dsn and
// introspect the schema given with -schema:
//
//	wfs-gateway run --postgis-dsn $DSN --postgis-schema e2e --catalog-db ""
//	go run ./test/e2e -gateway-url http://localhost:8080 -postgis-dsn $DSN
//
// # Components
//
// DbReadWriter creates the test schema and seeds the roads table through
// pgx. The schema is dropped after the suite.
//
// GatewayActioner performs the WFS and REST requests. When -jwt-secret is
// set every request carries an HS256 bearer token signed with it.
//
// # Test Flow
//
// BeforeAll:
//   - Create and seed the roads table
//   - Start a catalog sync and wait for it to finish
//
// Test:
//   - GetFeature with CQL_FILTER, BBOX, FILTER, FEATUREID, paging and hits
//   - Filter compilation through the REST endpoint
package main
